package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeContent decodes a payload for a node of type t. decode fills its argument from the
// raw encoded value, so the same switch serves JSON and YAML.
func DecodeContent(t NodeType, decode func(any) error) (Content, error) {
	switch t {
	case NodeHeading, NodeSubheading:
		var s string
		if err := decode(&s); err != nil {
			return nil, err
		}
		return Title(s), nil
	case NodeText:
		var s string
		if err := decode(&s); err != nil {
			return nil, err
		}
		return RichText(s), nil
	case NodeTable:
		var v Table
		if err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case NodeImage:
		var v Image
		if err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case NodeIcon:
		var v Icon
		if err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case NodeBanner:
		var v Banner
		if err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", t)
	}
}

// nodeFields mirrors Node without the interface-typed content.
type nodeFields struct {
	ID        string        `json:"id" yaml:"id"`
	Type      NodeType      `json:"type" yaml:"type"`
	ParentID  *string       `json:"parent" yaml:"parent"`
	Order     int           `json:"order" yaml:"order"`
	Collapsed bool          `json:"collapsed" yaml:"collapsed"`
	Pinned    bool          `json:"pinned" yaml:"pinned"`
	Style     *HeadingStyle `json:"style,omitempty" yaml:"style,omitempty"`
}

func (f nodeFields) node() (Node, error) {
	t, ok := ParseNodeType(string(f.Type))
	if !ok {
		return Node{}, fmt.Errorf("node %s: unknown type %q", f.ID, f.Type)
	}
	return Node{
		ID:        f.ID,
		Type:      t,
		ParentID:  f.ParentID,
		Order:     f.Order,
		Collapsed: f.Collapsed,
		Pinned:    f.Pinned,
		Style:     f.Style,
	}, nil
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		nodeFields
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := raw.nodeFields.node()
	if err != nil {
		return err
	}
	if len(raw.Content) > 0 && string(raw.Content) != "null" {
		c, err := DecodeContent(out.Type, func(v any) error { return json.Unmarshal(raw.Content, v) })
		if err != nil {
			return fmt.Errorf("node %s content: %w", out.ID, err)
		}
		out.Content = c
	}
	*n = out
	return nil
}

func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		nodeFields `yaml:",inline"`
		Content    yaml.Node `yaml:"content"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	out, err := raw.nodeFields.node()
	if err != nil {
		return err
	}
	if raw.Content.Kind != 0 && raw.Content.Tag != "!!null" {
		c, err := DecodeContent(out.Type, raw.Content.Decode)
		if err != nil {
			return fmt.Errorf("node %s content: %w", out.ID, err)
		}
		out.Content = c
	}
	*n = out
	return nil
}
