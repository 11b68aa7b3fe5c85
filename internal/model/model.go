package model

import "strings"

type NodeType string

const (
	NodeHeading    NodeType = "heading"
	NodeSubheading NodeType = "subheading"
	NodeText       NodeType = "text"
	NodeTable      NodeType = "table"
	NodeImage      NodeType = "image"
	NodeIcon       NodeType = "icon"
	NodeBanner     NodeType = "banner"
)

// NodeTypes lists every block type in sidebar/menu order.
var NodeTypes = []NodeType{
	NodeHeading,
	NodeSubheading,
	NodeText,
	NodeTable,
	NodeImage,
	NodeIcon,
	NodeBanner,
}

func ParseNodeType(s string) (NodeType, bool) {
	switch NodeType(strings.ToLower(strings.TrimSpace(s))) {
	case NodeHeading:
		return NodeHeading, true
	case NodeSubheading:
		return NodeSubheading, true
	case NodeText:
		return NodeText, true
	case NodeTable:
		return NodeTable, true
	case NodeImage:
		return NodeImage, true
	case NodeIcon:
		return NodeIcon, true
	case NodeBanner:
		return NodeBanner, true
	default:
		return "", false
	}
}

// IsContainer reports whether nodes of this type may have children.
func (t NodeType) IsContainer() bool {
	switch t {
	case NodeHeading, NodeSubheading:
		return true
	case NodeText, NodeTable, NodeImage, NodeIcon, NodeBanner:
		return false
	default:
		return false
	}
}

func (t NodeType) IsLeaf() bool {
	switch t {
	case NodeText, NodeTable, NodeImage, NodeIcon, NodeBanner:
		return true
	default:
		return false
	}
}

// HeadingStyle is cosmetic only; it never affects structure.
type HeadingStyle struct {
	Color     string `json:"color" yaml:"color"`
	Bold      bool   `json:"bold" yaml:"bold"`
	Italic    bool   `json:"italic" yaml:"italic"`
	Underline bool   `json:"underline" yaml:"underline"`
	Font      string `json:"font" yaml:"font"`
}

func DefaultHeadingStyle() HeadingStyle {
	return HeadingStyle{
		Color: "#4A3B2F",
		Bold:  true,
		Font:  `"Playfair Display", serif`,
	}
}

type Node struct {
	ID      string   `json:"id" yaml:"id"`
	Type    NodeType `json:"type" yaml:"type"`
	Content Content  `json:"content" yaml:"content"`

	// ParentID is nil for root-level nodes.
	ParentID *string `json:"parent" yaml:"parent"`
	Order    int     `json:"order" yaml:"order"`

	Collapsed bool `json:"collapsed" yaml:"collapsed"`
	Pinned    bool `json:"pinned" yaml:"pinned"`

	// Style is only set for heading and subheading nodes.
	Style *HeadingStyle `json:"style,omitempty" yaml:"style,omitempty"`
}

// Parent returns the parent id, or "" for a root node.
func (n Node) Parent() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

func (n Node) IsRoot() bool { return n.ParentID == nil }

// Clone returns a deep copy so callers can't reach into store-owned memory.
func (n Node) Clone() Node {
	out := n
	if n.ParentID != nil {
		p := *n.ParentID
		out.ParentID = &p
	}
	if n.Style != nil {
		s := *n.Style
		out.Style = &s
	}
	out.Content = CloneContent(n.Content)
	return out
}
