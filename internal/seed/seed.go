// Package seed builds the starting document of a session: the welcome document, or a
// YAML/JSON fixture supplied by the user. Nothing here writes the tree back to disk.
package seed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"quire/internal/model"
	"quire/internal/store"
)

const (
	WelcomeHeadingID = "welcome-heading"
	IntroTextID      = "intro-text"
)

// Document is the fixture file shape. Active names the node selected when the session starts.
type Document struct {
	Active string       `json:"active,omitempty" yaml:"active,omitempty"`
	Nodes  []model.Node `json:"nodes" yaml:"nodes"`
}

var ErrEmptyDocument = errors.New("document has no nodes")

// WelcomeDocument is the document a fresh session opens with.
func WelcomeDocument() Document {
	heading := WelcomeHeadingID
	style := model.DefaultHeadingStyle()
	return Document{
		Active: WelcomeHeadingID,
		Nodes: []model.Node{
			{
				ID:      WelcomeHeadingID,
				Type:    model.NodeHeading,
				Content: model.Title("Welcome to Quire"),
				Style:   &style,
			},
			{
				ID:       IntroTextID,
				Type:     model.NodeText,
				Content:  model.RichText("<p>Start creating organized notes. Select any block to edit it, or add new blocks from the sidebar.</p>"),
				ParentID: &heading,
			},
		},
	}
}

// Open builds a store from doc.
func Open(doc Document, opts ...store.Option) (*store.DB, error) {
	if len(doc.Nodes) == 0 {
		return nil, ErrEmptyDocument
	}
	db, err := store.FromNodes(doc.Nodes, opts...)
	if err != nil {
		return nil, err
	}
	if doc.Active != "" && !db.Has(doc.Active) {
		return nil, store.NotFoundError{Kind: "active node", ID: doc.Active}
	}
	return db, nil
}

// Decode reads a fixture. format is "json" or "yaml"; "" sniffs the first non-space byte.
// A bare list of nodes is accepted as well as the {active, nodes} object.
func Decode(r io.Reader, format string) (Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Document{}, err
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return Document{}, ErrEmptyDocument
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "yaml"
		if trimmed[0] == '{' || trimmed[0] == '[' {
			format = "json"
		}
	}

	var doc Document
	switch format {
	case "json":
		if trimmed[0] == '[' {
			err = json.Unmarshal(trimmed, &doc.Nodes)
		} else {
			err = json.Unmarshal(trimmed, &doc)
		}
	case "yaml", "yml":
		var probe yaml.Node
		if err = yaml.Unmarshal(trimmed, &probe); err == nil {
			if len(probe.Content) > 0 && probe.Content[0].Kind == yaml.SequenceNode {
				err = probe.Content[0].Decode(&doc.Nodes)
			} else {
				err = probe.Decode(&doc)
			}
		}
	default:
		return Document{}, fmt.Errorf("unknown fixture format: %s", format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("decode %s fixture: %w", format, err)
	}
	return doc, nil
}

// Load reads the fixture at path, choosing the decoder from the file extension.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	format := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = "json"
	case ".yaml", ".yml":
		format = "yaml"
	}
	doc, err := Decode(f, format)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Snapshot captures db as a fixture, nodes in creation order.
func Snapshot(db *store.DB, active string) Document {
	return Document{Active: active, Nodes: db.Nodes()}
}
