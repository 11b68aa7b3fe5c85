package projection

import (
	"strings"

	"quire/internal/model"
)

// Bookmark is one heading/subheading entry of the export outline.
type Bookmark struct {
	ID       string     `json:"id" yaml:"id"`
	Title    string     `json:"title" yaml:"title"`
	Depth    int        `json:"depth" yaml:"depth"`
	Children []Bookmark `json:"children" yaml:"children"`
}

func titleOf(c model.Content) string {
	if t := strings.TrimSpace(model.PlainText(c)); t != "" {
		return t
	}
	return "Untitled"
}

// Outline returns the bookmarks for the subtree at rootID ("" for the whole document).
//
// Every child of every node is scanned, not only headings: a non-heading node contributes the
// bookmarks of its own descendants at its level, so headings under intervening non-heading
// structure are still found. Depth is the tree depth relative to rootID.
func Outline(src Source, rootID string) ([]Bookmark, error) {
	visits, err := preorder(src, rootID)
	if err != nil {
		return nil, err
	}
	// marks[id] is what the subtree at id contributes to its parent's bookmark children.
	marks := make(map[string][]Bookmark, len(visits))
	for i := len(visits) - 1; i >= 0; i-- {
		v := visits[i]
		var inner []Bookmark
		for _, k := range v.kids {
			inner = append(inner, marks[k]...)
		}
		if v.node.Type.IsContainer() {
			if inner == nil {
				inner = []Bookmark{}
			}
			marks[v.node.ID] = []Bookmark{{
				ID:       v.node.ID,
				Title:    titleOf(v.node.Content),
				Depth:    v.depth,
				Children: inner,
			}}
		} else {
			marks[v.node.ID] = inner
		}
	}

	out := []Bookmark{}
	for _, v := range visits {
		if v.depth == 0 {
			out = append(out, marks[v.node.ID]...)
		}
	}
	return out, nil
}

// FlattenBookmarks lists bookmarks in document order with their nesting depth.
func FlattenBookmarks(marks []Bookmark) []Bookmark {
	var out []Bookmark
	stack := make([]Bookmark, 0, len(marks))
	for i := len(marks) - 1; i >= 0; i-- {
		stack = append(stack, marks[i])
	}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, Bookmark{ID: b.ID, Title: b.Title, Depth: b.Depth, Children: []Bookmark{}})
		for i := len(b.Children) - 1; i >= 0; i-- {
			stack = append(stack, b.Children[i])
		}
	}
	return out
}
