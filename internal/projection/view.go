// Package projection derives read-only shapes from the node store: the recursive view used for
// rendering and export, the bookmark outline, and the flat row lists the sidebar draws.
//
// Nothing here mutates the store. Every traversal uses an explicit stack and visits siblings in
// store order, so two calls against an unchanged store return identical values.
package projection

import (
	"quire/internal/model"
	"quire/internal/store"
)

// Source is the read side of the node store.
type Source interface {
	FindNode(id string) (model.Node, bool)
	Children(parentID string) []model.Node
}

// View mirrors one node and its subtree. Leaves carry content only; containers carry their
// ordered child views as well.
type View struct {
	ID        string              `json:"id" yaml:"id"`
	Type      model.NodeType      `json:"type" yaml:"type"`
	Depth     int                 `json:"depth" yaml:"depth"`
	Content   model.Content       `json:"content" yaml:"content"`
	Style     *model.HeadingStyle `json:"style,omitempty" yaml:"style,omitempty"`
	Collapsed bool                `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Pinned    bool                `json:"pinned,omitempty" yaml:"pinned,omitempty"`
	Children  []View              `json:"children,omitempty" yaml:"children,omitempty"`
}

// Title returns the display title for headings ("Untitled" when blank) and "" for other types.
func (v View) Title() string {
	if !v.Type.IsContainer() {
		return ""
	}
	return titleOf(v.Content)
}

// visit is one entry of a pre-order walk.
type visit struct {
	node  model.Node
	depth int
	kids  []string
}

// preorder walks the subtree under rootID (rootID itself included unless it is "") and returns
// the visits in document order.
func preorder(src Source, rootID string) ([]visit, error) {
	type frame struct {
		node  model.Node
		depth int
	}
	var stack []frame
	if rootID == "" {
		roots := src.Children("")
		for i := len(roots) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: roots[i]})
		}
	} else {
		n, ok := src.FindNode(rootID)
		if !ok {
			return nil, store.NotFoundError{Kind: "node", ID: rootID}
		}
		stack = append(stack, frame{node: n})
	}

	var out []visit
	seen := map[string]bool{}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[f.node.ID] {
			continue
		}
		seen[f.node.ID] = true

		kids := src.Children(f.node.ID)
		ids := make([]string, 0, len(kids))
		for _, k := range kids {
			ids = append(ids, k.ID)
		}
		out = append(out, visit{node: f.node, depth: f.depth, kids: ids})
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: kids[i], depth: f.depth + 1})
		}
	}
	return out, nil
}

// BuildView returns the view tree rooted at rootID. Depth is relative to rootID (0).
func BuildView(src Source, rootID string) (View, error) {
	if rootID == "" {
		return View{}, store.NotFoundError{Kind: "node", ID: "(empty)"}
	}
	views, err := buildViews(src, rootID)
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// BuildForest returns a view per root node, in root order.
func BuildForest(src Source) []View {
	views, _ := buildViews(src, "")
	return views
}

// buildViews assembles views bottom-up: in reverse pre-order every node's children are
// already built when the node itself is reached.
func buildViews(src Source, rootID string) ([]View, error) {
	visits, err := preorder(src, rootID)
	if err != nil {
		return nil, err
	}
	built := make(map[string]View, len(visits))
	for i := len(visits) - 1; i >= 0; i-- {
		v := visits[i]
		n := v.node
		view := View{
			ID:        n.ID,
			Type:      n.Type,
			Depth:     v.depth,
			Content:   n.Content,
			Style:     n.Style,
			Collapsed: n.Collapsed,
			Pinned:    n.Pinned,
		}
		for _, k := range v.kids {
			if kv, ok := built[k]; ok {
				view.Children = append(view.Children, kv)
			}
		}
		built[n.ID] = view
	}

	var out []View
	for _, v := range visits {
		if v.depth == 0 {
			out = append(out, built[v.node.ID])
		}
	}
	return out, nil
}
