package projection

import "quire/internal/model"

// Row is one visible line of the sidebar.
type Row struct {
	Node        model.Node
	Depth       int
	HasChildren bool
	// Collapsed mirrors Node.Collapsed for containers with children.
	Collapsed bool
}

// Flatten returns the visible rows of the main list in document order. Collapsed nodes hide
// their subtree. Pinned roots are left out; they are drawn by Pinned instead.
func Flatten(src Source) []Row {
	var roots []model.Node
	for _, r := range src.Children("") {
		if !r.Pinned {
			roots = append(roots, r)
		}
	}
	return flattenFrom(src, roots)
}

// Pinned returns the rows of the pinned list: every pinned node (at any depth) drawn at depth 0
// with its visible subtree. A pinned node inside another pinned node's subtree appears in both.
func Pinned(src Source, pinned []model.Node) []Row {
	return flattenFrom(src, pinned)
}

func flattenFrom(src Source, roots []model.Node) []Row {
	type frame struct {
		node  model.Node
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: roots[i]})
	}
	var out []Row
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kids := src.Children(f.node.ID)
		row := Row{Node: f.node, Depth: f.depth, HasChildren: len(kids) > 0}
		row.Collapsed = row.HasChildren && f.node.Collapsed
		out = append(out, row)
		if f.node.Collapsed {
			continue
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: kids[i], depth: f.depth + 1})
		}
	}
	return out
}

// Linear returns every node id in document order, ignoring collapse. Prev/next selection walks
// this list.
func Linear(src Source) []string {
	visits, _ := preorder(src, "")
	out := make([]string, 0, len(visits))
	for _, v := range visits {
		out = append(out, v.node.ID)
	}
	return out
}

// IndexOf returns the row index of id, or -1.
func IndexOf(rows []Row, id string) int {
	for i, r := range rows {
		if r.Node.ID == id {
			return i
		}
	}
	return -1
}
