package mutate

import (
	"strings"

	"quire/internal/store"
)

type Direction int

const (
	Up Direction = iota
	Down
)

// MoveSibling swaps id with its previous (Up) or next (Down) sibling. It returns the neighbor
// it swapped with, or "" when id is already first/last.
func MoveSibling(db *store.DB, id string, dir Direction) (string, error) {
	id = strings.TrimSpace(id)
	n, ok := db.FindNode(id)
	if !ok {
		return "", store.NotFoundError{Kind: "node", ID: id}
	}
	sibs := db.ChildIDs(n.Parent())
	idx := -1
	for i, s := range sibs {
		if s == id {
			idx = i
			break
		}
	}
	j := idx - 1
	if dir == Down {
		j = idx + 1
	}
	if idx < 0 || j < 0 || j >= len(sibs) {
		return "", nil
	}
	if err := db.Reorder(id, sibs[j]); err != nil {
		return "", err
	}
	return sibs[j], nil
}

// AddSiblingBelow creates a node of the same type directly after id under the same parent.
func AddSiblingBelow(db *store.DB, id string) (string, error) {
	id = strings.TrimSpace(id)
	n, ok := db.FindNode(id)
	if !ok {
		return "", store.NotFoundError{Kind: "node", ID: id}
	}
	sibs := db.ChildIDs(n.Parent())
	before := ""
	for i, s := range sibs {
		if s == id && i+1 < len(sibs) {
			before = sibs[i+1]
			break
		}
	}
	return db.Create(n.Type, n.Parent(), before)
}
