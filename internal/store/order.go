package store

import (
	"sort"

	"quire/internal/model"
)

// SortNodesByOrder sorts nodes in place the same way Children does: order, then id.
// The store never produces equal orders within a sibling set; the id tie-break only keeps
// foreign input (imports, fixtures) deterministic.
func SortNodesByOrder(nodes []model.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return compareNodes(&nodes[i], &nodes[j]) < 0
	})
}

func compareNodes(a, b *model.Node) int {
	if a.Order < b.Order {
		return -1
	}
	if a.Order > b.Order {
		return 1
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}

// siblings returns the live nodes under parentID sorted by order. The returned pointers are
// store-owned; only mutation code may write through them.
func (db *DB) siblings(parentID string) []*model.Node {
	var out []*model.Node
	for _, n := range db.nodes {
		if n.Parent() == parentID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return compareNodes(out[i], out[j]) < 0 })
	return out
}

// renumber rewrites orders under parentID densely from 0, keeping relative sequence.
func (db *DB) renumber(parentID string) {
	for i, n := range db.siblings(parentID) {
		n.Order = i
	}
}

// planInsert returns the order the new node takes under parentID. When beforeID names a
// sibling the new node takes its slot and every sibling at or after it shifts up by one;
// otherwise the node is appended. shift reports whether the shift is needed.
func (db *DB) planInsert(parentID, beforeID string) (order int, shift bool) {
	sibs := db.siblings(parentID)
	if beforeID != "" {
		for _, s := range sibs {
			if s.ID == beforeID {
				return s.Order, true
			}
		}
	}
	// count(siblings) under dense numbering; max+1 keeps "last" true for gapped imports.
	next := len(sibs)
	if len(sibs) > 0 && sibs[len(sibs)-1].Order >= next {
		next = sibs[len(sibs)-1].Order + 1
	}
	return next, false
}

func (db *DB) shiftFrom(parentID string, from int) {
	for _, s := range db.siblings(parentID) {
		if s.Order >= from {
			s.Order++
		}
	}
}
