package store

import (
	"fmt"
	"sort"

	"quire/internal/model"
)

// Check verifies the structural invariants of the store:
//   - every parent reference resolves
//   - the parent graph is acyclic
//   - each parent's type may contain each child's type
//   - orders are unique within each sibling set
//   - style and content values that reach printed CSS are well-formed
//
// It returns the first violation found, checking nodes in id order so the result is stable.
func (db *DB) Check() error {
	ids := make([]string, 0, len(db.nodes))
	for id := range db.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	orders := map[string]map[int]string{}
	for _, id := range ids {
		n := db.nodes[id]
		if !model.ContentFits(n.Type, n.Content) {
			return ContentMismatchError{NodeID: id, Type: n.Type, Kind: model.ContentKind(n.Content)}
		}
		if err := validateStyle(n.Style); err != nil {
			return fmt.Errorf("node %s: %w", id, err)
		}
		if err := validateContent(n.Content); err != nil {
			return fmt.Errorf("node %s: %w", id, err)
		}
		pid := n.Parent()
		if n.ParentID != nil {
			p, ok := db.nodes[pid]
			if !ok {
				return InvalidParentError{ParentID: pid, ChildType: n.Type, Missing: true}
			}
			if !model.CanContain(p.Type, n.Type) {
				return InvalidParentError{ParentID: pid, ParentType: p.Type, ChildType: n.Type}
			}
		}
		if orders[pid] == nil {
			orders[pid] = map[int]string{}
		}
		if other, dup := orders[pid][n.Order]; dup {
			return fmt.Errorf("duplicate order %d under %q: %s and %s", n.Order, pid, other, id)
		}
		orders[pid][n.Order] = id
	}

	for _, id := range ids {
		seen := map[string]bool{id: true}
		cur := db.nodes[id]
		for cur.ParentID != nil {
			pid := *cur.ParentID
			if seen[pid] {
				return CycleRejectedError{NodeID: id, ParentID: pid}
			}
			seen[pid] = true
			cur = db.nodes[pid]
		}
	}
	return nil
}
