// Package mutate turns user gestures (drops, keyboard moves) into node store calls.
package mutate

import (
	"strings"

	"quire/internal/model"
	"quire/internal/store"
)

// DropRule names which row of the drop decision table fired.
type DropRule int

const (
	// DropNoop covers self-drops and drops with nothing underneath.
	DropNoop DropRule = iota
	// DropIntoHeading reparents a non-heading under the heading it was dropped on.
	DropIntoHeading
	// DropIntoSubheading reparents a leaf under the subheading it was dropped on.
	DropIntoSubheading
	// DropReorder swaps two siblings.
	DropReorder
	// DropMoveAndReorder moves the dragged node into the target's sibling set, then swaps.
	DropMoveAndReorder
)

func (r DropRule) String() string {
	switch r {
	case DropNoop:
		return "noop"
	case DropIntoHeading:
		return "into-heading"
	case DropIntoSubheading:
		return "into-subheading"
	case DropReorder:
		return "reorder"
	case DropMoveAndReorder:
		return "move-and-reorder"
	default:
		return "unknown"
	}
}

type DropResult struct {
	Rule       DropRule
	DraggedID  string
	TargetID   string
	FromParent string
	ToParent   string
	Changed    bool
}

// Classify evaluates the decision table for dragged onto target, first match wins. It does
// not check whether the resulting mutation is legal; ApplyDrop does.
func Classify(dragged, target model.Node) DropRule {
	if dragged.ID == target.ID {
		return DropNoop
	}
	switch {
	case target.Type == model.NodeHeading && dragged.Type != model.NodeHeading:
		return DropIntoHeading
	case target.Type == model.NodeSubheading && dragged.Type.IsLeaf():
		return DropIntoSubheading
	case dragged.Parent() == target.Parent():
		return DropReorder
	default:
		return DropMoveAndReorder
	}
}

// ApplyDrop applies the drop of draggedID onto targetID. An empty targetID (released over
// nothing) is a no-op. Every rule is all-or-nothing: on error the store is unchanged.
//
// Nodes dropped into a heading or subheading land at the end of its children.
func ApplyDrop(db *store.DB, draggedID, targetID string) (DropResult, error) {
	draggedID = strings.TrimSpace(draggedID)
	targetID = strings.TrimSpace(targetID)
	res := DropResult{DraggedID: draggedID, TargetID: targetID}
	if db == nil || draggedID == "" || targetID == "" {
		return res, nil
	}

	dragged, ok := db.FindNode(draggedID)
	if !ok {
		return res, store.NotFoundError{Kind: "node", ID: draggedID}
	}
	target, ok := db.FindNode(targetID)
	if !ok {
		return res, store.NotFoundError{Kind: "node", ID: targetID}
	}

	res.Rule = Classify(dragged, target)
	res.FromParent = dragged.Parent()
	res.ToParent = dragged.Parent()

	switch res.Rule {
	case DropNoop:
		return res, nil

	case DropIntoHeading, DropIntoSubheading:
		if dragged.Parent() == target.ID {
			// Already inside; the original position is kept.
			res.ToParent = target.ID
			return res, nil
		}
		if err := db.Reparent(dragged.ID, target.ID); err != nil {
			return res, err
		}
		res.ToParent = target.ID
		res.Changed = true
		return res, nil

	case DropReorder:
		if err := db.Reorder(dragged.ID, target.ID); err != nil {
			return res, err
		}
		res.Changed = true
		return res, nil

	default:
		// Reparent validates containment and acyclicity before it writes anything. Once it
		// succeeds both nodes share a parent, so the swap cannot fail.
		if err := db.Reparent(dragged.ID, target.Parent()); err != nil {
			return res, err
		}
		if err := db.Reorder(dragged.ID, target.ID); err != nil {
			return res, err
		}
		res.ToParent = target.Parent()
		res.Changed = true
		return res, nil
	}
}
