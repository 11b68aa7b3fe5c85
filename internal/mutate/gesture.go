package mutate

import (
	"errors"
	"strings"

	"quire/internal/store"
)

var ErrGestureFinished = errors.New("drag gesture already finished")

// Gesture is one drag from pick-up to release. The only store writes it makes before the drop
// are collapse flags it opens to reveal the dragged row; Drop and Cancel close them again.
type Gesture struct {
	db        *store.DB
	draggedID string
	expanded  []string
	done      bool
}

// BeginDrag starts a drag of draggedID. If its parent is collapsed the parent is expanded so the
// row stays visible while it moves.
func BeginDrag(db *store.DB, draggedID string) (*Gesture, error) {
	draggedID = strings.TrimSpace(draggedID)
	n, ok := db.FindNode(draggedID)
	if !ok {
		return nil, store.NotFoundError{Kind: "node", ID: draggedID}
	}
	g := &Gesture{db: db, draggedID: draggedID}
	if pid := n.Parent(); pid != "" {
		g.expand(pid)
	}
	return g, nil
}

func (g *Gesture) expand(id string) {
	changed, err := g.db.SetCollapsed(id, false)
	if err == nil && changed {
		g.expanded = append(g.expanded, id)
	}
}

// Reveal expands a collapsed container hovered during the drag so its children become drop
// targets. It is restored with the rest when the gesture ends.
func (g *Gesture) Reveal(id string) {
	if g == nil || g.done {
		return
	}
	if n, ok := g.db.FindNode(id); ok && n.Collapsed && n.Type.IsContainer() {
		g.expand(n.ID)
	}
}

func (g *Gesture) DraggedID() string { return g.draggedID }

// Expanded lists the ids this gesture opened, in the order it opened them.
func (g *Gesture) Expanded() []string {
	return append([]string(nil), g.expanded...)
}

func (g *Gesture) Done() bool { return g == nil || g.done }

// Drop applies the drop onto targetID and restores the auto-expanded collapse flags.
func (g *Gesture) Drop(targetID string) (DropResult, error) {
	if g.Done() {
		return DropResult{}, ErrGestureFinished
	}
	res, err := ApplyDrop(g.db, g.draggedID, targetID)
	g.finish()
	return res, err
}

// Cancel ends the gesture without a drop. The store ends up exactly as it was at BeginDrag.
func (g *Gesture) Cancel() {
	if g.Done() {
		return
	}
	g.finish()
}

func (g *Gesture) finish() {
	seen := map[string]bool{}
	for _, id := range g.expanded {
		if seen[id] {
			continue
		}
		seen[id] = true
		// The node may have been deleted by the drop's caller; nothing to restore then.
		_, _ = g.db.SetCollapsed(id, true)
	}
	g.expanded = nil
	g.done = true
}
