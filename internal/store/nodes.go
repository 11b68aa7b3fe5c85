package store

import (
	"strings"

	"quire/internal/model"
)

// Create adds a node of type typ under parentID ("" for root) and returns its id.
//
// If beforeID names an existing sibling under parentID the new node is inserted directly
// before it; otherwise it is appended. Siblings are renumbered densely afterwards.
func (db *DB) Create(typ model.NodeType, parentID, beforeID string) (string, error) {
	parentID = strings.TrimSpace(parentID)
	beforeID = strings.TrimSpace(beforeID)
	if _, ok := model.ParseNodeType(string(typ)); !ok {
		return "", ErrInvalidNodeType
	}
	if parentID != "" {
		p, ok := db.nodes[parentID]
		if !ok {
			return "", InvalidParentError{ParentID: parentID, ChildType: typ, Missing: true}
		}
		if !model.CanContain(p.Type, typ) {
			return "", InvalidParentError{ParentID: parentID, ParentType: p.Type, ChildType: typ}
		}
	}

	order, shift := db.planInsert(parentID, beforeID)
	if shift {
		db.shiftFrom(parentID, order)
	}

	n := &model.Node{
		ID:      db.nextID(),
		Type:    typ,
		Content: model.DefaultContent(typ),
		Order:   order,
	}
	if parentID != "" {
		pid := parentID
		n.ParentID = &pid
	}
	if typ.IsContainer() {
		s := model.DefaultHeadingStyle()
		n.Style = &s
	}
	db.insert(n)
	db.renumber(parentID)

	db.log.Debug().Str("op", "create").Str("id", n.ID).Str("type", string(typ)).
		Str("parent", parentID).Str("before", beforeID).Int("order", n.Order).Msg("node mutation")
	return n.ID, nil
}

// Patch is a partial update. Nil fields are left unchanged. Id and type are deliberately
// absent: they never change after creation.
type Patch struct {
	Content model.Content
	// Parent moves the node; a pointer to "" moves it to root level.
	Parent    *string
	Collapsed *bool
	Pinned    *bool
	Style     *model.HeadingStyle
}

// Update applies p to node id. Every field is validated before anything is written, so a
// rejected patch leaves the store unchanged.
func (db *DB) Update(id string, p Patch) error {
	id = strings.TrimSpace(id)
	n, ok := db.nodes[id]
	if !ok {
		return NotFoundError{Kind: "node", ID: id}
	}

	if p.Content != nil && !model.ContentFits(n.Type, p.Content) {
		return ContentMismatchError{NodeID: id, Type: n.Type, Kind: model.ContentKind(p.Content)}
	}
	if p.Style != nil && !n.Type.IsContainer() {
		return ErrStyleNotSupported
	}
	if err := validateStyle(p.Style); err != nil {
		return err
	}
	if err := validateContent(p.Content); err != nil {
		return err
	}

	reparent := false
	newParent := ""
	if p.Parent != nil {
		newParent = strings.TrimSpace(*p.Parent)
		if newParent != n.Parent() {
			if err := db.validateReparent(n, newParent); err != nil {
				return err
			}
			reparent = true
		}
	}

	if p.Content != nil {
		n.Content = model.CloneContent(p.Content)
	}
	if p.Style != nil {
		s := *p.Style
		n.Style = &s
	}
	if p.Collapsed != nil {
		n.Collapsed = *p.Collapsed
	}
	if p.Pinned != nil {
		n.Pinned = *p.Pinned
	}
	if reparent {
		db.move(n, newParent)
	}

	db.log.Debug().Str("op", "update").Str("id", id).Bool("reparent", reparent).
		Str("parent", n.Parent()).Msg("node mutation")
	return nil
}

// validateReparent checks that n may become a child of parentID ("" for root).
func (db *DB) validateReparent(n *model.Node, parentID string) error {
	if parentID == "" {
		return nil
	}
	p, ok := db.nodes[parentID]
	if !ok {
		return InvalidParentError{ParentID: parentID, ChildType: n.Type, Missing: true}
	}
	if parentID == n.ID || db.IsAncestor(n.ID, parentID) {
		return CycleRejectedError{NodeID: n.ID, ParentID: parentID}
	}
	if !model.CanContain(p.Type, n.Type) {
		return InvalidParentError{ParentID: parentID, ParentType: p.Type, ChildType: n.Type}
	}
	return nil
}

// move appends n at the end of parentID's children and closes the gap it left behind.
func (db *DB) move(n *model.Node, parentID string) {
	oldParent := n.Parent()
	order, _ := db.planInsert(parentID, "")
	if parentID == "" {
		n.ParentID = nil
	} else {
		pid := parentID
		n.ParentID = &pid
	}
	n.Order = order
	db.renumber(oldParent)
	db.renumber(parentID)
}

// Reparent is Update with only a parent change.
func (db *DB) Reparent(id, parentID string) error {
	return db.Update(id, Patch{Parent: &parentID})
}

// Delete removes id and every descendant. It returns the removed ids (id first) so callers
// can drop selection or editing state that pointed into the subtree.
func (db *DB) Delete(id string) ([]string, error) {
	id = strings.TrimSpace(id)
	n, ok := db.nodes[id]
	if !ok {
		return nil, NotFoundError{Kind: "node", ID: id}
	}
	parent := n.Parent()

	doomed := append([]string{id}, db.Descendants(id)...)
	for _, d := range doomed {
		delete(db.nodes, d)
		delete(db.created, d)
		db.retired[d] = true
	}
	db.renumber(parent)

	db.log.Debug().Str("op", "delete").Str("id", id).Int("removed", len(doomed)).Msg("node mutation")
	return doomed, nil
}

// Reorder swaps the order of two siblings. It is a swap, not an insert: moving past several
// siblings takes several calls.
func (db *DB) Reorder(draggedID, targetID string) error {
	draggedID = strings.TrimSpace(draggedID)
	targetID = strings.TrimSpace(targetID)
	a, ok := db.nodes[draggedID]
	if !ok {
		return NotFoundError{Kind: "node", ID: draggedID}
	}
	b, ok := db.nodes[targetID]
	if !ok {
		return NotFoundError{Kind: "node", ID: targetID}
	}
	if draggedID == targetID {
		return nil
	}
	if a.Parent() != b.Parent() {
		return InvalidReorderError{DraggedID: draggedID, TargetID: targetID}
	}
	a.Order, b.Order = b.Order, a.Order

	db.log.Debug().Str("op", "reorder").Str("dragged", draggedID).Str("target", targetID).Msg("node mutation")
	return nil
}

func (db *DB) ToggleCollapse(id string) error {
	n, ok := db.nodes[strings.TrimSpace(id)]
	if !ok {
		return NotFoundError{Kind: "node", ID: id}
	}
	n.Collapsed = !n.Collapsed
	return nil
}

func (db *DB) TogglePin(id string) error {
	n, ok := db.nodes[strings.TrimSpace(id)]
	if !ok {
		return NotFoundError{Kind: "node", ID: id}
	}
	n.Pinned = !n.Pinned
	return nil
}

// SetCollapsed sets the flag and reports whether it changed.
func (db *DB) SetCollapsed(id string, collapsed bool) (bool, error) {
	n, ok := db.nodes[strings.TrimSpace(id)]
	if !ok {
		return false, NotFoundError{Kind: "node", ID: id}
	}
	if n.Collapsed == collapsed {
		return false, nil
	}
	n.Collapsed = collapsed
	return true, nil
}

// SetContent replaces the payload of id.
func (db *DB) SetContent(id string, c model.Content) error {
	return db.Update(id, Patch{Content: c})
}

// Rename sets the title of a heading/subheading (or the body of a text node). Blank input
// becomes "Untitled".
func (db *DB) Rename(id, title string) error {
	n, ok := db.nodes[strings.TrimSpace(id)]
	if !ok {
		return NotFoundError{Kind: "node", ID: id}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	switch n.Type {
	case model.NodeHeading, model.NodeSubheading:
		return db.SetContent(n.ID, model.Title(title))
	case model.NodeText:
		return db.SetContent(n.ID, model.RichText(title))
	default:
		return ContentMismatchError{NodeID: n.ID, Type: n.Type, Kind: "title"}
	}
}
