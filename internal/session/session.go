// Package session holds the interactive state layered on the node store: the active node, the
// leaf being edited, the inline rename draft and the drag in progress.
package session

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"quire/internal/model"
	"quire/internal/mutate"
	"quire/internal/store"
)

var (
	ErrNoActive    = errors.New("no active node")
	ErrNotLeaf     = errors.New("only leaf nodes open an editor")
	ErrNotRenaming = errors.New("no rename in progress")
	ErrDragActive  = errors.New("a drag is already in progress")
	ErrNoDrag      = errors.New("no drag in progress")
)

// Session is the single writer for one document. It is not safe for concurrent use.
type Session struct {
	db  *store.DB
	log zerolog.Logger

	activeID      string
	editingLeafID string

	renaming    bool
	renameID    string
	renameDraft string

	drag *mutate.Gesture
}

type Option func(*Session)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

func New(db *store.DB, opts ...Option) *Session {
	s := &Session{db: db, log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) Store() *store.DB { return s.db }

// ActiveID is the selected node, or "".
func (s *Session) ActiveID() string { return s.activeID }

// EditingLeafID is the leaf whose editor is open, or "".
func (s *Session) EditingLeafID() string { return s.editingLeafID }

// Active returns a copy of the selected node.
func (s *Session) Active() (model.Node, bool) {
	if s.activeID == "" {
		return model.Node{}, false
	}
	return s.db.FindNode(s.activeID)
}

// Select makes id the active node ("" clears the selection). Any rename in progress is
// abandoned, and the leaf editor closes when the new selection is not a leaf.
func (s *Session) Select(id string) error {
	id = strings.TrimSpace(id)
	if id != "" && !s.db.Has(id) {
		return store.NotFoundError{Kind: "node", ID: id}
	}
	if id == s.activeID {
		return nil
	}
	s.activeID = id
	s.cancelRename()
	if id == "" {
		s.editingLeafID = ""
		return nil
	}
	if n, _ := s.db.FindNode(id); !n.Type.IsLeaf() {
		s.editingLeafID = ""
	}
	return nil
}

// BeginEdit opens the editor on the active node, which must be a leaf.
func (s *Session) BeginEdit() error {
	n, ok := s.Active()
	if !ok {
		return ErrNoActive
	}
	if !n.Type.IsLeaf() {
		return ErrNotLeaf
	}
	s.editingLeafID = n.ID
	return nil
}

func (s *Session) EndEdit() { s.editingLeafID = "" }

// Delete removes id and its subtree, then drops any selection, editor or rename that pointed
// into it.
func (s *Session) Delete(id string) ([]string, error) {
	deleted, err := s.db.Delete(id)
	if err != nil {
		return nil, err
	}
	s.forget(deleted)
	return deleted, nil
}

func (s *Session) forget(deleted []string) {
	gone := make(map[string]bool, len(deleted))
	for _, d := range deleted {
		gone[d] = true
	}
	if gone[s.activeID] {
		s.activeID = ""
	}
	if gone[s.editingLeafID] {
		s.editingLeafID = ""
	}
	if s.renaming && gone[s.renameID] {
		s.cancelRename()
	}
}

// Renaming reports whether an inline rename is open and on which node.
func (s *Session) Renaming() (string, bool) { return s.renameID, s.renaming }

func (s *Session) RenameDraft() string { return s.renameDraft }

// BeginRename opens an inline rename of the active node with its current text as the draft.
func (s *Session) BeginRename() error {
	n, ok := s.Active()
	if !ok {
		return ErrNoActive
	}
	s.renaming = true
	s.renameID = n.ID
	s.renameDraft = model.PlainText(n.Content)
	return nil
}

func (s *Session) SetRenameDraft(v string) { s.renameDraft = v }

// CommitRename writes the trimmed draft ("Untitled" when blank) and closes the rename.
func (s *Session) CommitRename() error {
	if !s.renaming {
		return ErrNotRenaming
	}
	id, draft := s.renameID, s.renameDraft
	s.cancelRename()
	return s.db.Rename(id, draft)
}

func (s *Session) CancelRename() { s.cancelRename() }

func (s *Session) cancelRename() {
	s.renaming = false
	s.renameID = ""
	s.renameDraft = ""
}

// StartDrag picks up id.
func (s *Session) StartDrag(id string) error {
	if s.drag != nil && !s.drag.Done() {
		return ErrDragActive
	}
	g, err := mutate.BeginDrag(s.db, id)
	if err != nil {
		return err
	}
	s.drag = g
	return nil
}

// DragOver tells the drag which container is under the pointer.
func (s *Session) DragOver(id string) {
	if s.drag != nil {
		s.drag.Reveal(id)
	}
}

// Dragging returns the id being dragged, or "".
func (s *Session) Dragging() string {
	if s.drag == nil || s.drag.Done() {
		return ""
	}
	return s.drag.DraggedID()
}

// CollapsedDuringDrag lists the nodes the current drag expanded; they collapse again on drop
// or cancel.
func (s *Session) CollapsedDuringDrag() []string {
	if s.drag == nil || s.drag.Done() {
		return nil
	}
	return s.drag.Expanded()
}

func (s *Session) Drop(targetID string) (mutate.DropResult, error) {
	if s.drag == nil || s.drag.Done() {
		return mutate.DropResult{}, ErrNoDrag
	}
	g := s.drag
	s.drag = nil
	res, err := g.Drop(targetID)
	if err != nil {
		s.log.Debug().Err(err).Str("dragged", res.DraggedID).Str("target", targetID).Msg("drop rejected")
		return res, err
	}
	s.log.Debug().Str("rule", res.Rule.String()).Str("dragged", res.DraggedID).Str("target", targetID).Msg("drop")
	return res, nil
}

func (s *Session) CancelDrag() {
	if s.drag != nil {
		s.drag.Cancel()
		s.drag = nil
	}
}
