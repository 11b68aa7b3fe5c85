package session

import (
	"strings"

	"quire/internal/model"
	"quire/internal/mutate"
	"quire/internal/projection"
)

// KeyEvent is a chord as the front end saw it. Mod is Ctrl or Cmd.
type KeyEvent struct {
	// Key is a lowercase key name: a letter, "enter", "backspace", "delete", "up", "down",
	// "left" or "right".
	Key   string
	Mod   bool
	Shift bool
	Alt   bool

	// InTextInput is set while focus is inside a text field; every chord is ignored then.
	InTextInput bool
}

// ParseChord reads chords like "ctrl+shift+h", "alt+left" or "enter". "cmd" and "mod" are
// accepted as Mod.
func ParseChord(s string) KeyEvent {
	var ev KeyEvent
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == len(parts)-1 {
			ev.Key = p
			break
		}
		switch p {
		case "ctrl", "cmd", "mod", "meta":
			ev.Mod = true
		case "shift":
			ev.Shift = true
		case "alt", "option", "opt":
			ev.Alt = true
		}
	}
	switch ev.Key {
	case "del":
		ev.Key = "delete"
	case "return":
		ev.Key = "enter"
	}
	return ev
}

type Command int

const (
	CmdNone Command = iota
	CmdNewHeading
	CmdNewSubheading
	CmdNewText
	CmdRename
	CmdDelete
	CmdMoveUp
	CmdMoveDown
	CmdToggleCollapse
	CmdExpand
	CmdSelectPrev
	CmdSelectNext
	CmdSiblingBelow
)

func (c Command) String() string {
	switch c {
	case CmdNewHeading:
		return "new-heading"
	case CmdNewSubheading:
		return "new-subheading"
	case CmdNewText:
		return "new-text"
	case CmdRename:
		return "rename"
	case CmdDelete:
		return "delete"
	case CmdMoveUp:
		return "move-up"
	case CmdMoveDown:
		return "move-down"
	case CmdToggleCollapse:
		return "toggle-collapse"
	case CmdExpand:
		return "expand"
	case CmdSelectPrev:
		return "select-prev"
	case CmdSelectNext:
		return "select-next"
	case CmdSiblingBelow:
		return "sibling-below"
	default:
		return "none"
	}
}

// Lookup maps a chord to its command. CmdNone means the chord is not bound.
func Lookup(ev KeyEvent) Command {
	k := ev.Key
	switch {
	case ev.Mod && !ev.Alt && k == "h" && ev.Shift:
		return CmdNewSubheading
	case ev.Mod && !ev.Alt && k == "h":
		return CmdNewHeading
	case ev.Mod && !ev.Shift && !ev.Alt && k == "t":
		return CmdNewText
	case !ev.Mod && !ev.Shift && !ev.Alt && k == "enter":
		return CmdRename
	case ev.Mod && !ev.Shift && k == "enter":
		return CmdSiblingBelow
	case ev.Mod && !ev.Alt && (k == "backspace" || k == "delete"):
		return CmdDelete
	case ev.Mod && ev.Alt && k == "up":
		return CmdMoveUp
	case ev.Mod && ev.Alt && k == "down":
		return CmdMoveDown
	case !ev.Mod && ev.Alt && k == "left":
		return CmdToggleCollapse
	case !ev.Mod && ev.Alt && k == "right":
		return CmdExpand
	case !ev.Mod && !ev.Alt && k == "up":
		return CmdSelectPrev
	case !ev.Mod && !ev.Alt && k == "down":
		return CmdSelectNext
	default:
		return CmdNone
	}
}

// Result reports what a dispatched chord did.
type Result struct {
	Command Command
	// Handled is false when the chord was ignored (unbound, typing, or nothing to act on).
	Handled    bool
	CreatedID  string
	DeletedIDs []string
}

// Dispatch runs the command bound to ev against the store. Newly created nodes become active.
func (s *Session) Dispatch(ev KeyEvent) (Result, error) {
	if ev.InTextInput {
		return Result{}, nil
	}
	cmd := Lookup(ev)
	res := Result{Command: cmd}
	if cmd == CmdNone {
		return res, nil
	}
	if _, renaming := s.Renaming(); renaming && cmd == CmdRename {
		return res, nil
	}

	active, hasActive := s.Active()
	var err error
	switch cmd {
	case CmdNewHeading:
		res.CreatedID, err = s.db.Create(model.NodeHeading, "", "")

	case CmdNewSubheading:
		parent := ""
		if hasActive && active.Type == model.NodeHeading {
			parent = active.ID
			s.expand(active)
		}
		res.CreatedID, err = s.db.Create(model.NodeSubheading, parent, "")

	case CmdNewText:
		parent := ""
		if hasActive {
			if active.Type.IsContainer() {
				parent = active.ID
				s.expand(active)
			} else {
				// A leaf cannot hold children; the text joins the leaf's siblings.
				parent = active.Parent()
			}
		}
		res.CreatedID, err = s.db.Create(model.NodeText, parent, "")

	case CmdRename:
		if !hasActive {
			return res, nil
		}
		err = s.BeginRename()

	case CmdDelete:
		if !hasActive {
			return res, nil
		}
		res.DeletedIDs, err = s.Delete(active.ID)

	case CmdMoveUp, CmdMoveDown:
		if !hasActive {
			return res, nil
		}
		dir := mutate.Up
		if cmd == CmdMoveDown {
			dir = mutate.Down
		}
		var nb string
		nb, err = mutate.MoveSibling(s.db, active.ID, dir)
		if err == nil && nb == "" {
			return res, nil
		}

	case CmdToggleCollapse:
		if !hasActive {
			return res, nil
		}
		err = s.db.ToggleCollapse(active.ID)

	case CmdExpand:
		if !hasActive || !active.Collapsed {
			return res, nil
		}
		err = s.db.ToggleCollapse(active.ID)

	case CmdSelectPrev, CmdSelectNext:
		next := s.neighbor(cmd == CmdSelectNext)
		if next == "" {
			return res, nil
		}
		err = s.Select(next)

	case CmdSiblingBelow:
		if !hasActive {
			return res, nil
		}
		res.CreatedID, err = mutate.AddSiblingBelow(s.db, active.ID)
	}
	if err != nil {
		s.log.Debug().Err(err).Str("cmd", cmd.String()).Msg("key command rejected")
		return res, err
	}
	if res.CreatedID != "" {
		if err := s.Select(res.CreatedID); err != nil {
			return res, err
		}
	}
	res.Handled = true
	s.log.Debug().Str("cmd", cmd.String()).Str("active", s.activeID).Msg("key command")
	return res, nil
}

func (s *Session) expand(n model.Node) {
	if n.Collapsed {
		_, _ = s.db.SetCollapsed(n.ID, false)
	}
}

// neighbor returns the node before/after the active one in document order. With nothing
// active it returns the first node.
func (s *Session) neighbor(forward bool) string {
	ids := projection.Linear(s.db)
	if len(ids) == 0 {
		return ""
	}
	if s.activeID == "" {
		return ids[0]
	}
	for i, id := range ids {
		if id != s.activeID {
			continue
		}
		j := i - 1
		if forward {
			j = i + 1
		}
		if j < 0 || j >= len(ids) {
			return ""
		}
		return ids[j]
	}
	return ""
}
