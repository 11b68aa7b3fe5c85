package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"quire/internal/session"
)

// keyAliases maps keys a terminal can actually send onto the session's chords. Terminals
// can't tell Ctrl+Shift+H from Ctrl+H, and most never send Ctrl+Enter.
var keyAliases = map[string]string{
	"alt+h":      "mod+shift+h",
	"shift+up":   "mod+alt+up",
	"shift+down": "mod+alt+down",
	"delete":     "mod+delete",
	"ctrl+n":     "mod+enter",
	"tab":        "alt+left",
	"k":          "up",
	"j":          "down",
}

// keyEvent converts a bubbletea key into a session chord. Plain runes without an alias are
// not chords.
func keyEvent(msg tea.KeyMsg) session.KeyEvent {
	s := msg.String()
	if alias, ok := keyAliases[s]; ok {
		return session.ParseChord(alias)
	}
	if msg.Type == tea.KeyRunes && !msg.Alt {
		return session.KeyEvent{}
	}
	return session.ParseChord(s)
}

const helpNormal = "enter rename  ctrl+h heading  alt+h subheading  ctrl+t text  ctrl+n below  " +
	"shift+↑/↓ move  tab fold  e edit  d drag  p pin  delete remove  v preview  q quit"

const helpDrag = "↑/↓ choose target  enter drop  esc cancel"

const helpInput = "enter save  esc cancel"
