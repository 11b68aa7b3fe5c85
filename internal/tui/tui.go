// Package tui is the interactive sidebar: a bubbletea program that renders the projection,
// forwards chords to the session and shows a glamour preview of the active subtree.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"quire/internal/session"
)

type Options struct {
	// Logger must not write to the terminal the program draws on.
	Logger zerolog.Logger
	// Glyphs is "unicode" or "ascii"; QUIRE_TUI_GLYPHS overrides it.
	Glyphs string
	// ColorProfile forces a termenv profile; NO_COLOR overrides it.
	ColorProfile string
	HidePreview  bool
}

func Run(sess *session.Session, opt Options) error {
	applyGlyphPreference(opt.Glyphs)
	applyColorProfilePreference(opt.ColorProfile)
	applyThemePreference()

	m := newAppModel(sess, opt)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	sess.CancelDrag()
	return err
}
