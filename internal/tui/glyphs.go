package tui

import (
	"os"
	"strings"
	"sync"
)

// Terminals can't change the user's font, so affordances (twisties, pins, the drag marker)
// come in a Unicode and an ASCII variant.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference reads QUIRE_TUI_GLYPHS, falling back to the configured value.
// Unknown values keep the current set.
func applyGlyphPreference(configured string) {
	v := strings.TrimSpace(os.Getenv("QUIRE_TUI_GLYPHS"))
	if v == "" {
		v = configured
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphTwistyCollapsed() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphTwistyExpanded() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▾"
}

func glyphPin() string {
	if glyphs() == glyphSetASCII {
		return "^"
	}
	return "⚲"
}

// glyphDragging marks the row being dragged.
func glyphDragging() string {
	if glyphs() == glyphSetASCII {
		return "="
	}
	return "≡"
}

// glyphDropTarget marks the row the dragged node would land on.
func glyphDropTarget() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}
