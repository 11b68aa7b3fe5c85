package tui

import "testing"

func TestGlyphs_FromEnvAndConfig(t *testing.T) {
	t.Setenv("QUIRE_TUI_GLYPHS", "")
	setGlyphs(glyphSetUnicode)
	applyGlyphPreference("")
	if got := glyphs(); got != glyphSetUnicode {
		t.Fatalf("expected unicode glyphs by default; got %v", got)
	}

	applyGlyphPreference("ascii")
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected ascii glyphs from config; got %v", got)
	}

	// The environment wins over the config file.
	t.Setenv("QUIRE_TUI_GLYPHS", "unicode")
	applyGlyphPreference("ascii")
	if got := glyphs(); got != glyphSetUnicode {
		t.Fatalf("expected unicode glyphs from env; got %v", got)
	}

	setGlyphs(glyphSetASCII)
	t.Setenv("QUIRE_TUI_GLYPHS", "bogus")
	applyGlyphPreference("")
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected unknown to be ignored; got %v", got)
	}
	if glyphTwistyCollapsed() != ">" || glyphDropTarget() != "->" {
		t.Fatalf("expected ascii twisty and drop marker")
	}
	setGlyphs(glyphSetUnicode)
}
