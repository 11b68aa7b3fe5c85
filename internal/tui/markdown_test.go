package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestMarkdownStyle_RespectsTUITheme(t *testing.T) {
	t.Setenv("QUIRE_TUI_MD_STYLE", "")
	t.Setenv("COLORFGBG", "")

	t.Setenv("QUIRE_TUI_THEME", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}

	t.Setenv("QUIRE_TUI_THEME", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyle_MDStyleOverridesTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("QUIRE_TUI_THEME", "light")
	t.Setenv("QUIRE_TUI_MD_STYLE", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyle_COLORFGBG(t *testing.T) {
	t.Setenv("QUIRE_TUI_MD_STYLE", "")
	t.Setenv("QUIRE_TUI_THEME", "")
	t.Setenv("COLORFGBG", "0;15")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light for bg 15; got %q", got)
	}
	t.Setenv("COLORFGBG", "15;0")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark for bg 0; got %q", got)
	}
}

func TestMarkdownStyleConfig_HeadingColor(t *testing.T) {
	cfg := markdownStyleConfig("light")
	if cfg.H1.Color == nil || *cfg.H1.Color != colorHeading.Light {
		t.Fatalf("expected light heading color %q", colorHeading.Light)
	}
	cfg = markdownStyleConfig("dark")
	if cfg.H2.Color == nil || *cfg.H2.Color != colorHeading.Dark {
		t.Fatalf("expected dark heading color %q", colorHeading.Dark)
	}
}

func TestRenderMarkdown_KeepsText(t *testing.T) {
	t.Setenv("QUIRE_TUI_MD_STYLE", "dark")
	out := xansi.Strip(renderMarkdown("# Guide\n\nInstall it.", 40))
	if !strings.Contains(out, "Guide") || !strings.Contains(out, "Install it.") {
		t.Fatalf("expected rendered text, got %q", out)
	}
	if renderMarkdown("   ", 40) != "" {
		t.Fatalf("expected empty output for blank markdown")
	}
}
