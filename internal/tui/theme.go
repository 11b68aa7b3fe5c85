package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette helpers. Colors are adaptive so the sidebar stays readable on light and dark
// backgrounds; faint styling is only applied on dark ones.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      = ac("240", "243")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorSurfaceFg  = ac("235", "252")
	colorInputBg    = ac("254", "234")
	colorAccent     = ac("27", "62")
	colorError      = ac("160", "203")
	// Heading rows use the default heading color of the document.
	colorHeading = ac("#4A3B2F", "#d8c3a5")
	colorDropBg  = ac("#dbeafe", "#1e3a5f")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyColorProfilePreference sets Lip Gloss's color profile. NO_COLOR always wins, then the
// configured profile, then termenv's detection nudged by TERM/COLORTERM.
func applyColorProfilePreference(configured string) {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	switch strings.ToLower(strings.TrimSpace(configured)) {
	case "ascii":
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	case "ansi":
		lipgloss.SetColorProfile(termenv.ANSI)
		return
	case "ansi256":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return
	case "truecolor":
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) QUIRE_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg", the last segment is the background)
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("QUIRE_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if dark, ok := colorFGBGIsDark(); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}

func colorFGBGIsDark() (dark bool, ok bool) {
	v := strings.TrimSpace(os.Getenv("COLORFGBG"))
	if v == "" {
		return false, false
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return false, false
	}
	// Common xterm palette: 0-6 dark colors, 7-15 light colors.
	return bg < 7, true
}
