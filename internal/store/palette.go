package store

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// PaletteKey is the fixed namespaced key the custom heading colors live under.
const PaletteKey = "quire.customColors"

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeHex lowercases a #rgb / #rrggbb color, or returns ErrInvalidPaletteHex.
func NormalizeHex(c string) (string, error) {
	c = strings.TrimSpace(c)
	if !hexColorRe.MatchString(c) {
		return "", ErrInvalidPaletteHex
	}
	return strings.ToLower(c), nil
}

// LoadPalette returns the saved custom colors (oldest first). A missing key is an empty palette.
func (s Store) LoadPalette(ctx context.Context) ([]string, error) {
	raw, ok, err := s.GetKV(ctx, PaletteKey)
	if err != nil || !ok {
		return []string{}, err
	}
	var colors []string
	if err := json.Unmarshal([]byte(raw), &colors); err != nil {
		return nil, err
	}
	if colors == nil {
		colors = []string{}
	}
	return colors, nil
}

func (s Store) SavePalette(ctx context.Context, colors []string) error {
	clean := make([]string, 0, len(colors))
	seen := map[string]bool{}
	for _, c := range colors {
		n, err := NormalizeHex(c)
		if err != nil {
			return err
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		clean = append(clean, n)
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return err
	}
	return s.PutKV(ctx, PaletteKey, string(b))
}

// AddPaletteColor appends c if it is not already present and returns the resulting palette.
func (s Store) AddPaletteColor(ctx context.Context, c string) ([]string, error) {
	n, err := NormalizeHex(c)
	if err != nil {
		return nil, err
	}
	colors, err := s.LoadPalette(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range colors {
		if existing == n {
			return colors, nil
		}
	}
	colors = append(colors, n)
	return colors, s.SavePalette(ctx, colors)
}

func (s Store) RemovePaletteColor(ctx context.Context, c string) ([]string, error) {
	n, err := NormalizeHex(c)
	if err != nil {
		return nil, err
	}
	colors, err := s.LoadPalette(ctx)
	if err != nil {
		return nil, err
	}
	out := colors[:0]
	for _, existing := range colors {
		if existing != n {
			out = append(out, existing)
		}
	}
	return out, s.SavePalette(ctx, out)
}
