package store

import (
	"fmt"
	"regexp"
	"strings"

	"quire/internal/model"
)

var (
	fontRe  = regexp.MustCompile(`^[A-Za-z0-9 ,"'-]{1,120}$`)
	widthRe = regexp.MustCompile(`^(?:auto|[0-9]{1,5}(?:\.[0-9]{1,3})?(?:px|%|em|rem)?)$`)
)

// validateStyle checks the free-form style fields that end up in printed CSS.
func validateStyle(s *model.HeadingStyle) error {
	if s == nil {
		return nil
	}
	if c := strings.TrimSpace(s.Color); c != "" {
		if _, err := NormalizeHex(c); err != nil {
			return fmt.Errorf("heading color %q: %w", c, err)
		}
	}
	if f := strings.TrimSpace(s.Font); f != "" && !fontRe.MatchString(f) {
		return fmt.Errorf("%w: %q", ErrInvalidFont, f)
	}
	return nil
}

// validateContent checks the content fields that end up in printed CSS.
func validateContent(c model.Content) error {
	switch c := c.(type) {
	case model.Icon:
		if hex := strings.TrimSpace(c.Color); hex != "" {
			if _, err := NormalizeHex(hex); err != nil {
				return fmt.Errorf("icon color %q: %w", hex, err)
			}
		}
	case model.Image:
		if w := strings.TrimSpace(c.Width); w != "" && !widthRe.MatchString(w) {
			return fmt.Errorf("%w: %q", ErrInvalidWidth, w)
		}
	}
	return nil
}
