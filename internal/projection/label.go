package projection

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"quire/internal/model"
)

var (
	stripOnce   sync.Once
	stripPolicy *bluemonday.Policy
)

// StripMarkup removes every tag from a rich-text payload and collapses whitespace.
func StripMarkup(s string) string {
	stripOnce.Do(func() { stripPolicy = bluemonday.StrictPolicy() })
	// Block boundaries would otherwise glue words together once tags are gone.
	s = strings.NewReplacer("</p>", "</p> ", "<br>", " ", "<br/>", " ", "<br />", " ", "</li>", "</li> ").Replace(s)
	out := html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.Join(strings.Fields(out), " ")
}

// Label is the one-line sidebar label of a node: the plain title/text for string payloads, the
// type name for structured ones, and "New <type>" when that comes out empty.
func Label(n model.Node) string {
	var s string
	switch c := n.Content.(type) {
	case model.Title:
		s = strings.TrimSpace(string(c))
	case model.RichText:
		s = StripMarkup(string(c))
	case model.Table:
		s = "Table"
	case model.Image:
		s = "Image"
	case model.Icon:
		s = "Icon"
	case model.Banner:
		s = "Banner"
	}
	if s == "" {
		return "New " + string(n.Type)
	}
	return s
}
