package tui

import (
	"strconv"

	"quire/internal/projection"
	"quire/internal/publish"
	"quire/internal/store"
)

// previewCache holds the last rendered preview. The key is the subtree digest plus width and
// style, so any edit under the selected node invalidates it.
type previewCache struct {
	key string
	out string
}

// render returns the glamour rendering of the subtree at id.
func (c *previewCache) render(db *store.DB, id string, width int) string {
	if id == "" {
		return styleMuted().Render("Nothing selected.")
	}
	v, err := projection.BuildView(db, id)
	if err != nil {
		return styleMuted().Render(err.Error())
	}
	digest, err := projection.Digest(v)
	if err != nil {
		return styleMuted().Render(err.Error())
	}
	key := digest + ":" + strconv.Itoa(width) + ":" + markdownStyle()
	if key == c.key {
		return c.out
	}
	md := publish.RenderMarkdown([]projection.View{v}, nil, publish.RenderOptions{})
	c.key = key
	c.out = renderMarkdown(md, width)
	return c.out
}
