package publish

import (
	"bytes"
	"regexp"
	"strings"

	"quire/internal/model"
	"quire/internal/projection"
)

type RenderOptions struct {
	// IncludeBookmarks adds a contents section built from the outline.
	IncludeBookmarks bool
	// Title overrides the document title; it defaults to the first root's title.
	Title string
	// LiveReload, when set, is the websocket path an HTML page listens on to reload itself.
	LiveReload string
}

// RenderMarkdown renders views (one per root) and, optionally, a contents list built from marks.
func RenderMarkdown(views []projection.View, marks []projection.Bookmark, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	if opt.IncludeBookmarks && len(marks) > 0 {
		writeLn("## Contents")
		writeLn("")
		for _, b := range projection.FlattenBookmarks(marks) {
			writeLn(strings.Repeat("  ", b.Depth) + "- " + escapeMarkdownInline(b.Title))
		}
		writeLn("")
	}

	forEachView(views, func(v projection.View) {
		block := renderMarkdownBlock(v)
		if block == "" {
			return
		}
		writeLn(block)
		writeLn("")
	})
	return strings.TrimRight(buf.String(), "\n") + "\n"
}

// forEachView visits views depth-first in document order.
func forEachView(views []projection.View, fn func(projection.View)) {
	stack := make([]projection.View, 0, len(views))
	for i := len(views) - 1; i >= 0; i-- {
		stack = append(stack, views[i])
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(v)
		for i := len(v.Children) - 1; i >= 0; i-- {
			stack = append(stack, v.Children[i])
		}
	}
}

func renderMarkdownBlock(v projection.View) string {
	switch c := v.Content.(type) {
	case model.Title:
		prefix := "# "
		if v.Type == model.NodeSubheading {
			prefix = "## "
		}
		return prefix + escapeMarkdownInline(v.Title())
	case model.RichText:
		return richTextToMarkdown(string(c))
	case model.Table:
		return tableToMarkdown(c)
	case model.Image:
		out := "_Image_"
		if u, ok := safeURL(c.URL); ok {
			out = "![" + escapeMarkdownInline(c.Alt) + "](" + u + ")"
		}
		if caption := strings.TrimSpace(c.Caption); caption != "" {
			out += "\n\n_" + escapeMarkdownInline(caption) + "_"
		}
		return out
	case model.Icon:
		return "**[" + escapeMarkdownInline(c.Icon) + "]** " + escapeMarkdownInline(c.Text)
	case model.Banner:
		kind := string(c.Kind)
		if kind == "" {
			kind = string(model.BannerInfo)
		}
		return "> **" + strings.ToUpper(kind[:1]) + kind[1:] + ":** " + escapeMarkdownInline(c.Text)
	default:
		return ""
	}
}

var paragraphBreakRe = regexp.MustCompile(`(?i)</p>|<br\s*/?>|</li>|</h[1-6]>|</div>`)

// richTextToMarkdown keeps paragraph breaks and drops every other bit of markup.
func richTextToMarkdown(s string) string {
	var paras []string
	for _, part := range paragraphBreakRe.Split(s, -1) {
		if p := projection.StripMarkup(part); p != "" {
			paras = append(paras, p)
		}
	}
	return strings.Join(paras, "\n\n")
}

func tableToMarkdown(t model.Table) string {
	width := 0
	for _, r := range t.Rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width == 0 {
		return ""
	}
	row := func(cells []string) string {
		out := make([]string, width)
		for i := range out {
			if i < len(cells) {
				out[i] = strings.ReplaceAll(strings.TrimSpace(cells[i]), "|", `\|`)
			}
		}
		return "| " + strings.Join(out, " | ") + " |"
	}
	sep := "|" + strings.Repeat(" --- |", width)

	var lines []string
	body := t.Rows
	if t.HasHeader {
		lines = append(lines, row(t.Rows[0]), sep)
		body = t.Rows[1:]
	} else {
		lines = append(lines, row(nil), sep)
	}
	for _, r := range body {
		lines = append(lines, row(r))
	}
	return strings.Join(lines, "\n")
}

var markdownInlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"`", "\\`",
)

func escapeMarkdownInline(s string) string {
	return markdownInlineEscaper.Replace(strings.TrimSpace(s))
}
