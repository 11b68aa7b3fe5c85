package publish

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"quire/internal/model"
	"quire/internal/projection"
)

var (
	ugcOnce   sync.Once
	ugcPolicy *bluemonday.Policy
)

// sanitizeRichText keeps user formatting (emphasis, lists, links) and drops scripts, handlers
// and anything else a printed page has no use for.
func sanitizeRichText(s string) string {
	ugcOnce.Do(func() { ugcPolicy = bluemonday.UGCPolicy() })
	return ugcPolicy.Sanitize(s)
}

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.New("base").Funcs(template.FuncMap{
	"anchor": anchor,
}).ParseFS(templatesFS, "templates/*.html"))

type pageData struct {
	Title     string
	Bookmarks []projection.Bookmark
	Blocks    []htmlBlock
	// LiveReload is the websocket path the page listens on for changes; empty for exports.
	LiveReload string
}

// htmlBlock is one node in document order. Kind selects the template; Data holds the
// kind-specific fields.
type htmlBlock struct {
	Kind   string
	Anchor string
	Data   any
}

type headingData struct {
	Sub   bool
	Title string
	Style *headingCSS
}

type headingCSS struct {
	Color     string
	Bold      bool
	Italic    bool
	Underline bool
	Fonts     []fontFamily
}

type fontFamily struct {
	Name    string
	Generic bool
}

type tableData struct {
	Head []string
	Rows [][]string
}

type imageData struct {
	Align   string
	URL     template.URL
	Alt     string
	Width   string
	Caption string
}

type iconData struct {
	Layout string
	Color  string
	Icon   string
	Text   string
}

type bannerData struct {
	Kind string
	Text string
}

// RenderHTML renders a standalone printable page. Headings become <h1> and subheadings <h2>,
// which is what the PDF printer turns into document bookmarks.
func RenderHTML(views []projection.View, marks []projection.Bookmark, opt RenderOptions) (string, error) {
	title := strings.TrimSpace(opt.Title)
	if title == "" && len(views) > 0 {
		title = views[0].Title()
	}
	if title == "" {
		title = "Untitled"
	}

	data := pageData{Title: title, LiveReload: opt.LiveReload}
	if opt.IncludeBookmarks && len(marks) > 0 {
		data.Bookmarks = marks
	}
	forEachView(views, func(v projection.View) {
		if b, ok := htmlBlockFor(v); ok {
			data.Blocks = append(data.Blocks, b)
		}
	})

	var b strings.Builder
	if err := pageTmpl.ExecuteTemplate(&b, "page", data); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return b.String(), nil
}

func htmlBlockFor(v projection.View) (htmlBlock, bool) {
	b := htmlBlock{Anchor: anchor(v.ID)}
	switch c := v.Content.(type) {
	case model.Title:
		b.Kind = "heading"
		b.Data = headingData{Sub: v.Type == model.NodeSubheading, Title: v.Title(), Style: headingStyle(v.Style)}
	case model.RichText:
		b.Kind = "text"
		b.Data = template.HTML(sanitizeRichText(string(c)))
	case model.Table:
		b.Kind = "table"
		t := tableData{Rows: c.Rows}
		if c.HasHeader && len(c.Rows) > 0 {
			t.Head, t.Rows = c.Rows[0], c.Rows[1:]
		}
		b.Data = t
	case model.Image:
		b.Kind = "image"
		img := imageData{Align: alignment(c.Alignment), Caption: strings.TrimSpace(c.Caption)}
		if u, ok := safeURL(c.URL); ok {
			img.URL = template.URL(u)
			img.Alt = c.Alt
			if w := strings.TrimSpace(c.Width); w != "auto" {
				img.Width = w
			}
		}
		b.Data = img
	case model.Icon:
		b.Kind = "icon"
		layout := "horizontal"
		if strings.EqualFold(strings.TrimSpace(c.Layout), "vertical") {
			layout = "vertical"
		}
		b.Data = iconData{Layout: layout, Color: strings.TrimSpace(c.Color), Icon: c.Icon, Text: c.Text}
	case model.Banner:
		b.Kind = "banner"
		b.Data = bannerData{Kind: bannerKind(c.Kind), Text: c.Text}
	default:
		return b, false
	}
	return b, true
}

// anchor is the fragment id of a node's element.
func anchor(id string) string { return "q-" + id }

var genericFonts = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true,
}

func headingStyle(s *model.HeadingStyle) *headingCSS {
	if s == nil {
		return nil
	}
	out := &headingCSS{
		Color:     strings.TrimSpace(s.Color),
		Bold:      s.Bold,
		Italic:    s.Italic,
		Underline: s.Underline,
	}
	for _, f := range strings.Split(s.Font, ",") {
		name := strings.Trim(strings.TrimSpace(f), `"'`)
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if genericFonts[lower] {
			out.Fonts = append(out.Fonts, fontFamily{Name: lower, Generic: true})
			continue
		}
		out.Fonts = append(out.Fonts, fontFamily{Name: name})
	}
	return out
}

func alignment(a string) string {
	switch strings.ToLower(strings.TrimSpace(a)) {
	case "left":
		return "left"
	case "right":
		return "right"
	default:
		return "center"
	}
}

func bannerKind(k model.BannerKind) string {
	switch k {
	case model.BannerWarning, model.BannerSuccess, model.BannerDanger:
		return string(k)
	default:
		return string(model.BannerInfo)
	}
}

// safeURL accepts http(s) and data:image URLs.
func safeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(strings.ToLower(raw), "data:image/") {
		return raw, true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String(), true
	default:
		return "", false
	}
}
