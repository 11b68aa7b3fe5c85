package model

// Content is the typed payload of a node. The set of implementations is closed:
// Title, RichText, Table, Image, Icon and Banner.
type Content interface {
	isContent()
}

// Title is the payload of heading and subheading nodes.
type Title string

// RichText is an opaque formatted-string blob. It is stored and returned verbatim.
type RichText string

type Table struct {
	Rows      [][]string `json:"rows" yaml:"rows"`
	HasHeader bool       `json:"hasHeader" yaml:"hasHeader"`
}

type Image struct {
	URL       string `json:"url" yaml:"url"`
	Alt       string `json:"alt" yaml:"alt"`
	Caption   string `json:"caption" yaml:"caption"`
	Width     string `json:"width" yaml:"width"`
	Alignment string `json:"alignment" yaml:"alignment"`
}

type Icon struct {
	Icon   string `json:"icon" yaml:"icon"`
	Text   string `json:"text" yaml:"text"`
	Size   string `json:"size" yaml:"size"`
	Color  string `json:"color" yaml:"color"`
	Layout string `json:"layout" yaml:"layout"`
}

type BannerKind string

const (
	BannerInfo    BannerKind = "info"
	BannerWarning BannerKind = "warning"
	BannerSuccess BannerKind = "success"
	BannerDanger  BannerKind = "danger"
)

type Banner struct {
	Text        string     `json:"text" yaml:"text"`
	Kind        BannerKind `json:"type" yaml:"type"`
	ShowIcon    bool       `json:"showIcon" yaml:"showIcon"`
	Dismissible bool       `json:"dismissible" yaml:"dismissible"`
}

func (Title) isContent()    {}
func (RichText) isContent() {}
func (Table) isContent()    {}
func (Image) isContent()    {}
func (Icon) isContent()     {}
func (Banner) isContent()   {}

// DefaultContent returns the initial payload for a freshly created node.
func DefaultContent(t NodeType) Content {
	switch t {
	case NodeHeading:
		return Title("New Heading")
	case NodeSubheading:
		return Title("New Subheading")
	case NodeText:
		return RichText("<p>New text section. Edit me!</p>")
	case NodeTable:
		return Table{
			Rows: [][]string{
				{"Header 1", "Header 2", "Header 3"},
				{"Row 1 Col 1", "Row 1 Col 2", "Row 1 Col 3"},
				{"Row 2 Col 1", "Row 2 Col 2", "Row 2 Col 3"},
			},
			HasHeader: true,
		}
	case NodeImage:
		return Image{Width: "auto", Alignment: "center"}
	case NodeIcon:
		return Icon{
			Icon:   "Star",
			Text:   "Your text here",
			Size:   "medium",
			Color:  "#C4A484",
			Layout: "horizontal",
		}
	case NodeBanner:
		return Banner{
			Text:     "This is an important announcement!",
			Kind:     BannerInfo,
			ShowIcon: true,
		}
	default:
		return nil
	}
}

// ContentFits reports whether c is a valid payload for a node of type t.
func ContentFits(t NodeType, c Content) bool {
	switch c.(type) {
	case Title:
		return t == NodeHeading || t == NodeSubheading
	case RichText:
		return t == NodeText
	case Table:
		return t == NodeTable
	case Image:
		return t == NodeImage
	case Icon:
		return t == NodeIcon
	case Banner:
		return t == NodeBanner
	default:
		return false
	}
}

// ContentKind names the variant of c, for error messages.
func ContentKind(c Content) string {
	switch c.(type) {
	case Title:
		return "title"
	case RichText:
		return "rich-text"
	case Table:
		return "table"
	case Image:
		return "image"
	case Icon:
		return "icon"
	case Banner:
		return "banner"
	case nil:
		return "nil"
	default:
		return "unknown"
	}
}

func CloneContent(c Content) Content {
	switch v := c.(type) {
	case Table:
		rows := make([][]string, len(v.Rows))
		for i, r := range v.Rows {
			rows[i] = append([]string(nil), r...)
		}
		return Table{Rows: rows, HasHeader: v.HasHeader}
	default:
		// Every other variant is a value type with no shared backing memory.
		return c
	}
}

// PlainText returns the string payload for title/rich-text nodes and "" otherwise.
func PlainText(c Content) string {
	switch v := c.(type) {
	case Title:
		return string(v)
	case RichText:
		return string(v)
	default:
		return ""
	}
}
