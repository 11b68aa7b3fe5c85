package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"quire/internal/model"
	"quire/internal/projection"
)

// rowItem is one node row of the sidebar. The same node can appear twice: once in the pinned
// section and once in the document.
type rowItem struct {
	row    projection.Row
	pinned bool
}

func (it rowItem) FilterValue() string { return projection.Label(it.row.Node) }
func (it rowItem) id() string          { return it.row.Node.ID }

// sectionItem is a non-selectable section title ("Pinned", "Document").
type sectionItem struct{ title string }

func (it sectionItem) FilterValue() string { return "" }

// sidebarDelegate draws rows with a full-width highlight for the focused row. During a drag
// the focused row is the drop target and the dragged node is marked wherever it appears.
type sidebarDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	drop     lipgloss.Style
	section  lipgloss.Style
	heading  lipgloss.Style
	tag      lipgloss.Style

	draggingID string
}

func newSidebarDelegate() sidebarDelegate {
	return sidebarDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		drop: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorDropBg).
			Bold(true),
		section: styleMuted().Bold(true),
		heading: lipgloss.NewStyle().Foreground(colorHeading).Bold(true),
		tag:     styleMuted(),
	}
}

func (d sidebarDelegate) Height() int  { return 1 }
func (d sidebarDelegate) Spacing() int { return 0 }
func (d sidebarDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d sidebarDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	width := m.Width()
	if width < 4 {
		fmt.Fprint(w, "")
		return
	}

	switch it := item.(type) {
	case sectionItem:
		fmt.Fprint(w, d.renderRow(width, d.section, it.title))
	case rowItem:
		focused := index == m.Index()
		fmt.Fprint(w, d.renderNodeRow(width, it, focused))
	}
}

func (d sidebarDelegate) renderNodeRow(width int, it rowItem, focused bool) string {
	n := it.row.Node
	twisty := " "
	if it.row.HasChildren {
		twisty = glyphTwistyExpanded()
		if it.row.Collapsed {
			twisty = glyphTwistyCollapsed()
		}
	}
	mark := " "
	switch {
	case d.draggingID != "" && n.ID == d.draggingID:
		mark = glyphDragging()
	case d.draggingID != "" && focused:
		mark = glyphDropTarget()
	}
	pin := ""
	if n.Pinned && !it.pinned {
		pin = glyphPin() + " "
	}

	lead := mark + " " + strings.Repeat("  ", it.row.Depth) + twisty + " " + pin
	label := projection.Label(n)
	tag := " " + string(n.Type)

	if focused {
		style := d.selected
		if d.draggingID != "" {
			style = d.drop
		}
		return d.renderRow(width, style, lead+label+tag)
	}

	labelStyle := d.normal
	if n.Type == model.NodeHeading || n.Type == model.NodeSubheading {
		labelStyle = d.heading
	}
	line := lead + labelStyle.Render(label) + d.tag.Render(tag)
	return d.renderRow(width, d.normal, line)
}

// renderRow pads or cuts line to exactly width columns.
func (d sidebarDelegate) renderRow(width int, style lipgloss.Style, line string) string {
	plainW := xansi.StringWidth(line)
	if plainW < width {
		line += strings.Repeat(" ", width-plainW)
	} else if plainW > width {
		line = xansi.Cut(line, 0, width)
	}
	return style.Render(line)
}

func newSidebarList(d sidebarDelegate) list.Model {
	l := list.New([]list.Item{}, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// sidebarItems lays out the pinned section (when any node is pinned) above the document rows.
func sidebarItems(pinned, main []projection.Row) []list.Item {
	var items []list.Item
	if len(pinned) > 0 {
		items = append(items, sectionItem{title: "Pinned"})
		for _, r := range pinned {
			items = append(items, rowItem{row: r, pinned: true})
		}
		items = append(items, sectionItem{title: "Document"})
	}
	for _, r := range main {
		items = append(items, rowItem{row: r})
	}
	return items
}

// indexOfNode finds id in the document section first, then in the pinned section.
func indexOfNode(items []list.Item, id string) int {
	fallback := -1
	for i, item := range items {
		it, ok := item.(rowItem)
		if !ok || it.id() != id {
			continue
		}
		if !it.pinned {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}
