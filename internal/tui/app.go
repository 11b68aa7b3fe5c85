package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"quire/internal/model"
	"quire/internal/mutate"
	"quire/internal/projection"
	"quire/internal/session"
	"quire/internal/store"
)

type mode int

const (
	modeNormal mode = iota
	modeRename
	modeEdit
	modeDrag
)

// sidebarTop is the screen row of the first sidebar item (header line plus a blank line).
const sidebarTop = 2

type appModel struct {
	sess *session.Session
	log  zerolog.Logger

	width  int
	height int

	mode    mode
	sidebar list.Model
	input   textinput.Model

	showPreview bool
	preview     *previewCache

	minibuffer    string
	minibufferErr bool

	// pressID is the row under a left-button press; moving with the button held starts a drag.
	pressID string
}

func newAppModel(sess *session.Session, opt Options) appModel {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 0

	m := appModel{
		sess:        sess,
		log:         opt.Logger,
		sidebar:     newSidebarList(newSidebarDelegate()),
		input:       in,
		showPreview: !opt.HidePreview,
		preview:     &previewCache{},
	}
	m.refresh()
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) db() *store.DB { return m.sess.Store() }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.sess.CancelDrag()
			return m, tea.Quit
		}
		switch m.mode {
		case modeRename, modeEdit:
			return m.updateInput(msg)
		case modeDrag:
			return m.updateDrag(msg)
		default:
			return m.updateNormal(msg)
		}

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m appModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.clearMessage()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		return m, nil
	case "v":
		m.showPreview = !m.showPreview
		m.resize()
		return m, nil
	case "p":
		if id := m.sess.ActiveID(); id != "" {
			m.report(m.db().TogglePin(id))
			m.refresh()
		}
		return m, nil
	case "d":
		return m.startDrag(m.sess.ActiveID())
	case "e":
		return m.startEdit()
	}

	res, err := m.sess.Dispatch(keyEvent(msg))
	if err != nil {
		m.report(err)
		m.refresh()
		return m, nil
	}
	if res.Handled && res.Command == session.CmdRename {
		m.mode = modeRename
		m.input.SetValue(m.sess.RenameDraft())
		m.input.CursorEnd()
		m.refresh()
		cmd := m.input.Focus()
		return m, cmd
	}
	if len(res.DeletedIDs) > 0 {
		m.say(fmt.Sprintf("Deleted %d node(s).", len(res.DeletedIDs)))
	}
	m.refresh()
	return m, nil
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		var err error
		if m.mode == modeRename {
			m.sess.SetRenameDraft(m.input.Value())
			err = m.sess.CommitRename()
		} else {
			err = m.commitEdit(m.input.Value())
		}
		m.closeInput()
		m.report(err)
		m.refresh()
		return m, nil
	case "esc":
		if m.mode == modeRename {
			m.sess.CancelRename()
		} else {
			m.sess.EndEdit()
		}
		m.closeInput()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) closeInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.SetValue("")
}

// startEdit opens the single-line editor on the active leaf. Text is edited as its raw
// markup; structured payloads as JSON.
func (m appModel) startEdit() (tea.Model, tea.Cmd) {
	if err := m.sess.BeginEdit(); err != nil {
		m.report(err)
		return m, nil
	}
	n, _ := m.sess.Active()
	v, err := editableContent(n.Content)
	if err != nil {
		m.sess.EndEdit()
		m.report(err)
		return m, nil
	}
	m.mode = modeEdit
	m.input.SetValue(v)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func editableContent(c model.Content) (string, error) {
	switch c := c.(type) {
	case model.RichText:
		return string(c), nil
	case model.Title:
		return string(c), nil
	default:
		b, err := json.Marshal(c)
		return string(b), err
	}
}

func (m appModel) commitEdit(v string) error {
	id := m.sess.EditingLeafID()
	defer m.sess.EndEdit()
	n, ok := m.db().FindNode(id)
	if !ok {
		return store.NotFoundError{Kind: "node", ID: id}
	}
	var c model.Content
	switch n.Type {
	case model.NodeText:
		c = model.RichText(v)
	default:
		var err error
		c, err = model.DecodeContent(n.Type, func(dst any) error { return json.Unmarshal([]byte(v), dst) })
		if err != nil {
			return fmt.Errorf("%s content: %w", n.Type, err)
		}
	}
	return m.db().SetContent(id, c)
}

func (m appModel) startDrag(id string) (tea.Model, tea.Cmd) {
	if id == "" {
		m.report(session.ErrNoActive)
		return m, nil
	}
	if err := m.sess.StartDrag(id); err != nil {
		m.report(err)
		return m, nil
	}
	m.mode = modeDrag
	m.refresh()
	m.say("Dragging " + m.label(id) + ".")
	return m, nil
}

func (m appModel) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.moveDropTarget(-1)
	case "down", "j":
		m.moveDropTarget(1)
	case "enter":
		m.finishDrop(m.dropTargetID())
	case "esc", "q":
		m.sess.CancelDrag()
		m.mode = modeNormal
		m.say("Drag cancelled.")
		m.refresh()
	}
	return m, nil
}

// moveDropTarget steps the drop cursor over node rows and reveals a collapsed container
// under it.
func (m *appModel) moveDropTarget(delta int) {
	items := m.sidebar.Items()
	i := m.sidebar.Index()
	for {
		i += delta
		if i < 0 || i >= len(items) {
			return
		}
		if _, ok := items[i].(rowItem); ok {
			break
		}
	}
	m.hover(items[i].(rowItem).id())
}

func (m *appModel) hover(id string) {
	m.sess.DragOver(id)
	m.refreshItems()
	if i := indexOfNode(m.sidebar.Items(), id); i >= 0 {
		m.sidebar.Select(i)
	}
}

func (m appModel) dropTargetID() string {
	if it, ok := m.sidebar.SelectedItem().(rowItem); ok {
		return it.id()
	}
	return ""
}

func (m *appModel) finishDrop(targetID string) {
	dragged := m.sess.Dragging()
	res, err := m.sess.Drop(targetID)
	m.mode = modeNormal
	if err != nil {
		m.report(err)
	} else if res.Changed {
		m.say(fmt.Sprintf("Moved %s (%s).", m.label(dragged), res.Rule))
	} else {
		m.say("Nothing to move.")
	}
	m.refresh()
}

// updateMouse selects rows on click and drags with the left button held. The drop target is
// the row the collision strategy for the dragged type picks under the pointer.
func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if m.mode != modeNormal {
			return m, nil
		}
		id := m.rowAt(msg.X, msg.Y)
		m.pressID = id
		if id != "" {
			m.report(m.sess.Select(id))
			m.refresh()
		}
	case tea.MouseActionMotion:
		if m.mode == modeNormal && m.pressID != "" {
			nm, _ := m.startDrag(m.pressID)
			m = nm.(appModel)
		}
		if m.mode == modeDrag {
			if id := m.collide(msg.Y); id != "" {
				m.hover(id)
			}
		}
	case tea.MouseActionRelease:
		m.pressID = ""
		if m.mode == modeDrag {
			m.finishDrop(m.dropTargetID())
		}
	}
	return m, nil
}

// rowAt returns the node id drawn at screen position (x, y), or "".
func (m appModel) rowAt(x, y int) string {
	if x >= m.sidebar.Width() {
		return ""
	}
	i := m.sidebar.Paginator.Page*m.sidebar.Paginator.PerPage + (y - sidebarTop)
	items := m.sidebar.Items()
	if y < sidebarTop || i < 0 || i >= len(items) {
		return ""
	}
	if it, ok := items[i].(rowItem); ok {
		return it.id()
	}
	return ""
}

// collide runs the dragged type's collision strategy against the visible rows, each a
// one-line rectangle, with the pointer row as the active rectangle.
func (m appModel) collide(y int) string {
	dragged, ok := m.db().FindNode(m.sess.Dragging())
	if !ok {
		return ""
	}
	w := float64(m.sidebar.Width())
	start := m.sidebar.Paginator.Page * m.sidebar.Paginator.PerPage
	items := m.sidebar.Items()
	var targets []mutate.Droppable
	for row := 0; row < m.sidebar.Paginator.PerPage && start+row < len(items); row++ {
		it, ok := items[start+row].(rowItem)
		if !ok || it.id() == dragged.ID {
			continue
		}
		targets = append(targets, mutate.Droppable{
			ID:   it.id(),
			Rect: mutate.Rect{X: 0, Y: float64(sidebarTop + row), W: w, H: 1},
		})
	}
	active := mutate.Rect{X: 0, Y: float64(y), W: w, H: 1}
	id, _ := mutate.CollisionStrategyFor(dragged.Type)(active, targets)
	return id
}

func (m appModel) label(id string) string {
	n, ok := m.db().FindNode(id)
	if !ok {
		return id
	}
	return "“" + projection.Label(n) + "”"
}

func (m *appModel) say(s string) {
	m.minibuffer = s
	m.minibufferErr = false
}

func (m *appModel) report(err error) {
	if err == nil {
		return
	}
	m.log.Debug().Err(err).Msg("tui action rejected")
	m.minibuffer = err.Error()
	m.minibufferErr = true
}

func (m *appModel) clearMessage() {
	m.minibuffer = ""
	m.minibufferErr = false
}

// refresh rebuilds the sidebar and moves its cursor to the active node, or to the nearest
// visible ancestor when the active node sits inside a collapsed subtree. During a drag the
// cursor is the drop target and stays where it is.
func (m *appModel) refresh() {
	target := m.dropTargetID()
	m.refreshItems()
	if m.mode == modeDrag {
		if i := indexOfNode(m.sidebar.Items(), target); i >= 0 {
			m.sidebar.Select(i)
		}
		return
	}
	active := m.sess.ActiveID()
	if active == "" {
		return
	}
	items := m.sidebar.Items()
	candidates := append([]string{active}, m.db().Ancestors(active)...)
	for _, id := range candidates {
		if i := indexOfNode(items, id); i >= 0 {
			m.sidebar.Select(i)
			return
		}
	}
}

func (m *appModel) refreshItems() {
	d := newSidebarDelegate()
	d.draggingID = m.sess.Dragging()
	m.sidebar.SetDelegate(d)

	db := m.db()
	m.sidebar.SetItems(sidebarItems(projection.Pinned(db, db.Pinned()), projection.Flatten(db)))
}

func (m appModel) sidebarWidth() int {
	if !m.showPreview {
		return max(m.width, 20)
	}
	return max(m.width*2/5, 24)
}

func (m *appModel) resize() {
	h := max(m.height-sidebarTop-3, 4)
	m.sidebar.SetSize(m.sidebarWidth(), h)
	m.input.Width = max(m.width-12, 10)
}

func (m appModel) View() string {
	bodyH := max(m.height-sidebarTop-3, 4)

	header := lipgloss.NewStyle().Bold(true).Render("Quire")
	switch {
	case m.mode == modeDrag:
		header += styleMuted().Render("  dragging " + m.label(m.sess.Dragging()))
	case m.sess.ActiveID() != "":
		header += styleMuted().Render("  " + m.label(m.sess.ActiveID()))
	}

	left := normalizePane(m.sidebar.View(), m.sidebarWidth(), bodyH)
	body := left
	if m.showPreview {
		rightW := max(m.width-m.sidebarWidth()-2, 10)
		right := m.preview.render(m.db(), m.sess.ActiveID(), rightW)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", normalizePane(right, rightW, bodyH))
	}

	var line string
	switch m.mode {
	case modeRename:
		line = renderInputLine(m.width, "Rename:", m.input.View())
	case modeEdit:
		line = renderInputLine(m.width, "Edit:", m.input.View())
	default:
		line = m.minibuffer
		if m.minibufferErr {
			line = lipgloss.NewStyle().Foreground(colorError).Render(line)
		}
	}

	help := helpNormal
	switch m.mode {
	case modeDrag:
		help = helpDrag
	case modeRename, modeEdit:
		help = helpInput
	}
	rule := styleMuted().Render(strings.Repeat(glyphHRule(), max(m.width, 1)))

	return strings.Join([]string{header, "", body, rule, line, styleMuted().Render(help)}, "\n")
}
