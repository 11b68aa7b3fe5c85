package shell

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"quire/internal/format"
	"quire/internal/model"
	"quire/internal/projection"
	"quire/internal/seed"
	"quire/internal/session"
	"quire/internal/store"
)

// TreeText renders the sidebar as text: the pinned list (when non-empty) and the main list.
// The active row is marked with '*'; '+' marks a collapsed node, '-' an expanded one.
func TreeText(db *store.DB, activeID string) string {
	var b strings.Builder
	if pinned := projection.Pinned(db, db.Pinned()); len(pinned) > 0 {
		b.WriteString("Pinned\n")
		writeRows(&b, pinned, activeID)
		b.WriteString("\n")
	}
	writeRows(&b, projection.Flatten(db), activeID)
	return b.String()
}

func writeRows(b *strings.Builder, rows []projection.Row, activeID string) {
	for _, r := range rows {
		mark := " "
		if r.Node.ID == activeID {
			mark = "*"
		}
		fold := " "
		if r.HasChildren {
			fold = "-"
			if r.Collapsed {
				fold = "+"
			}
		}
		fmt.Fprintf(b, "%s %s%s %s  [%s %s]\n", mark, strings.Repeat("  ", r.Depth), fold, projection.Label(r.Node), r.Node.Type, r.Node.ID)
	}
}

// OutlineText renders bookmarks as an indented list.
func OutlineText(marks []projection.Bookmark) string {
	var b strings.Builder
	for _, m := range projection.FlattenBookmarks(marks) {
		fmt.Fprintf(&b, "%s- %s  [%s]\n", strings.Repeat("  ", m.Depth), m.Title, m.ID)
	}
	return b.String()
}

func (sh *Shell) db() *store.DB { return sh.sess.Store() }

func (sh *Shell) println(a ...any) { fmt.Fprintln(sh.out, a...) }

// target returns the node named by args[i], or the active node when the argument is missing
// or ".".
func (sh *Shell) target(args []string, i int) (string, error) {
	if i < len(args) && args[i] != "." {
		id := strings.TrimSpace(args[i])
		if !sh.db().Has(id) {
			return "", store.NotFoundError{Kind: "node", ID: id}
		}
		return id, nil
	}
	if id := sh.sess.ActiveID(); id != "" {
		return id, nil
	}
	return "", session.ErrNoActive
}

// parentArg maps "-" and "root" to the root level.
func parentArg(s string) string {
	switch s {
	case "-", "root":
		return ""
	default:
		return s
	}
}

func (sh *Shell) handleHelp(args []string) error {
	if len(args) > 0 {
		h, ok := commandHelp[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		sh.println(h)
		return nil
	}
	names := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		names = append(names, name)
	}
	sort.Strings(names)
	sh.println("Commands:")
	for _, name := range names {
		sh.println("  " + strings.SplitN(commandHelp[name], "\n", 2)[0])
	}
	sh.println("\nUse 'help <command>' for details.")
	return nil
}

func (sh *Shell) handleTree(args []string) error {
	fmt.Fprint(sh.out, TreeText(sh.db(), sh.sess.ActiveID()))
	return nil
}

func (sh *Shell) handlePinned(args []string) error {
	var b strings.Builder
	writeRows(&b, projection.Pinned(sh.db(), sh.db().Pinned()), sh.sess.ActiveID())
	fmt.Fprint(sh.out, b.String())
	return nil
}

func (sh *Shell) handleOutline(args []string) error {
	root := ""
	if len(args) > 0 {
		root = args[0]
	}
	marks, err := projection.Outline(sh.db(), root)
	if err != nil {
		return err
	}
	fmt.Fprint(sh.out, OutlineText(marks))
	return nil
}

func (sh *Shell) handleShow(args []string) error {
	id, err := sh.target(args, 0)
	if err != nil {
		return err
	}
	n, _ := sh.db().FindNode(id)
	return format.WriteYAML(sh.out, n)
}

func (sh *Shell) handleSelect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: select <id|->")
	}
	if args[0] == "-" {
		return sh.sess.Select("")
	}
	return sh.sess.Select(args[0])
}

func (sh *Shell) handleKey(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: key <chord>")
	}
	res, err := sh.sess.Dispatch(session.ParseChord(args[0]))
	if err != nil {
		return err
	}
	switch {
	case res.Command == session.CmdNone:
		return fmt.Errorf("unbound chord: %s", args[0])
	case !res.Handled:
		sh.println(res.Command.String() + ": nothing to do")
	case res.CreatedID != "":
		sh.println("created " + res.CreatedID)
	case len(res.DeletedIDs) > 0:
		sh.println("deleted " + strings.Join(res.DeletedIDs, " "))
	}
	if id, ok := sh.sess.Renaming(); ok {
		sh.println(fmt.Sprintf("renaming %s: %q (use 'rename <title>')", id, sh.sess.RenameDraft()))
	}
	return nil
}

func (sh *Shell) handleAdd(args []string) error {
	var pos []string
	before := ""
	for i := 0; i < len(args); i++ {
		if args[i] == "--before" {
			if i+1 >= len(args) {
				return fmt.Errorf("--before needs a node id")
			}
			before = args[i+1]
			i++
			continue
		}
		pos = append(pos, args[i])
	}
	if len(pos) < 1 || len(pos) > 2 {
		return fmt.Errorf("usage: add <type> [parent|-] [--before <id>]")
	}
	typ, ok := model.ParseNodeType(pos[0])
	if !ok {
		return fmt.Errorf("%w: %q", store.ErrInvalidNodeType, pos[0])
	}
	parent := ""
	if len(pos) == 2 {
		parent = parentArg(pos[1])
	}
	id, err := sh.db().Create(typ, parent, before)
	if err != nil {
		return err
	}
	if err := sh.sess.Select(id); err != nil {
		return err
	}
	sh.println("created " + id)
	return nil
}

// handleRename goes through the session's inline rename so it behaves like Enter in the TUI.
// A rename already opened by 'key enter' is committed with the given title.
func (sh *Shell) handleRename(args []string) error {
	if renameID, ok := sh.sess.Renaming(); ok {
		sh.sess.SetRenameDraft(strings.Join(args, " "))
		if err := sh.sess.CommitRename(); err != nil {
			return err
		}
		sh.println("renamed " + renameID)
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: rename [id] <title...>")
	}
	title := args
	if len(args) > 1 && sh.db().Has(args[0]) {
		if err := sh.sess.Select(args[0]); err != nil {
			return err
		}
		title = args[1:]
	}
	if err := sh.sess.BeginRename(); err != nil {
		return err
	}
	id, _ := sh.sess.Renaming()
	sh.sess.SetRenameDraft(strings.Join(title, " "))
	if err := sh.sess.CommitRename(); err != nil {
		return err
	}
	sh.println("renamed " + id)
	return nil
}

func (sh *Shell) handleSet(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: set <id> <yaml>")
	}
	id, err := sh.target(args, 0)
	if err != nil {
		return err
	}
	n, _ := sh.db().FindNode(id)
	raw := []byte(strings.Join(args[1:], " "))
	c, err := model.DecodeContent(n.Type, func(v any) error { return yaml.Unmarshal(raw, v) })
	if err != nil {
		return fmt.Errorf("%s content: %w", n.Type, err)
	}
	return sh.db().SetContent(id, c)
}

func (sh *Shell) handleDelete(args []string) error {
	id, err := sh.target(args, 0)
	if err != nil {
		return err
	}
	deleted, err := sh.sess.Delete(id)
	if err != nil {
		return err
	}
	sh.println("deleted " + strings.Join(deleted, " "))
	return nil
}

func (sh *Shell) handleMove(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: move <id> <parent|->")
	}
	return sh.db().Reparent(args[0], parentArg(args[1]))
}

func (sh *Shell) handleReorder(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: reorder <id> <target>")
	}
	return sh.db().Reorder(args[0], args[1])
}

func (sh *Shell) handleDrag(args []string) error {
	id, err := sh.target(args, 0)
	if err != nil {
		return err
	}
	if err := sh.sess.StartDrag(id); err != nil {
		return err
	}
	if opened := sh.sess.CollapsedDuringDrag(); len(opened) > 0 {
		sh.println("opened " + strings.Join(opened, " "))
	}
	return nil
}

func (sh *Shell) handleOver(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: over <id>")
	}
	if sh.sess.Dragging() == "" {
		return session.ErrNoDrag
	}
	sh.sess.DragOver(args[0])
	return nil
}

func (sh *Shell) handleDrop(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: drop <target>")
	}
	res, err := sh.sess.Drop(args[0])
	if err != nil {
		return err
	}
	if !res.Changed {
		sh.println("no change (" + res.Rule.String() + ")")
		return nil
	}
	sh.println(res.Rule.String())
	return nil
}

func (sh *Shell) handleCancel(args []string) error {
	if sh.sess.Dragging() == "" {
		return session.ErrNoDrag
	}
	sh.sess.CancelDrag()
	return nil
}

func (sh *Shell) handleCollapse(args []string) error {
	id, err := sh.target(args, 0)
	if err != nil {
		return err
	}
	return sh.db().ToggleCollapse(id)
}

func (sh *Shell) handlePin(args []string) error {
	id, err := sh.target(args, 0)
	if err != nil {
		return err
	}
	return sh.db().TogglePin(id)
}

func (sh *Shell) handleEdit(args []string) error {
	if len(args) > 0 {
		if err := sh.sess.Select(args[0]); err != nil {
			return err
		}
	}
	return sh.sess.BeginEdit()
}

func (sh *Shell) handleDone(args []string) error {
	sh.sess.EndEdit()
	return nil
}

func (sh *Shell) handleSave(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save <path>")
	}
	path := args[0]
	f := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		f = "json"
	}
	var buf bytes.Buffer
	if err := format.Write(&buf, seed.Snapshot(sh.db(), sh.sess.ActiveID()), f, true); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	sh.println("saved " + path)
	return nil
}
