package cli

import (
	"quire/internal/projection"
	"quire/internal/shell"
	"quire/internal/store"

	"github.com/spf13/cobra"
)

type treeRow struct {
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	Label       string `json:"label" yaml:"label"`
	Depth       int    `json:"depth" yaml:"depth"`
	HasChildren bool   `json:"hasChildren" yaml:"hasChildren"`
	Collapsed   bool   `json:"collapsed" yaml:"collapsed"`
	Pinned      bool   `json:"pinned" yaml:"pinned"`
}

type treeData struct {
	Active string    `json:"active,omitempty" yaml:"active,omitempty"`
	Pinned []treeRow `json:"pinned" yaml:"pinned"`
	Rows   []treeRow `json:"rows" yaml:"rows"`

	text string
}

func (d treeData) Text() string { return d.text }

func toTreeRows(rows []projection.Row) []treeRow {
	out := make([]treeRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, treeRow{
			ID:          r.Node.ID,
			Type:        string(r.Node.Type),
			Label:       projection.Label(r.Node),
			Depth:       r.Depth,
			HasChildren: r.HasChildren,
			Collapsed:   r.Collapsed,
			Pinned:      r.Node.Pinned,
		})
	}
	return out
}

func newTreeCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "tree",
		Aliases: []string{"ls"},
		Short:   "Print the sidebar projection (pinned list, then the visible tree)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db := sess.Store()
			if all {
				expandAll(db)
			}
			pinned := projection.Pinned(db, db.Pinned())
			rows := projection.Flatten(db)
			data := treeData{
				Active: sess.ActiveID(),
				Pinned: toTreeRows(pinned),
				Rows:   toTreeRows(rows),
				text:   shell.TreeText(db, sess.ActiveID()),
			}
			return writeResult(cmd, app, data, map[string]any{
				"nodes":  len(db.Nodes()),
				"pinned": len(pinned),
			}, []string{
				"quire outline",
				"quire export --to <dir>",
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Show collapsed subtrees too")
	return cmd
}

// expandAll clears every collapse flag so Flatten lists the whole document.
func expandAll(db *store.DB) {
	for _, n := range db.Nodes() {
		if n.Collapsed {
			_, _ = db.SetCollapsed(n.ID, false)
		}
	}
}

type outlineData struct {
	Bookmarks []projection.Bookmark `json:"bookmarks" yaml:"bookmarks"`

	text string
}

func (d outlineData) Text() string { return d.text }

func newOutlineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "outline [node-id]",
		Short: "Print the bookmark outline (headings and subheadings) of the document or a subtree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rootID := ""
			if len(args) == 1 {
				rootID = args[0]
			}
			marks, err := projection.Outline(sess.Store(), rootID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if marks == nil {
				marks = []projection.Bookmark{}
			}
			return writeResult(cmd, app, outlineData{Bookmarks: marks, text: shell.OutlineText(marks)}, map[string]any{
				"count": len(projection.FlattenBookmarks(marks)),
			}, nil)
		},
	}
}
