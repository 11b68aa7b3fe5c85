// Package shell is a line-oriented front end over a session: every sidebar action of the
// TUI has a command here, which makes the session scriptable.
package shell

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"quire/internal/session"
)

// ErrQuit is returned by Exec for quit/exit.
var ErrQuit = errors.New("quit")

type Shell struct {
	sess *session.Session
	out  io.Writer
	log  zerolog.Logger
}

type Option func(*Shell)

func WithLogger(l zerolog.Logger) Option {
	return func(sh *Shell) { sh.log = l }
}

func New(sess *session.Session, out io.Writer, opts ...Option) *Shell {
	sh := &Shell{sess: sess, out: out, log: zerolog.Nop()}
	for _, o := range opts {
		o(sh)
	}
	return sh
}

// Session exposes the session the shell drives.
func (sh *Shell) Session() *session.Session { return sh.sess }

// Prompt shows the active node, if any.
func (sh *Shell) Prompt() string {
	if id := sh.sess.ActiveID(); id != "" {
		return "quire [" + id + "]> "
	}
	return "quire> "
}

// Completer offers command names and node types.
func Completer() *readline.PrefixCompleter {
	names := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		if name == "add" {
			items = append(items, readline.PcItem("add",
				readline.PcItem("heading"),
				readline.PcItem("subheading"),
				readline.PcItem("text"),
				readline.PcItem("table"),
				readline.PcItem("image"),
				readline.PcItem("icon"),
				readline.PcItem("banner"),
			))
			continue
		}
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// Run reads lines from rl until quit or EOF. Command errors are printed and the loop goes on.
func (sh *Shell) Run(rl *readline.Instance) error {
	for {
		rl.SetPrompt(sh.Prompt())
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				fmt.Fprintln(sh.out, "Use 'exit' or 'quit' to leave the shell.")
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sh.Exec(line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintln(sh.out, "error:", err)
		}
	}
}

// Exec runs one command line.
func (sh *Shell) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	args := splitWords(line)
	if len(args) == 0 {
		return nil
	}
	sh.log.Debug().Strs("args", args).Msg("shell command")

	name, rest := strings.ToLower(args[0]), args[1:]
	switch name {
	case "help", "?":
		return sh.handleHelp(rest)
	case "tree", "ls":
		return sh.handleTree(rest)
	case "pinned":
		return sh.handlePinned(rest)
	case "outline":
		return sh.handleOutline(rest)
	case "show":
		return sh.handleShow(rest)
	case "select", "sel":
		return sh.handleSelect(rest)
	case "key":
		return sh.handleKey(rest)
	case "add":
		return sh.handleAdd(rest)
	case "rename":
		return sh.handleRename(rest)
	case "set":
		return sh.handleSet(rest)
	case "delete", "del":
		return sh.handleDelete(rest)
	case "move":
		return sh.handleMove(rest)
	case "reorder":
		return sh.handleReorder(rest)
	case "drag":
		return sh.handleDrag(rest)
	case "over":
		return sh.handleOver(rest)
	case "drop":
		return sh.handleDrop(rest)
	case "cancel":
		return sh.handleCancel(rest)
	case "collapse":
		return sh.handleCollapse(rest)
	case "pin":
		return sh.handlePin(rest)
	case "edit":
		return sh.handleEdit(rest)
	case "done":
		return sh.handleDone(rest)
	case "save":
		return sh.handleSave(rest)
	case "exit", "quit":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command: %s (try 'help')", args[0])
	}
}

var commandHelp = map[string]string{
	"help":     "help [command]\n  List commands, or describe one.",
	"tree":     "tree\n  Print the sidebar: pinned nodes, then the document with collapsed subtrees hidden.",
	"pinned":   "pinned\n  Print only the pinned list.",
	"outline":  "outline [id]\n  Print the bookmark outline of the document or of one subtree.",
	"show":     "show [id]\n  Print a node (default: the active node) as YAML.",
	"select":   "select <id|->\n  Make a node active; '-' clears the selection.",
	"key":      "key <chord>\n  Send a chord to the session, e.g. key ctrl+shift+h, key alt+left, key down.",
	"add":      "add <type> [parent|-] [--before <id>]\n  Create a node under parent ('-' or omitted: root) and select it.",
	"rename":   "rename [id] <title...>\n  Rename a heading, subheading or text node. A blank title becomes \"Untitled\".",
	"set":      "set <id> <yaml>\n  Replace a node's content with a YAML/JSON value for its type.",
	"delete":   "delete [id]\n  Delete a node and everything under it.",
	"move":     "move <id> <parent|->\n  Reparent a node to the end of parent's children ('-' for root).",
	"reorder":  "reorder <id> <target>\n  Swap two siblings.",
	"drag":     "drag <id>\n  Pick up a node. A collapsed parent opens for the duration of the drag.",
	"over":     "over <id>\n  Hover the dragged node over a container; collapsed containers open.",
	"drop":     "drop <target>\n  Drop the dragged node on target.",
	"cancel":   "cancel\n  Abandon the current drag.",
	"collapse": "collapse [id]\n  Toggle a node's collapsed flag.",
	"pin":      "pin [id]\n  Toggle a node's pinned flag.",
	"edit":     "edit\n  Open the editor on the active leaf.",
	"done":     "done\n  Close the editor.",
	"save":     "save <path>\n  Write the document as a YAML or JSON fixture (by extension).",
	"exit":     "exit\n  Leave the shell.",
}
