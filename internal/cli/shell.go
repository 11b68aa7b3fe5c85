package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"quire/internal/shell"
	"quire/internal/store"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func newShellCmd(app *App) *cobra.Command {
	var commands []string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Line-oriented session shell (every TUI action as a command)",
		Example: `  quire shell
  quire --doc notes.yaml shell -c "select intro" -c "drag intro" -c "drop guide" -c tree`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sh := shell.New(sess, cmd.OutOrStdout(), shell.WithLogger(app.log.Logger))

			if len(commands) > 0 {
				for _, line := range commands {
					if err := sh.Exec(line); err != nil {
						if errors.Is(err, shell.ErrQuit) {
							return nil
						}
						return writeErr(cmd, fmt.Errorf("%s: %w", line, err))
					}
				}
				return nil
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          sh.Prompt(),
				AutoComplete:    shell.Completer(),
				HistoryFile:     historyFile(),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rl.Close()
			return sh.Run(rl)
		},
	}

	cmd.Flags().StringArrayVarP(&commands, "command", "c", nil, "Run this shell command and exit (repeatable)")
	return cmd
}

// historyFile lives next to config.json; no history is kept when the dir can't be resolved.
func historyFile() string {
	dir, err := store.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "shell_history")
}
