package cli

import (
	"fmt"
	"os"
	"strings"

	"quire/internal/format"
	"quire/internal/logging"
	"quire/internal/store"
	"quire/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Doc        string
	LogFile    string
	LogLevel   string
	PrettyJSON bool
	Format     string

	cfg *store.GlobalConfig
	log *logging.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "quire",
		Short:        "Quire block-tree notes: TUI, shell and export",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI on the welcome document
  quire

  # Open a document fixture (shortcut for: quire --doc notes.yaml)
  quire notes.yaml

  # Scriptable commands
  quire --doc notes.yaml tree --format text
  quire --doc notes.yaml export --to ./out --as md,pdf
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, fmt.Errorf("load config: %w", err))
		}
		app.cfg = cfg
		if strings.TrimSpace(app.Format) == "" {
			app.Format = cfg.Format
		}
		if strings.TrimSpace(app.Format) == "" {
			app.Format = "json"
		}
		if strings.TrimSpace(app.LogLevel) == "" {
			app.LogLevel = cfg.LogLevel
		}
		// The TUI owns the terminal; it only ever logs to a file.
		interactive := cmd == cmd.Root()
		if err := openLogger(cmd, app, interactive); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.log.Close()
	}

	cmd.PersistentFlags().StringVar(&app.Doc, "doc", envOr("QUIRE_DOC", ""), "Document fixture (YAML or JSON) to seed the session (default: welcome document)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("QUIRE_LOG_FILE", ""), "Append logs to this file")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("QUIRE_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("QUIRE_FORMAT", ""), "Output format (json|yaml|text)")

	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newOutlineCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newPaletteCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newShellCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	sess, err := loadSession(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	opt := tui.Options{Logger: app.log.Logger}
	if t := app.cfg.TUI; t != nil {
		opt.Glyphs = t.Glyphs
		opt.ColorProfile = t.ColorProfile
		opt.HidePreview = t.HidePreview
	}
	return tui.Run(sess, opt)
}

func openLogger(cmd *cobra.Command, app *App, interactive bool) error {
	b := logging.New().Level(app.LogLevel)
	switch {
	case strings.TrimSpace(app.LogFile) != "":
		b = b.FromPath(app.LogFile)
	case !interactive:
		b = b.FromWriter(cmd.ErrOrStderr())
	}
	l, err := b.Make()
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	app.log = l
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeResult writes the {data, meta, _hints} envelope. With --format text, data that knows
// how to render itself is written bare.
func writeResult(cmd *cobra.Command, app *App, data any, meta map[string]any, hints []string) error {
	if strings.EqualFold(strings.TrimSpace(app.Format), "text") {
		if t, ok := data.(format.Texter); ok {
			return format.WriteText(cmd.OutOrStdout(), t)
		}
	}
	env := map[string]any{"data": data}
	if meta != nil {
		env["meta"] = meta
	}
	if len(hints) > 0 {
		env["_hints"] = hints
	}
	return writeOut(cmd, app, env)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
