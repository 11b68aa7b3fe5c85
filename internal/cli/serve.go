package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"quire/internal/web"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		addr       string
		readOnly   bool
		token      string
		auth       bool
		title      string
		chromePath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live preview of the document over HTTP",
		Long: strings.TrimSpace(`
Serve the printable page of the session on a local HTTP server. The page reloads whenever
the tree changes; /export.md, /export.html and /export.pdf render the current state and
/api/* exposes the same operations as the TUI (create, patch, delete, drop, move).

The session lives in memory and is gone when the server stops.
`),
		Example: strings.TrimSpace(`
# Preview the welcome document
quire serve

# Share a fixture read-only behind a generated token
quire --doc notes.yaml serve --addr :7070 --read-only --auth
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}
			if auth && strings.TrimSpace(token) == "" {
				t, err := web.NewToken()
				if err != nil {
					return writeErr(cmd, err)
				}
				token = t
			}

			defaults := app.cfg.ExportDefaults()
			pdf, err := exportOptions(nil, defaults.PageSize, defaults.Orientation)
			if err != nil {
				return writeErr(cmd, err)
			}
			pdf.PDF.ExecPath = chromePath

			sess, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()

			srv, err := web.NewServer(sess, web.ServerConfig{
				Addr:     actualAddr,
				ReadOnly: readOnly,
				Token:    token,
				Title:    title,
				Logger:   app.log.Logger,
				PDF:      pdf.PDF,
			})
			if err != nil {
				_ = ln.Close()
				return writeErr(cmd, err)
			}

			url := "http://" + actualAddr + "/"
			if token != "" {
				url += "?token=" + token
			}
			_ = writeResult(cmd, app, map[string]any{
				"addr":      actualAddr,
				"url":       url,
				"readOnly":  readOnly,
				"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
			}, nil, []string{
				"open " + url,
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Quire preview running at %s\n", url)
			app.log.Info().Str("addr", actualAddr).Bool("readOnly", readOnly).Bool("auth", token != "").Msg("serve")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Serve(ctx, ln); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("QUIRE_ADDR", "127.0.0.1:7070"), "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Reject API writes")
	cmd.Flags().StringVar(&token, "token", envOr("QUIRE_TOKEN", ""), "Require this access token")
	cmd.Flags().BoolVar(&auth, "auth", false, "Require a generated access token (printed in the URL)")
	cmd.Flags().StringVar(&title, "title", "", "Page title (default: first root's title)")
	cmd.Flags().StringVar(&chromePath, "chrome", envOr("QUIRE_CHROME", ""), "Chrome/Chromium binary for /export.pdf")
	return cmd
}
