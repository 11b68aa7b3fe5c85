package cli

import (
	"fmt"
	"strings"
	"time"

	"quire/internal/publish"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		toDir       string
		formats     []string
		pageSize    string
		orientation string
		bookmarks   bool
		overwrite   bool
		rootID      string
		title       string
		baseName    string
		chromePath  string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the document (or a subtree) as Markdown, HTML or PDF",
		Long: strings.TrimSpace(`
Export renders the tree projection. Headings become level-1 and subheadings level-2
entries; with --bookmarks the PDF gets a document outline and md/html a contents list.
PDF export drives a headless Chrome (set --chrome when it is not on PATH).

Unset flags fall back to the "export" section of ~/.quire/config.json.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := app.cfg.ExportDefaults()
			if !cmd.Flags().Changed("to") {
				toDir = defaults.OutDir
			}
			if !cmd.Flags().Changed("page-size") {
				pageSize = defaults.PageSize
			}
			if !cmd.Flags().Changed("orientation") {
				orientation = defaults.Orientation
			}
			if !cmd.Flags().Changed("bookmarks") && defaults.IncludeBookmarks != nil {
				bookmarks = *defaults.IncludeBookmarks
			}

			opt, err := exportOptions(formats, pageSize, orientation)
			if err != nil {
				return writeErr(cmd, err)
			}
			opt.Overwrite = overwrite
			opt.BaseName = baseName
			opt.Render = publish.RenderOptions{IncludeBookmarks: bookmarks, Title: title}
			opt.PDF.ExecPath = chromePath
			opt.PDF.Timeout = timeout

			sess, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			doc, err := publish.Collect(sess.Store(), rootID)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info().Strs("formats", formats).Str("to", toDir).Str("root", rootID).Msg("export")
			res, err := publish.Write(cmd.Context(), doc, toDir, opt)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeResult(cmd, app, res, map[string]any{
				"pageSize":  string(opt.PDF.PageSize),
				"landscape": opt.PDF.Landscape,
				"bookmarks": bookmarks,
			}, []string{
				"quire outline",
			})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	cmd.Flags().StringSliceVar(&formats, "as", []string{"md"}, "Formats to write (md,html,pdf)")
	cmd.Flags().StringVar(&pageSize, "page-size", "A4", "PDF page size (A4|Letter|Legal)")
	cmd.Flags().StringVar(&orientation, "orientation", "portrait", "PDF orientation (portrait|landscape)")
	cmd.Flags().BoolVar(&bookmarks, "bookmarks", true, "Include bookmarks (PDF outline, contents list)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	cmd.Flags().StringVar(&rootID, "root", "", "Export only the subtree rooted at this node")
	cmd.Flags().StringVar(&title, "title", "", "Document title (default: first root's title)")
	cmd.Flags().StringVar(&baseName, "name", "quire-export", "Output file name without extension")
	cmd.Flags().StringVar(&chromePath, "chrome", envOr("QUIRE_CHROME", ""), "Chrome/Chromium binary for PDF export")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "PDF rendering timeout")
	return cmd
}

func exportOptions(formats []string, pageSize, orientation string) (publish.WriteOptions, error) {
	var opt publish.WriteOptions
	for _, s := range formats {
		f, err := publish.ParseFormat(s)
		if err != nil {
			return opt, err
		}
		opt.Formats = append(opt.Formats, f)
	}
	ps, err := publish.ParsePageSize(pageSize)
	if err != nil {
		return opt, err
	}
	opt.PDF.PageSize = ps
	switch strings.ToLower(strings.TrimSpace(orientation)) {
	case "", "portrait":
	case "landscape":
		opt.PDF.Landscape = true
	default:
		return opt, fmt.Errorf("unknown orientation %q (want portrait or landscape)", orientation)
	}
	return opt, nil
}
