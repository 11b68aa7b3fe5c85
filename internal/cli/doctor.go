package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errDoctorIssuesFound = errors.New("doctor found issues")

type doctorIssue struct {
	Check   string `json:"check" yaml:"check"`
	Message string `json:"message" yaml:"message"`
}

type doctorReport struct {
	Nodes  int           `json:"nodes" yaml:"nodes"`
	Roots  int           `json:"roots" yaml:"roots"`
	Issues []doctorIssue `json:"issues" yaml:"issues"`
}

func (r doctorReport) HasErrors() bool { return len(r.Issues) > 0 }

func (r doctorReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d nodes, %d roots\n", r.Nodes, r.Roots)
	if len(r.Issues) == 0 {
		b.WriteString("ok")
		return b.String()
	}
	for _, is := range r.Issues {
		fmt.Fprintf(&b, "%s: %s\n", is.Check, is.Message)
	}
	return b.String()
}

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the document invariants, export defaults and palette store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := doctorReport{Issues: []doctorIssue{}}
			add := func(check string, err error) {
				if err != nil {
					report.Issues = append(report.Issues, doctorIssue{Check: check, Message: err.Error()})
				}
			}

			sess, err := loadSession(app)
			add("document", err)
			if err == nil {
				db := sess.Store()
				report.Nodes = len(db.Nodes())
				report.Roots = len(db.Roots())
				add("invariants", db.Check())
			}

			defaults := app.cfg.ExportDefaults()
			_, err = exportOptions(nil, defaults.PageSize, defaults.Orientation)
			add("config.export", err)

			if s, err := app.cfg.PaletteStore(); err != nil {
				add("palette", err)
			} else {
				_, err := s.LoadPalette(cmd.Context())
				add("palette", err)
			}

			meta := map[string]any{
				"issues":    len(report.Issues),
				"hasErrors": report.HasErrors(),
			}
			hints := []string{
				"quire tree",
			}
			if err := writeResult(cmd, app, report, meta, hints); err != nil {
				return err
			}
			if fail && report.HasErrors() {
				return errDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}
