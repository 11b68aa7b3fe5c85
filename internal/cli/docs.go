package cli

import (
	"fmt"

	"quire/internal/docs"

	"github.com/spf13/cobra"
)

type docsTopic struct {
	Topic    string `json:"topic" yaml:"topic"`
	Markdown string `json:"markdown" yaml:"markdown"`
}

func (d docsTopic) Text() string { return d.Markdown }

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation (keys, drops, fixtures, serve)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeResult(cmd, app, map[string]any{"topics": docs.Topics()}, nil, []string{
					"quire docs keys",
				})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `quire docs` to list topics)", topic))
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeResult(cmd, app, docsTopic{Topic: topic, Markdown: body}, nil, nil)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")
	return cmd
}
