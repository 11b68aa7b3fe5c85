package cli

import (
	"strings"

	"quire/internal/store"

	"github.com/spf13/cobra"
)

type paletteData struct {
	Colors []string `json:"colors" yaml:"colors"`
}

func (d paletteData) Text() string {
	if len(d.Colors) == 0 {
		return "(no custom colors)"
	}
	return strings.Join(d.Colors, "\n")
}

func newPaletteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Manage the saved custom heading colors",
	}

	writePalette := func(cmd *cobra.Command, colors []string) error {
		return writeResult(cmd, app, paletteData{Colors: colors}, map[string]any{
			"count": len(colors),
			"key":   store.PaletteKey,
		}, nil)
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved colors (oldest first)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.cfg.PaletteStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			colors, err := s.LoadPalette(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writePalette(cmd, colors)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <#hex>...",
		Short: "Save colors (#rgb or #rrggbb); duplicates are ignored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.cfg.PaletteStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			var colors []string
			for _, c := range args {
				colors, err = s.AddPaletteColor(cmd.Context(), c)
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			app.log.Debug().Strs("colors", args).Msg("palette add")
			return writePalette(cmd, colors)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <#hex>",
		Aliases: []string{"remove"},
		Short:   "Remove a saved color",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.cfg.PaletteStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			colors, err := s.RemovePaletteColor(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writePalette(cmd, colors)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every saved color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.cfg.PaletteStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.SavePalette(cmd.Context(), nil); err != nil {
				return writeErr(cmd, err)
			}
			return writePalette(cmd, []string{})
		},
	})

	return cmd
}
