package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lassoview/internal/scene"
	"github.com/matzehuels/lassoview/internal/tui"
)

// tuiCommand shows the interactive views in the terminal.
func (c *CLI) tuiCommand() *cobra.Command {
	var vf viewFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Show the linked views in the terminal",
		Long: `Show the scatterplot and network views side by side in the terminal.
Drag with the left mouse button to draw a lasso; esc cancels it and r clears
the selection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, &vf)
			if err != nil {
				return err
			}
			// Log lines would tear the alternate screen.
			quiet := log.NewWithOptions(io.Discard, log.Options{})
			ctx := withLogger(cmd.Context(), quiet)
			sc, closeCache, err := c.buildScene(ctx, cfg, vf.noCache)
			if err != nil {
				return err
			}
			defer closeCache()

			return tui.Run(ctx, sc, tui.Options{
				Title: appName + " · " + datasetName(cfg.Data.Path, true),
				Scene: scene.Options{
					Scatter: scatterOptions(cfg.Scatter),
					Palette: cfg.SelectionPalette(),
				},
				MinDistance: cfg.Lasso.MinDistance,
				Logger:      quiet,
			})
		},
	}

	vf.register(cmd)
	return cmd
}
