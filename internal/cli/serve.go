package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/lassoview/internal/config"
	"github.com/matzehuels/lassoview/internal/server"
	"github.com/matzehuels/lassoview/pkg/errors"
)

// serveCommand serves the interactive views to browsers.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		vf    viewFlags
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the linked views in the browser",
		Long: `Serve the scatterplot and network views on one page. Drawing a lasso on
either view highlights the enclosed records in both. Each browser tab keeps
its own selection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, &vf)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Server.Watch = watch
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			load, closeSource, err := recordLoader(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeSource()
			opts, closeCache, err := sceneOptions(ctx, cfg, vf.noCache, logger)
			if err != nil {
				return err
			}
			defer closeCache()

			srv, err := server.New(ctx, load, server.Options{
				Title:       appName + " · " + datasetName(cfg.Data.Path, true),
				Scene:       opts,
				MinDistance: cfg.Lasso.MinDistance,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			if cfg.Server.Watch {
				if cfg.Data.Source != config.SourceFile {
					return errors.New(errors.ErrCodeInvalidConfig, "--watch needs a file data source")
				}
				go func() {
					if err := srv.Watch(ctx, cfg.Data.Path); err != nil {
						logger.Error("watch stopped", "err", err)
					}
				}()
			}

			printSuccess("Serving %d records", len(srv.Scene().Records))
			printKeyValue("URL", "http://"+cfg.Server.Addr)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	vf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "listen address")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the dataset file changes")

	return cmd
}
