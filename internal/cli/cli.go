package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/matzehuels/lassoview/internal/config"
	"github.com/matzehuels/lassoview/internal/scene"
	"github.com/matzehuels/lassoview/pkg/buildinfo"
	"github.com/matzehuels/lassoview/pkg/cache"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/layout"
	"github.com/matzehuels/lassoview/pkg/observability"
	"github.com/matzehuels/lassoview/pkg/provider"
	"github.com/matzehuels/lassoview/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lassoview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Lassoview links a scatterplot and a network view with a lasso",
		Long: `Lassoview renders a dataset as a scatterplot and as a network of the same
records. Drawing a lasso on either view highlights the enclosed records in
both.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return registerMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file (.toml, .yaml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.providerCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// registerMetrics routes library hooks to the global OpenTelemetry meter
// provider. Without an SDK installed the instruments are no-ops.
func registerMetrics() error {
	hooks, err := observability.NewOTelHooks(otel.GetMeterProvider().Meter(appName))
	if err != nil {
		return err
	}
	hooks.Register()
	return nil
}

// =============================================================================
// Scene Assembly
// =============================================================================

// loadConfig reads the --config file and applies the flags the user set.
func (c *CLI) loadConfig(cmd *cobra.Command, vf *viewFlags) (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if vf != nil {
		vf.apply(cmd, &cfg)
	}
	return cfg, cfg.Validate()
}

// recordLoader returns a function reading the configured dataset and a
// cleanup for any connection it opened.
func recordLoader(ctx context.Context, cfg config.Config) (func(context.Context) ([]data.Record, error), func(), error) {
	noop := func() {}
	switch cfg.Data.Source {
	case config.SourceMongo:
		src, err := data.NewMongoSource(ctx, cfg.Data.MongoURI, cfg.Data.MongoDB)
		if err != nil {
			return nil, noop, err
		}
		name := datasetName(cfg.Data.Path, true)
		load := func(ctx context.Context) ([]data.Record, error) { return src.Load(ctx, name) }
		return load, func() { _ = src.Close(context.Background()) }, nil
	case config.SourceProvider:
		src := provider.Remote{URL: cfg.Network.ProviderURL, Timeout: cfg.Network.Timeout}
		name := datasetName(cfg.Data.Path, false)
		load := func(ctx context.Context) ([]data.Record, error) { return src.Load(ctx, name) }
		return load, noop, nil
	default:
		path := cfg.Data.Path
		load := func(context.Context) ([]data.Record, error) {
			records, err := data.Load(path)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "load dataset")
			}
			return records, nil
		}
		return load, noop, nil
	}
}

// datasetName turns a path into the name a remote source knows it by.
func datasetName(path string, trimExt bool) string {
	name := filepath.Base(path)
	if trimExt {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// sceneOptions builds the view options and the layout engine. The returned
// cleanup closes the layout cache.
func sceneOptions(ctx context.Context, cfg config.Config, noCache bool, logger *log.Logger) (scene.Options, func(), error) {
	opts := scene.Options{
		Scatter:        scatterOptions(cfg.Scatter),
		Palette:        cfg.SelectionPalette(),
		Links:          cfg.Network.Links,
		Seed:           cfg.Network.Seed,
		Timeout:        cfg.Network.Timeout,
		NetworkOptions: []render.Option{render.WithSize(float64(cfg.Network.Width), float64(cfg.Network.Height))},
		Logger:         logger,
	}
	if !cfg.Network.Enabled {
		return opts, func() {}, nil
	}

	var engine layout.Engine
	if cfg.Network.Engine == config.EngineProvider {
		engine = provider.Remote{URL: cfg.Network.ProviderURL, Timeout: cfg.Network.Timeout}
	} else {
		engine = config.LayoutEngine(cfg.Network.Engine, cfg.Network.Seed)
	}

	lc, err := openCache(ctx, cfg, noCache)
	if err != nil {
		logger.Warn("layout cache unavailable", "err", err)
		lc = cache.NewNullCache()
	}
	opts.Engine = layout.NewCached(engine, lc, nil, cfg.Cache.TTL, logger)
	return opts, func() { _ = lc.Close() }, nil
}

func scatterOptions(s config.Scatter) []render.Option {
	opts := []render.Option{
		render.WithX(data.Field(s.X)),
		render.WithY(data.Field(s.Y)),
		render.WithLabels(s.XLabel, s.YLabel),
		render.WithXScale(scaleFunc(s.XScale)),
		render.WithYScale(scaleFunc(s.YScale)),
		render.WithSize(float64(s.Width), float64(s.Height)),
	}
	if s.Radius > 0 {
		opts = append(opts, render.WithRadius(render.Constant(s.Radius)))
	}
	return opts
}

func scaleFunc(name string) render.ScaleFunc {
	if name == "log" {
		return render.Log
	}
	return render.Linear
}

func openCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg.CacheOptions())
}

// buildScene loads the dataset and starts the network layout.
func (c *CLI) buildScene(ctx context.Context, cfg config.Config, noCache bool) (*scene.Scene, func(), error) {
	logger := loggerFromContext(ctx)
	load, closeSource, err := recordLoader(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	records, err := load(ctx)
	closeSource()
	if err != nil {
		return nil, nil, err
	}
	opts, closeCache, err := sceneOptions(ctx, cfg, noCache, logger)
	if err != nil {
		return nil, nil, err
	}
	sc, err := scene.Build(ctx, records, opts)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	logger.Debug("scene built", "records", len(records), "links", len(sc.Links), "engine", cfg.Network.Engine)
	return sc, closeCache, nil
}
