package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lassoview/internal/config"
	"github.com/matzehuels/lassoview/pkg/cache"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/layout"
	"github.com/matzehuels/lassoview/pkg/provider"
)

// providerCommand runs a websocket backend that serves datasets and layouts
// to lassoview clients started with --engine provider.
func (c *CLI) providerCommand() *cobra.Command {
	var (
		addr    string
		dataDir string
		engine  string
		workers int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Run a layout provider backend",
		Long: `Run a websocket backend answering "records" requests with datasets from
a directory and "layout" requests with a local layout engine.`,
		Example: `  lassoview provider --data-dir examples/data --engine neato
  lassoview serve --engine provider --provider ws://localhost:9000/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			set := cmd.Flags().Changed
			if set("addr") {
				cfg.Provider.Addr = addr
			}
			if set("data-dir") {
				cfg.Provider.DataDir = dataDir
			}
			if set("engine") {
				cfg.Provider.Engine = engine
			}
			if set("workers") {
				cfg.Provider.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			lc, err := openCache(ctx, cfg, noCache)
			if err != nil {
				logger.Warn("layout cache unavailable", "err", err)
				lc = cache.NewNullCache()
			}
			defer lc.Close()
			eng := layout.NewCached(config.LayoutEngine(cfg.Provider.Engine, cfg.Network.Seed), lc, nil, cfg.Cache.TTL, logger)

			srv := provider.NewServer(data.DirSource{Dir: cfg.Provider.DataDir}, eng,
				provider.WithServerLogger(logger),
				provider.WithWorkers(cfg.Provider.Workers),
			)

			printSuccess("Provider serving %s", cfg.Provider.DataDir)
			printKeyValue("URL", "ws://"+cfg.Provider.Addr+"/")
			printKeyValue("Engine", cfg.Provider.Engine)
			return serveProvider(ctx, cfg.Provider.Addr, srv)
		},
	}

	d := config.Default().Provider
	cmd.Flags().StringVar(&addr, "addr", d.Addr, "listen address")
	cmd.Flags().StringVar(&dataDir, "data-dir", d.DataDir, "directory of CSV and JSON datasets")
	cmd.Flags().StringVar(&engine, "engine", d.Engine, "layout engine: spring, neato, fdp, sfdp, circo, twopi")
	cmd.Flags().IntVar(&workers, "workers", d.Workers, "requests computed at once")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

// providerRouter mounts the websocket endpoint at / next to a health check.
func providerRouter(srv *provider.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/", srv)
	return r
}

func serveProvider(ctx context.Context, addr string, srv *provider.Server) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           providerRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}
