package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lassoview/internal/config"
)

// viewFlags are the dataset and view flags shared by render, serve and
// tui. Only flags the user set override the configuration file.
type viewFlags struct {
	data        string
	x, y        string
	xScale      string
	yScale      string
	links       int
	seed        int64
	engine      string
	providerURL string
	timeout     time.Duration
	noNetwork   bool
	noCache     bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	d := config.Default()
	fs := cmd.Flags()
	fs.StringVarP(&f.data, "data", "d", d.Data.Path, "dataset file (CSV or JSON), or dataset name for remote sources")
	fs.StringVarP(&f.x, "x", "x", d.Scatter.X, "column on the scatterplot x axis")
	fs.StringVarP(&f.y, "y", "y", d.Scatter.Y, "column on the scatterplot y axis")
	fs.StringVar(&f.xScale, "x-scale", d.Scatter.XScale, "x scale: linear, log")
	fs.StringVar(&f.yScale, "y-scale", d.Scatter.YScale, "y scale: linear, log")
	fs.IntVar(&f.links, "links", d.Network.Links, "number of random network links")
	fs.Int64Var(&f.seed, "seed", d.Network.Seed, "seed for links and layout")
	fs.StringVar(&f.engine, "engine", d.Network.Engine, "layout engine: spring, neato, fdp, sfdp, circo, twopi, provider")
	fs.StringVar(&f.providerURL, "provider", "", "layout provider websocket URL (ws:// or wss://)")
	fs.DurationVar(&f.timeout, "timeout", d.Network.Timeout, "network layout timeout")
	fs.BoolVar(&f.noNetwork, "no-network", false, "show only the scatterplot")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the layout cache")
}

func (f *viewFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("data") {
		cfg.Data.Path = f.data
	}
	if set("x") {
		cfg.Scatter.X, cfg.Scatter.XLabel = f.x, f.x
	}
	if set("y") {
		cfg.Scatter.Y, cfg.Scatter.YLabel = f.y, f.y
	}
	if set("x-scale") {
		cfg.Scatter.XScale = f.xScale
	}
	if set("y-scale") {
		cfg.Scatter.YScale = f.yScale
	}
	if set("links") {
		cfg.Network.Links = f.links
	}
	if set("seed") {
		cfg.Network.Seed = f.seed
	}
	if set("provider") {
		cfg.Network.ProviderURL = f.providerURL
		if !set("engine") && cfg.Data.Source != config.SourceProvider {
			cfg.Network.Engine = config.EngineProvider
		}
	}
	if set("engine") {
		cfg.Network.Engine = f.engine
	}
	if set("timeout") {
		cfg.Network.Timeout = f.timeout
	}
	if f.noNetwork {
		cfg.Network.Enabled = false
	}
}
