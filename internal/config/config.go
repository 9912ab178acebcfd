// Package config loads the lassoview configuration file.
//
// The file is TOML or YAML, chosen by extension. Every key is optional;
// missing keys keep the values from [Default]. Command-line flags are applied
// on top by the cli package.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lassoview/pkg/cache"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/lasso"
	"github.com/matzehuels/lassoview/pkg/layout"
	"github.com/matzehuels/lassoview/pkg/render"
	"github.com/matzehuels/lassoview/pkg/selection"
)

// Data sources.
const (
	SourceFile     = "file"
	SourceMongo    = "mongo"
	SourceProvider = "provider"
)

// Layout engines besides the Graphviz ones.
const (
	EngineSpring   = "spring"
	EngineProvider = "provider"
)

// Config is the full configuration.
type Config struct {
	Data     Data     `toml:"data" yaml:"data"`
	Scatter  Scatter  `toml:"scatter" yaml:"scatter"`
	Network  Network  `toml:"network" yaml:"network"`
	Palette  Palette  `toml:"palette" yaml:"palette"`
	Lasso    Lasso    `toml:"lasso" yaml:"lasso"`
	Server   Server   `toml:"server" yaml:"server"`
	Provider Provider `toml:"provider" yaml:"provider"`
	Cache    Cache    `toml:"cache" yaml:"cache"`
}

// Data selects where records come from.
type Data struct {
	Source   string `toml:"source" yaml:"source"`
	Path     string `toml:"path" yaml:"path"`
	MongoURI string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db" yaml:"mongo_db"`
}

// Scatter configures the primary view.
type Scatter struct {
	X      string  `toml:"x" yaml:"x"`
	Y      string  `toml:"y" yaml:"y"`
	XLabel string  `toml:"x_label" yaml:"x_label"`
	YLabel string  `toml:"y_label" yaml:"y_label"`
	XScale string  `toml:"x_scale" yaml:"x_scale"`
	YScale string  `toml:"y_scale" yaml:"y_scale"`
	Width  int     `toml:"width" yaml:"width"`
	Height int     `toml:"height" yaml:"height"`
	Radius float64 `toml:"radius" yaml:"radius"`
}

// Network configures the linked network view.
type Network struct {
	Enabled     bool          `toml:"enabled" yaml:"enabled"`
	Links       int           `toml:"links" yaml:"links"`
	Seed        int64         `toml:"seed" yaml:"seed"`
	Engine      string        `toml:"engine" yaml:"engine"`
	ProviderURL string        `toml:"provider_url" yaml:"provider_url"`
	Timeout     time.Duration `toml:"timeout" yaml:"timeout"`
	Width       int           `toml:"width" yaml:"width"`
	Height      int           `toml:"height" yaml:"height"`
}

// Palette holds the selection colors.
type Palette struct {
	Highlight string `toml:"highlight" yaml:"highlight"`
	Dim       string `toml:"dim" yaml:"dim"`
	Reset     string `toml:"reset" yaml:"reset"`
}

// Lasso configures gesture sampling.
type Lasso struct {
	MinDistance float64 `toml:"min_distance" yaml:"min_distance"`
}

// Server configures the serve command.
type Server struct {
	Addr  string `toml:"addr" yaml:"addr"`
	Watch bool   `toml:"watch" yaml:"watch"`
}

// Provider configures the provider command.
type Provider struct {
	Addr    string `toml:"addr" yaml:"addr"`
	DataDir string `toml:"data_dir" yaml:"data_dir"`
	Engine  string `toml:"engine" yaml:"engine"`
	Workers int    `toml:"workers" yaml:"workers"`
}

// Cache configures layout caching.
type Cache struct {
	Backend   string        `toml:"backend" yaml:"backend"`
	Dir       string        `toml:"dir" yaml:"dir"`
	RedisAddr string        `toml:"redis_addr" yaml:"redis_addr"`
	RedisDB   int           `toml:"redis_db" yaml:"redis_db"`
	TTL       time.Duration `toml:"ttl" yaml:"ttl"`
}

// Default returns the built-in configuration: the mtcars scatterplot of mpg
// against hp linked to a spring-laid-out network of 50 random links.
func Default() Config {
	return Config{
		Data: Data{
			Source:  SourceFile,
			Path:    "examples/data/mtcars.csv",
			MongoDB: "lassoview",
		},
		Scatter: Scatter{
			X:      "mpg",
			Y:      "hp",
			XLabel: "mpg",
			YLabel: "hp",
			XScale: "linear",
			YScale: "linear",
			Width:  render.DefaultWidth,
			Radius: render.DefaultRadius,
		},
		Network: Network{
			Enabled: true,
			Links:   50,
			Seed:    1,
			Engine:  EngineSpring,
			Timeout: 10 * time.Second,
			Width:   render.DefaultWidth,
		},
		Palette: Palette{
			Highlight: string(selection.DefaultPalette.Highlight),
			Dim:       string(selection.DefaultPalette.Dim),
			Reset:     string(selection.DefaultPalette.Reset),
		},
		Lasso:  Lasso{MinDistance: lasso.DefaultMinDistance},
		Server: Server{Addr: "localhost:8080"},
		Provider: Provider{
			Addr:    "localhost:9000",
			DataDir: "examples/data",
			Engine:  EngineSpring,
			Workers: 4,
		},
		Cache: Cache{
			Backend: cache.BackendFile,
			TTL:     7 * 24 * time.Hour,
		},
	}
}

// Load reads path over [Default]. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(raw)).Decode(&cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "config %s: unsupported extension (want .toml, .yaml or .yml)", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail deep inside a command.
func (c Config) Validate() error {
	switch c.Data.Source {
	case SourceFile, SourceMongo, SourceProvider:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "data.source %q: want file, mongo or provider", c.Data.Source)
	}
	if c.Data.Source == SourceMongo && c.Data.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "data.mongo_uri is required for the mongo source")
	}
	for _, s := range []string{c.Scatter.XScale, c.Scatter.YScale} {
		if s != "linear" && s != "log" {
			return errors.New(errors.ErrCodeInvalidConfig, "scale %q: want linear or log", s)
		}
	}
	if c.Network.Links < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "network.links must not be negative")
	}
	if !validEngine(c.Network.Engine) {
		return errors.New(errors.ErrCodeInvalidConfig, "network.engine %q is unknown", c.Network.Engine)
	}
	if c.Network.Engine == EngineProvider || c.Data.Source == SourceProvider {
		if err := errors.ValidateProviderURL(c.Network.ProviderURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "network.provider_url")
		}
	}
	if c.Provider.Engine == EngineProvider || !validEngine(c.Provider.Engine) {
		return errors.New(errors.ErrCodeInvalidConfig, "provider.engine %q is unknown", c.Provider.Engine)
	}
	if err := c.SelectionPalette().Validate(); err != nil {
		return err
	}
	if c.Lasso.MinDistance < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "lasso.min_distance must not be negative")
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q: want none, file or redis", c.Cache.Backend)
	}
	return nil
}

func validEngine(name string) bool {
	if name == EngineSpring || name == EngineProvider {
		return true
	}
	for _, e := range layout.GraphvizEngines {
		if e == name {
			return true
		}
	}
	return false
}

// SelectionPalette converts the palette section.
func (c Config) SelectionPalette() selection.Palette {
	return selection.Palette{
		Highlight: render.Color(c.Palette.Highlight),
		Dim:       render.Color(c.Palette.Dim),
		Reset:     render.Color(c.Palette.Reset),
	}
}

// CacheOptions converts the cache section.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis:   cache.RedisOptions{Addr: c.Cache.RedisAddr, DB: c.Cache.RedisDB, Prefix: "lassoview:"},
	}
}

// LayoutEngine builds the local engine named name. The provider engine is
// not local and returns nil.
func LayoutEngine(name string, seed int64) layout.Engine {
	switch name {
	case EngineSpring:
		return layout.Spring{Seed: seed}
	case EngineProvider:
		return nil
	default:
		return layout.Graphviz{Engine: name}
	}
}
