package layout

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lassoview/pkg/cache"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/geom"
)

// keyed is implemented by engines whose settings change their output.
type keyed interface {
	CacheKeyOpts() cache.LayoutKeyOpts
}

// Cached serves layouts from a cache and computes missing ones with the
// wrapped engine. Cache failures are logged and never fail the layout.
type Cached struct {
	engine Engine
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewCached wraps e. Nil cache and keyer default to [cache.NullCache] and
// [cache.DefaultKeyer].
func NewCached(e Engine, c cache.Cache, k cache.Keyer, ttl time.Duration, logger *log.Logger) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Cached{engine: e, cache: c, keyer: k, ttl: ttl, logger: logger}
}

func (c *Cached) Name() string { return c.engine.Name() }

// Key returns the cache key for a network.
func (c *Cached) Key(n int, links []data.Link) (string, error) {
	graphHash, err := cache.HashJSON(struct {
		N     int         `json:"n"`
		Links []data.Link `json:"links"`
	}{n, links})
	if err != nil {
		return "", err
	}
	opts := cache.LayoutKeyOpts{Engine: c.engine.Name()}
	if k, ok := c.engine.(keyed); ok {
		opts = k.CacheKeyOpts()
	}
	return c.keyer.LayoutKey(graphHash, opts), nil
}

func (c *Cached) Layout(ctx context.Context, n int, links []data.Link) ([]geom.Point, error) {
	if err := ValidateLinks(n, links); err != nil {
		return nil, err
	}
	key, err := c.Key(n, links)
	if err != nil {
		return c.engine.Layout(ctx, n, links)
	}

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("layout cache read failed", "err", err)
	} else if ok {
		var pts []geom.Point
		if err := json.Unmarshal(raw, &pts); err == nil && len(pts) == n {
			c.logger.Debug("layout cache hit", "engine", c.Name(), "nodes", n)
			return pts, nil
		}
		c.logger.Warn("discarding malformed cached layout", "key", key)
	}

	pts, err := c.engine.Layout(ctx, n, links)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(pts); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("layout cache write failed", "err", err)
		}
	}
	return pts, nil
}
