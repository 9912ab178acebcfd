package provider

import (
	"context"
	"time"

	"github.com/matzehuels/lassoview/pkg/cache"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/layout"
)

// Remote uses a provider as a [layout.Engine] and a [data.Source]. Each
// call opens its own connection, so a Remote is safe for concurrent use.
type Remote struct {
	URL     string
	Timeout time.Duration // per call; 0 means no limit beyond ctx
	Options []DialOption
}

func (r Remote) Name() string { return "provider" }

// CacheKeyOpts keys cached layouts by provider URL.
func (r Remote) CacheKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Engine: "provider:" + r.URL}
}

func (r Remote) dial(ctx context.Context) (*Client, context.Context, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if r.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
	}
	c, err := Dial(ctx, r.URL, r.Options...)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return c, ctx, cancel, nil
}

// Layout asks the provider for positions of nodes 0..n-1.
func (r Remote) Layout(ctx context.Context, n int, links []data.Link) ([]geom.Point, error) {
	if err := layout.ValidateLinks(n, links); err != nil {
		return nil, err
	}
	c, ctx, cancel, err := r.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer c.Close()
	return c.Layout(ctx, data.Indices(n), links)
}

// Load asks the provider for the dataset called name.
func (r Remote) Load(ctx context.Context, name string) ([]data.Record, error) {
	c, ctx, cancel, err := r.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer c.Close()
	return c.Records(ctx, name)
}

var (
	_ layout.Engine = Remote{}
	_ data.Source   = Remote{}
)
