// Package scene assembles the linked scatterplot and network views that the
// serve, render and tui commands share.
package scene

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/layout"
	"github.com/matzehuels/lassoview/pkg/render"
	"github.com/matzehuels/lassoview/pkg/selection"
)

// Surface ids, also used as SVG ids.
const (
	ScatterID = "scatterplot"
	NetworkID = "network"
)

// Options describes both views.
type Options struct {
	Scatter []render.Option // applied after the id and reset fill
	Palette selection.Palette

	// Network is laid out by Engine. A nil Engine disables the network view.
	Engine         layout.Engine
	Links          int
	Seed           int64
	Timeout        time.Duration
	NetworkOptions []render.Option

	Logger *log.Logger
}

func (o *Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Logger
}

// Scatter renders the primary view.
func Scatter(records []data.Record, opts Options) (*render.View, error) {
	base := []render.Option{
		render.WithID(ScatterID),
		render.WithFill(render.Constant(opts.Palette.Reset)),
	}
	return render.New(records, append(base, opts.Scatter...)...)
}

// Network lays out n nodes and renders them without axes.
func Network(ctx context.Context, n int, links []data.Link, opts Options) (*render.View, error) {
	if opts.Engine == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no layout engine configured")
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	start := time.Now()
	pts, err := opts.Engine.Layout(ctx, n, links)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded && !errors.Is(err, errors.ErrCodeTimeout) {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "layout %s", opts.Engine.Name())
		}
		return nil, err
	}
	if len(pts) != n {
		return nil, errors.New(errors.ErrCodeProviderMalformed, "layout %s returned %d positions for %d nodes", opts.Engine.Name(), len(pts), n)
	}
	opts.logger().Debug("network laid out", "engine", opts.Engine.Name(), "nodes", n, "links", len(links),
		"duration", time.Since(start).Round(time.Millisecond))

	base := []render.Option{
		render.WithID(NetworkID),
		render.WithX(data.Field("x")),
		render.WithY(data.Field("y")),
		render.WithLinks(links),
		render.WithAxes(false, false),
		render.WithFill(render.Constant(opts.Palette.Reset)),
	}
	return render.New(data.FromPoints(pts), append(base, opts.NetworkOptions...)...)
}

// Scene is one dataset rendered as a scatterplot and, when enabled, a
// network whose layout is computed in the background.
type Scene struct {
	Records []data.Record
	Scatter *render.View
	Links   []data.Link

	ready   chan struct{}
	once    sync.Once
	network *render.View
	err     error
	enabled bool
}

// Build renders the scatterplot and starts the network layout. Build
// returns as soon as the scatterplot exists; the scatterplot stays usable
// when the layout fails.
func Build(ctx context.Context, records []data.Record, opts Options) (*Scene, error) {
	scatter, err := Scatter(records, opts)
	if err != nil {
		return nil, err
	}
	s := &Scene{
		Records: records,
		Scatter: scatter,
		ready:   make(chan struct{}),
		enabled: opts.Engine != nil,
	}
	if !s.enabled {
		s.finish(nil, nil)
		return s, nil
	}
	s.Links = data.RandomLinks(len(records), opts.Links, opts.Seed)
	go func() {
		v, err := Network(ctx, len(records), s.Links, opts)
		if err != nil {
			opts.logger().Warn("network view unavailable", "code", errors.GetCode(err), "err", err)
		}
		s.finish(v, err)
	}()
	return s, nil
}

func (s *Scene) finish(v *render.View, err error) {
	s.once.Do(func() {
		s.network, s.err = v, err
		close(s.ready)
	})
}

// NetworkEnabled reports whether a network view was requested.
func (s *Scene) NetworkEnabled() bool { return s.enabled }

// Ready is closed once the network layout has finished or failed.
func (s *Scene) Ready() <-chan struct{} { return s.ready }

// Network returns the network view without waiting. ok is false while the
// layout is still running.
func (s *Scene) Network() (v *render.View, ok bool, err error) {
	select {
	case <-s.ready:
		return s.network, true, s.err
	default:
		return nil, false, nil
	}
}

// Wait blocks until the network layout finishes or ctx is done.
func (s *Scene) Wait(ctx context.Context) (*render.View, error) {
	select {
	case <-s.ready:
		return s.network, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
