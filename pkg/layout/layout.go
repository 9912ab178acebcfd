// Package layout computes 2D positions for the nodes of a network.
//
// Nodes are record indices 0..n-1 and edges are [data.Link] values. Every
// [Engine] returns one position per node, centered on the origin and scaled
// so the largest coordinate magnitude is 1. The positions can be fed through
// [data.FromPoints] into a scatterplot view, giving the "network" surface of
// a linked pair.
//
// Engines:
//
//   - [Spring]: seeded force-directed layout in pure Go
//   - [Graphviz]: any Graphviz engine (neato, fdp, sfdp, circo, twopi)
//   - [Cached]: wraps another engine with a [cache.Cache]
package layout

import (
	"context"
	"math"
	"time"

	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/observability"
)

// Engine lays out a network of n nodes.
type Engine interface {
	Name() string
	Layout(ctx context.Context, n int, links []data.Link) ([]geom.Point, error)
}

// ValidateLinks rejects links whose endpoints fall outside [0, n).
func ValidateLinks(n int, links []data.Link) error {
	if n < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "node count %d is negative", n)
	}
	for i, l := range links {
		if l.Source < 0 || l.Source >= n || l.Target < 0 || l.Target >= n {
			return errors.New(errors.ErrCodeInvalidLink, "link %d %v out of range for %d nodes", i, l, n)
		}
	}
	return nil
}

// Normalize centers pts on the origin and scales them so the largest
// coordinate magnitude is 1. It modifies pts in place and returns it.
func Normalize(pts []geom.Point) []geom.Point {
	if len(pts) == 0 {
		return pts
	}
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))

	var lim float64
	for i := range pts {
		pts[i].X -= cx
		pts[i].Y -= cy
		lim = math.Max(lim, math.Max(math.Abs(pts[i].X), math.Abs(pts[i].Y)))
	}
	if lim > 0 {
		for i := range pts {
			pts[i].X /= lim
			pts[i].Y /= lim
		}
	}
	return pts
}

// observe reports a layout run to the observability hooks.
func observe(ctx context.Context, engine string, n int, fn func() ([]geom.Point, error)) ([]geom.Point, error) {
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, engine, n)
	start := time.Now()
	pts, err := fn()
	hooks.OnLayoutComplete(ctx, engine, time.Since(start), err)
	return pts, err
}
