package layout

import (
	"context"
	"math"
	"math/rand"

	"github.com/matzehuels/lassoview/pkg/cache"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/geom"
)

// DefaultIterations is the number of force simulation steps.
const DefaultIterations = 50

// Spring is a Fruchterman-Reingold force-directed layout. Linked nodes
// attract, all node pairs repel, and the step size cools linearly. The same
// seed always gives the same layout.
type Spring struct {
	Seed       int64
	Iterations int // 0 means DefaultIterations
}

func (s Spring) Name() string { return "spring" }

// CacheKeyOpts identifies the settings that change the result.
func (s Spring) CacheKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Engine: s.Name(), Seed: s.Seed, Iterations: s.iterations()}
}

func (s Spring) iterations() int {
	if s.Iterations <= 0 {
		return DefaultIterations
	}
	return s.Iterations
}

// Layout runs the simulation. It checks ctx between iterations.
func (s Spring) Layout(ctx context.Context, n int, links []data.Link) ([]geom.Point, error) {
	if err := ValidateLinks(n, links); err != nil {
		return nil, err
	}
	return observe(ctx, s.Name(), n, func() ([]geom.Point, error) {
		return s.run(ctx, n, links)
	})
}

func (s Spring) run(ctx context.Context, n int, links []data.Link) ([]geom.Point, error) {
	pos := make([]geom.Point, n)
	if n == 0 {
		return pos, nil
	}
	if n == 1 {
		return pos, nil
	}

	rng := rand.New(rand.NewSource(s.Seed))
	for i := range pos {
		pos[i] = geom.Pt(rng.Float64(), rng.Float64())
	}

	adj := make([]map[int]bool, n)
	for i := range adj {
		adj[i] = make(map[int]bool)
	}
	for _, l := range links {
		if l.Source != l.Target {
			adj[l.Source][l.Target] = true
			adj[l.Target][l.Source] = true
		}
	}

	k := math.Sqrt(1 / float64(n))
	span := geom.Polygon(pos).Bounds()
	t := math.Max(span.Dx(), span.Dy()) * 0.1
	iters := s.iterations()
	dt := t / float64(iters+1)

	disp := make([]geom.Point, n)
	for it := 0; it < iters; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range disp {
			disp[i] = geom.Point{}
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				dx, dy := pos[i].X-pos[j].X, pos[i].Y-pos[j].Y
				d := math.Max(math.Hypot(dx, dy), 0.01)
				f := k * k / (d * d)
				if adj[i][j] {
					f -= d / k
				}
				disp[i].X += dx * f
				disp[i].Y += dy * f
			}
		}
		for i := range pos {
			l := math.Max(math.Hypot(disp[i].X, disp[i].Y), 0.01)
			pos[i].X += disp[i].X * t / l
			pos[i].Y += disp[i].Y * t / l
		}
		t -= dt
	}
	return Normalize(pos), nil
}
