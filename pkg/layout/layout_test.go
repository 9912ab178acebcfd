package layout

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/lassoview/pkg/cache"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
)

func ring(n int) []data.Link {
	links := make([]data.Link, n)
	for i := range links {
		links[i] = data.Link{Source: i, Target: (i + 1) % n}
	}
	return links
}

func checkNormalized(t *testing.T, pts []geom.Point) {
	t.Helper()
	var lim float64
	for i, p := range pts {
		if !p.IsFinite() {
			t.Fatalf("point %d = %v is not finite", i, p)
		}
		lim = math.Max(lim, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if math.Abs(lim-1) > 1e-9 {
		t.Errorf("max magnitude = %v, want 1", lim)
	}
}

func TestValidateLinks(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		links []data.Link
		code  errors.Code
	}{
		{"ok", 3, ring(3), ""},
		{"self loop", 1, []data.Link{{0, 0}}, ""},
		{"source out of range", 3, []data.Link{{3, 0}}, errors.ErrCodeInvalidLink},
		{"negative target", 3, []data.Link{{0, -1}}, errors.ErrCodeInvalidLink},
		{"negative count", -1, nil, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLinks(tt.n, tt.links)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	pts := Normalize([]geom.Point{{X: 0, Y: 0}, {X: 4, Y: 2}})
	want := []geom.Point{{X: -1, Y: -0.5}, {X: 1, Y: 0.5}}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("pts[%d] = %v, want %v", i, pts[i], want[i])
		}
	}
	if got := Normalize(nil); len(got) != 0 {
		t.Errorf("Normalize(nil) = %v", got)
	}
	single := Normalize([]geom.Point{{X: 5, Y: 5}})
	if single[0] != (geom.Point{}) {
		t.Errorf("single point = %v, want origin", single[0])
	}
}

func TestSpring(t *testing.T) {
	ctx := context.Background()
	s := Spring{Seed: 42}

	pts, err := s.Layout(ctx, 10, ring(10))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(pts) != 10 {
		t.Fatalf("len = %d, want 10", len(pts))
	}
	checkNormalized(t, pts)

	again, _ := s.Layout(ctx, 10, ring(10))
	for i := range pts {
		if pts[i] != again[i] {
			t.Fatalf("same seed gave different layouts at %d: %v vs %v", i, pts[i], again[i])
		}
	}
}

func TestSpring_SmallGraphs(t *testing.T) {
	ctx := context.Background()
	for _, n := range []int{0, 1} {
		pts, err := Spring{}.Layout(ctx, n, nil)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(pts) != n {
			t.Fatalf("n=%d: len = %d", n, len(pts))
		}
	}
}

func TestSpring_Errors(t *testing.T) {
	if _, err := (Spring{}).Layout(context.Background(), 2, []data.Link{{0, 5}}); !errors.Is(err, errors.ErrCodeInvalidLink) {
		t.Errorf("err = %v, want INVALID_LINK", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Spring{}).Layout(ctx, 5, ring(5)); err == nil {
		t.Error("cancelled context should fail")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(3, []data.Link{{0, 1}, {1, 2}}, "fdp")
	for _, want := range []string{"graph G {", "layout=fdp;", "n2;", "n0 -- n1;", "n1 -- n2;"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestParsePositions(t *testing.T) {
	svg := `<g id="node1" class="node">
<title>n0</title>
<ellipse fill="black" stroke="black" cx="10" cy="-20" rx="1.8" ry="1.8"/>
</g>
<g id="node2" class="node">
<title>n1</title>
<ellipse fill="black" stroke="black" cx="30.5" cy="-40" rx="1.8" ry="1.8"/>
</g>`
	pts, err := parsePositions([]byte(svg), 2)
	if err != nil {
		t.Fatalf("parsePositions: %v", err)
	}
	if pts[0] != geom.Pt(10, 20) || pts[1] != geom.Pt(30.5, 40) {
		t.Errorf("pts = %v", pts)
	}
	if _, err := parsePositions([]byte(svg), 3); err == nil {
		t.Error("missing node should fail")
	}
}

func TestGraphviz(t *testing.T) {
	pts, err := Graphviz{}.Layout(context.Background(), 4, ring(4))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(pts) != 4 {
		t.Fatalf("len = %d, want 4", len(pts))
	}
	checkNormalized(t, pts)
}

func TestGraphviz_UnknownEngine(t *testing.T) {
	_, err := Graphviz{Engine: "dotty"}.Layout(context.Background(), 2, nil)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

type countingEngine struct {
	calls int
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Layout(_ context.Context, n int, _ []data.Link) ([]geom.Point, error) {
	e.calls++
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.Pt(float64(i), 0)
	}
	return pts, nil
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	eng := &countingEngine{}
	c := NewCached(eng, fc, nil, time.Hour, nil)

	first, err := c.Layout(ctx, 3, ring(3))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	second, err := c.Layout(ctx, 3, ring(3))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if eng.calls != 1 {
		t.Errorf("engine calls = %d, want 1", eng.calls)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("cached point %d = %v, want %v", i, second[i], first[i])
		}
	}

	if _, err := c.Layout(ctx, 3, []data.Link{{0, 1}}); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if eng.calls != 2 {
		t.Errorf("different links should miss; calls = %d", eng.calls)
	}
}

func TestCached_KeyDependsOnSeed(t *testing.T) {
	a := NewCached(Spring{Seed: 1}, nil, nil, 0, nil)
	b := NewCached(Spring{Seed: 2}, nil, nil, 0, nil)
	ka, _ := a.Key(3, ring(3))
	kb, _ := b.Key(3, ring(3))
	if ka == kb {
		t.Error("different seeds should give different keys")
	}
	if !strings.HasPrefix(ka, "layout:") {
		t.Errorf("key = %q, want layout: prefix", ka)
	}
}
