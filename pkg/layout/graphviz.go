package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lassoview/pkg/cache"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
)

// Graphviz engine names accepted by [Graphviz].
var GraphvizEngines = []string{"neato", "fdp", "sfdp", "circo", "twopi"}

// Graphviz lays out the network with an embedded Graphviz engine.
type Graphviz struct {
	Engine string // "" means neato
}

func (g Graphviz) engine() string {
	if g.Engine == "" {
		return "neato"
	}
	return g.Engine
}

func (g Graphviz) Name() string { return "graphviz:" + g.engine() }

func (g Graphviz) CacheKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Engine: g.Name()}
}

// Layout renders the network through Graphviz and reads node positions back
// from the output.
func (g Graphviz) Layout(ctx context.Context, n int, links []data.Link) ([]geom.Point, error) {
	if err := ValidateLinks(n, links); err != nil {
		return nil, err
	}
	if !validEngine(g.engine()) {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown graphviz engine %q", g.engine())
	}
	if n == 0 {
		return []geom.Point{}, nil
	}
	return observe(ctx, g.Name(), n, func() ([]geom.Point, error) {
		out, err := g.render(ctx, ToDOT(n, links, g.engine()))
		if err != nil {
			return nil, err
		}
		pts, err := parsePositions(out, n)
		if err != nil {
			return nil, err
		}
		return Normalize(pts), nil
	})
}

func validEngine(name string) bool {
	for _, e := range GraphvizEngines {
		if e == name {
			return true
		}
	}
	return false
}

// ToDOT writes an undirected DOT graph with point-shaped nodes n0..n{n-1}.
func ToDOT(n int, links []data.Link, engine string) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", engine)
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=point, width=0.05];\n")
	buf.WriteString("\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "  n%d;\n", i)
	}
	buf.WriteString("\n")
	for _, l := range links {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", l.Source, l.Target)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func (g Graphviz) render(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", g.engine())
	}
	return buf.Bytes(), nil
}

var nodeRe = regexp.MustCompile(`<title>n(\d+)</title>\s*<ellipse[^>]*?\bcx="([^"]+)"[^>]*?\bcy="([^"]+)"`)

// parsePositions reads node centers from Graphviz SVG output. SVG y grows
// downward, so it is negated to keep Graphviz's orientation.
func parsePositions(svg []byte, n int) ([]geom.Point, error) {
	pts := make([]geom.Point, n)
	seen := make([]bool, n)
	for _, m := range nodeRe.FindAllSubmatch(svg, -1) {
		i, err := strconv.Atoi(string(m[1]))
		if err != nil || i < 0 || i >= n {
			continue
		}
		x, errX := strconv.ParseFloat(string(m[2]), 64)
		y, errY := strconv.ParseFloat(string(m[3]), 64)
		if errX != nil || errY != nil {
			return nil, errors.New(errors.ErrCodeInternal, "node n%d has unreadable position", i)
		}
		pts[i] = geom.Pt(x, -y)
		seen[i] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "graphviz output has no position for n%d", i)
		}
	}
	return pts, nil
}
