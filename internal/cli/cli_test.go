package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lassoview/internal/config"
	"github.com/matzehuels/lassoview/internal/scene"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/layout"
	"github.com/matzehuels/lassoview/pkg/render"
	"github.com/matzehuels/lassoview/pkg/selection"
)

func diagonal(n int) []data.Record {
	out := make([]data.Record, n)
	for i := range out {
		out[i] = data.Record{"x": float64(i + 1), "y": float64(i + 1)}
	}
	return out
}

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	sc, err := scene.Build(context.Background(), diagonal(5), scene.Options{
		Scatter: []render.Option{render.WithX(data.Field("x")), render.WithY(data.Field("y"))},
		Palette: selection.DefaultPalette,
		Engine:  layout.Spring{Seed: 1},
		Links:   4,
		Seed:    1,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return sc
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line at info level: %q", buf.String())
	}

	ctx := withLogger(context.Background(), logger)
	if loggerFromContext(ctx) != logger {
		t.Error("loggerFromContext should return the attached logger")
	}
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should fall back to the default logger")
	}

	newProgress(logger).done("Laid out 5 nodes")
	if !strings.Contains(buf.String(), "Laid out 5 nodes (") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestParsePolygon(t *testing.T) {
	tests := []struct {
		in   string
		want geom.Polygon
		err  bool
	}{
		{"0,0 1,0 1,1", geom.Polygon{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(1, 1)}, false},
		{"0,0;2.5,0; 2.5,-1", geom.Polygon{geom.Pt(0, 0), geom.Pt(2.5, 0), geom.Pt(2.5, -1)}, false},
		{"0,0 1,1", nil, true},
		{"0,0 1 1,1", nil, true},
		{"0,0 a,1 1,1", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePolygon(tt.in)
			if tt.err {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("err = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePolygon: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("vertex %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestViewFlags_Apply(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg config.Config)
	}{
		{
			name: "unset flags keep the file values",
			args: nil,
			check: func(t *testing.T, cfg config.Config) {
				if cfg.Scatter.X != "wt" || cfg.Network.Links != 7 {
					t.Errorf("cfg = %+v", cfg.Scatter)
				}
			},
		},
		{
			name: "x sets the label too",
			args: []string{"-x", "qsec"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.Scatter.X != "qsec" || cfg.Scatter.XLabel != "qsec" {
					t.Errorf("x = %s, label = %s", cfg.Scatter.X, cfg.Scatter.XLabel)
				}
			},
		},
		{
			name: "provider implies the provider engine",
			args: []string{"--provider", "ws://localhost:9000/"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.Network.Engine != config.EngineProvider {
					t.Errorf("engine = %s", cfg.Network.Engine)
				}
			},
		},
		{
			name: "explicit engine wins over provider",
			args: []string{"--provider", "ws://localhost:9000/", "--engine", "neato"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.Network.Engine != "neato" || cfg.Network.ProviderURL == "" {
					t.Errorf("network = %+v", cfg.Network)
				}
			},
		},
		{
			name: "no-network disables the network view",
			args: []string{"--no-network", "--links", "3"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.Network.Enabled || cfg.Network.Links != 3 {
					t.Errorf("network = %+v", cfg.Network)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vf viewFlags
			cmd := &cobra.Command{Use: "test"}
			vf.register(cmd)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			cfg := config.Default()
			cfg.Scatter.X = "wt"
			cfg.Network.Links = 7
			vf.apply(cmd, &cfg)
			tt.check(t, cfg)
		})
	}
}

func TestDatasetName(t *testing.T) {
	if got := datasetName("examples/data/mtcars.csv", true); got != "mtcars" {
		t.Errorf("trimmed = %q", got)
	}
	if got := datasetName("examples/data/mtcars.csv", false); got != "mtcars.csv" {
		t.Errorf("untrimmed = %q", got)
	}
}

func TestApplySelection(t *testing.T) {
	sc := testScene(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	net, err := sc.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	views := []*render.View{sc.Scatter, net}
	square := geom.Polygon{geom.Pt(0.5, 0.5), geom.Pt(2.5, 0.5), geom.Pt(2.5, 2.5), geom.Pt(0.5, 2.5)}

	n, err := applySelection(views, square, scene.ScatterID, selection.DefaultPalette)
	if err != nil {
		t.Fatalf("applySelection: %v", err)
	}
	if n != 2 {
		t.Errorf("selected = %d, want 2", n)
	}
	if got := net.Fills()[0]; got != selection.DefaultPalette.Highlight {
		t.Errorf("network fill[0] = %s, want highlight", got)
	}

	if _, err := applySelection(views, square, "histogram", selection.DefaultPalette); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown view: err = %v", err)
	}
}

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	sc := testScene(t)
	opts := &renderOpts{output: dir, selectOn: scene.ScatterID}
	poly := geom.Polygon{geom.Pt(0.5, 0.5), geom.Pt(2.5, 0.5), geom.Pt(2.5, 2.5), geom.Pt(0.5, 2.5)}

	if err := runRender(context.Background(), sc, poly, selection.DefaultPalette, opts); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	for _, id := range []string{scene.ScatterID, scene.NetworkID} {
		b, err := os.ReadFile(filepath.Join(dir, id+".svg"))
		if err != nil {
			t.Fatalf("read %s: %v", id, err)
		}
		if !bytes.Contains(b, []byte(`fill="`+string(selection.DefaultPalette.Dim)+`"`)) {
			t.Errorf("%s.svg has no dimmed marker", id)
		}
	}
}

func TestStatsLine(t *testing.T) {
	tests := []struct {
		records, links, selected int
		want                     []string
		absent                   string
	}{
		{32, 50, -1, []string{"32 records", "50 links"}, "selected"},
		{32, 0, 4, []string{"32 records", "4 selected"}, "links"},
	}
	for _, tt := range tests {
		got := statsLine(tt.records, tt.links, tt.selected)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("statsLine = %q, missing %q", got, w)
			}
		}
		if strings.Contains(got, tt.absent) {
			t.Errorf("statsLine = %q, should not mention %q", got, tt.absent)
		}
	}
}

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"render", "serve", "tui", "provider", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %s missing", name)
		}
	}
}
