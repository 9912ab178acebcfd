package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lassoview/internal/scene"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/render"
	"github.com/matzehuels/lassoview/pkg/selection"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	view     viewFlags
	output   string // output directory
	selectOn string // surface the --select polygon is drawn on
	polygon  string // lasso polygon in data coordinates
}

// renderCommand writes both views as SVG files. With --select a lasso is
// replayed on one view first, so the files show the linked selection.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the linked views to SVG files",
		Example: `  lassoview render -o out
  lassoview render --select "10,50 20,50 20,150 10,150"
  lassoview render --engine neato --select-on network --select="-1,-1 0,-1 0,0 -1,0"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, &opts.view)
			if err != nil {
				return err
			}
			var poly geom.Polygon
			if opts.polygon != "" {
				if poly, err = parsePolygon(opts.polygon); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			sc, closeCache, err := c.buildScene(ctx, cfg, opts.view.noCache)
			if err != nil {
				return err
			}
			defer closeCache()
			return runRender(ctx, sc, poly, cfg.SelectionPalette(), &opts)
		},
	}

	opts.view.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.polygon, "select", "", `lasso polygon as "x,y x,y x,y ..." in data coordinates`)
	cmd.Flags().StringVar(&opts.selectOn, "select-on", scene.ScatterID, "view the polygon is drawn on: scatterplot, network")

	return cmd
}

func runRender(ctx context.Context, sc *scene.Scene, poly geom.Polygon, palette selection.Palette, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	views := []*render.View{sc.Scatter}

	if sc.NetworkEnabled() {
		prog := newProgress(logger)
		spinner := newSpinnerWithContext(ctx, "Laying out network...")
		spinner.Start()
		net, err := sc.Wait(ctx)
		spinner.Stop()
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			printWarning("Network view unavailable: %s", errors.UserMessage(err))
		default:
			prog.done(fmt.Sprintf("Laid out %d nodes", net.Len()))
			views = append(views, net)
		}
	}

	selected := -1
	if poly != nil {
		n, err := applySelection(views, poly, opts.selectOn, palette)
		if err != nil {
			return err
		}
		selected = n
	}

	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", opts.output)
	}
	printSuccess("Rendered %d views", len(views))
	for _, v := range views {
		path := filepath.Join(opts.output, v.ID()+".svg")
		if err := os.WriteFile(path, v.SVG(), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		printFile(path)
	}
	printStats(len(sc.Records), len(sc.Links), selected)
	return nil
}

// applySelection replays poly as a lasso on the surface named on and
// returns how many records it enclosed.
func applySelection(views []*render.View, poly geom.Polygon, on string, palette selection.Palette) (int, error) {
	var source *render.View
	for _, v := range views {
		if v.ID() == on {
			source = v
		}
	}
	if source == nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "--select-on %q: no such view", on)
	}

	// Every vertex is kept, so no minimum distance applies.
	group, err := scene.Link(palette, 0, nil, views...)
	if err != nil {
		return 0, err
	}
	if err := scene.Trace(group, on, source.ProjectPolygon(poly)); err != nil {
		return 0, err
	}
	ctrl, _ := group.Controller(on)
	return ctrl.Selected().Count(), nil
}

// parsePolygon reads "x,y x,y ..." (spaces or semicolons between vertices).
func parsePolygon(s string) (geom.Polygon, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ';' || r == '\t' })
	poly := make(geom.Polygon, 0, len(fields))
	for _, f := range fields {
		xy := strings.Split(f, ",")
		if len(xy) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "vertex %q: want x,y", f)
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if errX != nil || errY != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "vertex %q: not a number", f)
		}
		poly = append(poly, geom.Pt(x, y))
	}
	if len(poly) < 3 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "selection polygon needs at least 3 vertices, got %d", len(poly))
	}
	return poly, nil
}
