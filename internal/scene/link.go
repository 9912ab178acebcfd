package scene

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/lasso"
	"github.com/matzehuels/lassoview/pkg/render"
	"github.com/matzehuels/lassoview/pkg/selection"
)

// Link puts views into one selection group. Nil views are skipped.
func Link(palette selection.Palette, minDistance float64, logger *log.Logger, views ...*render.View) (*selection.Group, error) {
	coord := selection.NewCoordinator(selection.WithPalette(palette), selection.WithLogger(logger))
	group := selection.NewGroup(lasso.New(lasso.WithMinDistance(minDistance), lasso.WithLogger(logger)), coord)
	for _, v := range views {
		if v == nil {
			continue
		}
		if _, err := group.Add(v); err != nil {
			return nil, err
		}
	}
	return group, nil
}

// Trace replays path as one gesture on surface id: a press at the first
// point, moves through the rest and a release at the last point.
func Trace(g *selection.Group, id string, path []geom.Point) error {
	if len(path) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "empty lasso path")
	}
	if err := g.Dispatch(id, lasso.Event{Kind: lasso.EventPress, Point: path[0]}); err != nil {
		return err
	}
	for _, p := range path[1:] {
		if err := g.Dispatch(id, lasso.Event{Kind: lasso.EventMove, Point: p}); err != nil {
			return err
		}
	}
	return g.Dispatch(id, lasso.Event{Kind: lasso.EventRelease, Point: path[len(path)-1]})
}
