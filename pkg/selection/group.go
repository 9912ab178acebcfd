package selection

import (
	"sync"

	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/lasso"
)

// Linkable is a view that can also host a lasso.
type Linkable interface {
	View
	lasso.Surface
	Points() []geom.Point
}

// Group links views that share one record sequence: a gesture on any
// member recolors all of them.
type Group struct {
	lasso *lasso.Lasso
	coord *Coordinator

	// dispatch serializes events, so a gesture's end and the recolor it
	// triggers finish before the next event is handled.
	dispatch sync.Mutex

	mu    sync.Mutex
	order []string
	ctrls map[string]*lasso.Controller
	size  int
}

// NewGroup creates an empty group.
func NewGroup(l *lasso.Lasso, c *Coordinator) *Group {
	return &Group{lasso: l, coord: c, ctrls: make(map[string]*lasso.Controller), size: -1}
}

// Coordinator returns the group's coordinator.
func (g *Group) Coordinator() *Coordinator { return g.coord }

// Add attaches a lasso controller to v and registers v with the
// coordinator. Every member must have the same number of markers.
func (g *Group) Add(v Linkable) (*lasso.Controller, error) {
	points := v.Points()

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, dup := g.ctrls[v.ID()]; dup {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "view %q already linked", v.ID())
	}
	if g.size >= 0 && len(points) != g.size {
		return nil, errors.New(errors.ErrCodeArrayLength,
			"view %q has %d markers, linked views have %d", v.ID(), len(points), g.size)
	}
	ctrl := g.lasso.Attach(v, points)
	g.coord.Attach(ctrl, v)
	g.ctrls[v.ID()] = ctrl
	g.order = append(g.order, v.ID())
	g.size = len(points)
	return ctrl, nil
}

// IDs returns member surface ids in the order they were added.
func (g *Group) IDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.order...)
}

// Controller returns the controller attached to surface id.
func (g *Group) Controller(id string) (*lasso.Controller, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.ctrls[id]
	return c, ok
}

// Dispatch routes a pointer event to the controller of surface id. A press
// cancels gestures in progress on every other member, so at most one
// surface draws at a time. An event for an unknown surface means the
// pointer is no longer on any member: all gestures are cancelled and a
// NOT_FOUND error is returned.
//
// Dispatch is safe for concurrent use; events are handled one at a time,
// including any coordinator callbacks they trigger. Those callbacks must not
// call Dispatch or CancelAll.
func (g *Group) Dispatch(id string, ev lasso.Event) error {
	g.dispatch.Lock()
	defer g.dispatch.Unlock()

	g.mu.Lock()
	target, ok := g.ctrls[id]
	var others []*lasso.Controller
	if !ok || ev.Kind == lasso.EventPress {
		for oid, c := range g.ctrls {
			if oid != id {
				others = append(others, c)
			}
		}
	}
	g.mu.Unlock()

	for _, c := range others {
		c.Cancel()
	}
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no linked surface %q", id)
	}
	target.Handle(ev)
	return nil
}

// CancelAll abandons every gesture in progress.
func (g *Group) CancelAll() {
	g.dispatch.Lock()
	defer g.dispatch.Unlock()

	g.mu.Lock()
	ctrls := make([]*lasso.Controller, 0, len(g.ctrls))
	for _, c := range g.ctrls {
		ctrls = append(ctrls, c)
	}
	g.mu.Unlock()
	for _, c := range ctrls {
		c.Cancel()
	}
}
