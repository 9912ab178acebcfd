package lasso

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/observability"
)

// State is the gesture state of a [Controller].
type State uint8

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// EventKind identifies a pointer event.
type EventKind uint8

const (
	EventPress EventKind = iota + 1
	EventMove
	EventRelease
	// EventLeave is sent when the pointer leaves the surface.
	EventLeave
	EventCancel
)

// Event is a pointer event in surface coordinates. Leave and Cancel ignore
// the point.
type Event struct {
	Kind  EventKind
	Point geom.Point
}

// Controller tracks one lasso gesture at a time on one surface.
type Controller struct {
	surface Surface
	markers []geom.Point
	minDist float64
	logger  *log.Logger

	mu      sync.Mutex
	state   State
	path    geom.Polygon
	bbox    geom.Rect
	started time.Time
	mask    Mask
	onEnd   func(*Controller)
}

// Surface returns the surface the controller is attached to.
func (c *Controller) Surface() Surface { return c.surface }

// OnSurface reports whether p lies within the surface bounds, edges
// included. Interactive callers turn a release outside the surface into a
// leave; replayed paths may extend beyond it.
func (c *Controller) OnSurface(p geom.Point) bool {
	return c.surface.Bounds().Contains(p)
}

// Len returns the number of markers the controller tests.
func (c *Controller) Len() int { return len(c.markers) }

// OnEnd registers the single callback fired after every released gesture.
// A later call replaces the earlier callback; nil removes it. The callback
// runs on the goroutine that delivered the release.
func (c *Controller) OnEnd(fn func(*Controller)) {
	c.mu.Lock()
	c.onEnd = fn
	c.mu.Unlock()
}

// Handle dispatches a pointer event.
func (c *Controller) Handle(ev Event) {
	switch ev.Kind {
	case EventPress:
		c.Press(ev.Point)
	case EventMove:
		c.Move(ev.Point)
	case EventRelease:
		c.Release(ev.Point)
	case EventLeave, EventCancel:
		c.Cancel()
	}
}

// Press starts a new gesture at p, discarding any gesture in progress.
func (c *Controller) Press(p geom.Point) {
	if !p.IsFinite() {
		return
	}
	c.mu.Lock()
	c.state = Drawing
	c.path = geom.Polygon{p}
	c.bbox = geom.Rect{}.Expand(p)
	c.started = time.Now()
	c.mu.Unlock()

	c.logger.Debug("lasso start", "x", p.X, "y", p.Y)
	observability.Lasso().OnGestureStart(c.surface.ID())
}

// Move extends the path while drawing.
func (c *Controller) Move(p geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Drawing {
		c.extend(p)
	}
}

// Release ends the gesture, computes the mask and fires the end callback.
// It is ignored when no gesture is in progress.
func (c *Controller) Release(p geom.Point) {
	c.mu.Lock()
	if c.state != Drawing {
		c.mu.Unlock()
		return
	}
	c.extend(p)
	path := c.path
	mask := c.hitTest(path, c.bbox)
	c.mask = mask
	c.state = Idle
	c.path = nil
	elapsed := time.Since(c.started)
	onEnd := c.onEnd
	c.mu.Unlock()

	selected := mask.Count()
	if len(path) >= 3 {
		c.logger.Debug("lasso end", "points", len(path), "selected", selected, "area", path.Area(), "wkt", path.WKT())
	} else {
		c.logger.Debug("lasso end", "points", len(path), "selected", selected)
	}
	observability.Lasso().OnGestureEnd(c.surface.ID(), len(path), selected, elapsed)

	if onEnd != nil {
		onEnd(c)
	}
}

// Cancel abandons a gesture in progress without computing a mask or firing
// the end callback. The previous mask is kept.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state != Drawing {
		c.mu.Unlock()
		return
	}
	c.state = Idle
	c.path = nil
	c.mu.Unlock()

	c.logger.Debug("lasso cancel")
	observability.Lasso().OnGestureCancel(c.surface.ID())
}

// State returns the current gesture state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Path returns the points recorded for the gesture in progress.
func (c *Controller) Path() geom.Polygon {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path.Clone()
}

// Selected returns the mask of the last released gesture. Before the first
// release every entry is false.
func (c *Controller) Selected() Mask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mask.Clone()
}

// Preview hit-tests the path drawn so far, closed implicitly, without ending
// the gesture. When idle it returns [Controller.Selected].
func (c *Controller) Preview() Mask {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drawing {
		return c.mask.Clone()
	}
	return c.hitTest(c.path, c.bbox)
}

// extend appends p if it is far enough from the last recorded point.
// Callers hold c.mu.
func (c *Controller) extend(p geom.Point) {
	if !p.IsFinite() {
		return
	}
	if last := c.path[len(c.path)-1]; last.Dist(p) < c.minDist {
		return
	}
	c.path = append(c.path, p)
	c.bbox = c.bbox.Expand(p)
}

func (c *Controller) hitTest(path geom.Polygon, bbox geom.Rect) Mask {
	mask := make(Mask, len(c.markers))
	if len(path) < 3 {
		return mask
	}
	for i, m := range c.markers {
		mask[i] = bbox.Contains(m) && path.Contains(m)
	}
	return mask
}
