// Package selection links lasso gestures to view recoloring.
//
// A [Coordinator] listens for completed gestures and turns the selection
// mask into one color assignment that every attached view receives. A
// [Group] is the registry that wires views, controllers and a coordinator
// together and routes pointer events by surface id.
package selection

import (
	stderrors "errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/lasso"
	"github.com/matzehuels/lassoview/pkg/render"
)

// Palette holds the colors used to express a selection.
type Palette struct {
	Highlight render.Color // selected markers
	Dim       render.Color // unselected markers while a selection exists
	Reset     render.Color // every marker when nothing is selected
}

// DefaultPalette highlights selected records in red and dims the rest in gray.
var DefaultPalette = Palette{Highlight: "#aa0000", Dim: "#aaaaaa", Reset: "#aa0000"}

// Validate checks every palette color.
func (p Palette) Validate() error {
	for _, c := range []render.Color{p.Highlight, p.Dim, p.Reset} {
		if err := c.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "palette")
		}
	}
	return nil
}

// View is the part of a rendered view the coordinator needs.
type View interface {
	ID() string
	Update(render.ColorAssignment) error
}

// Result describes one broadcast.
type Result struct {
	Source     string // surface id of the gesture, empty for programmatic resets
	Mask       lasso.Mask
	Assignment render.ColorAssignment
	Err        error // joined view update errors
}

// Assignment converts a mask into a color assignment. An all-false (or
// empty) mask yields Constant(Reset); otherwise index i gets Highlight when
// selected and Dim when not.
func Assignment(mask lasso.Mask, p Palette) render.ColorAssignment {
	if !mask.Any() {
		return render.Constant(p.Reset)
	}
	colors := make([]render.Color, len(mask))
	for i, sel := range mask {
		if sel {
			colors[i] = p.Highlight
		} else {
			colors[i] = p.Dim
		}
	}
	return render.Array(colors)
}

// Coordinator broadcasts selection results to a fixed set of views.
type Coordinator struct {
	palette Palette
	logger  *log.Logger

	mu    sync.RWMutex
	views []View
	subs  []func(Result)
}

// Option configures a [Coordinator].
type Option func(*Coordinator)

func WithPalette(p Palette) Option { return func(c *Coordinator) { c.palette = p } }

func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCoordinator creates a coordinator with no views.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		palette: DefaultPalette,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Palette returns the configured palette.
func (c *Coordinator) Palette() Palette { return c.palette }

// AddView registers a view. A view whose id is already registered is ignored.
func (c *Coordinator) AddView(v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.views {
		if existing.ID() == v.ID() {
			return
		}
	}
	c.views = append(c.views, v)
}

// Views returns the registered views in registration order.
func (c *Coordinator) Views() []View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]View(nil), c.views...)
}

// Attach makes the coordinator the end callback of ctrl and registers views.
func (c *Coordinator) Attach(ctrl *lasso.Controller, views ...View) {
	for _, v := range views {
		c.AddView(v)
	}
	ctrl.OnEnd(func(ctrl *lasso.Controller) {
		// Errors are already logged and reported to subscribers.
		_, _ = c.Apply(ctrl.Surface().ID(), ctrl.Selected())
	})
}

// OnApplied subscribes fn to every broadcast.
func (c *Coordinator) OnApplied(fn func(Result)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Apply builds one assignment from mask and passes it to every view. A
// failing view does not stop the others; all failures are joined.
func (c *Coordinator) Apply(source string, mask lasso.Mask) (Result, error) {
	c.mu.RLock()
	views := append([]View(nil), c.views...)
	subs := append(([]func(Result))(nil), c.subs...)
	c.mu.RUnlock()

	res := Result{Source: source, Mask: mask.Clone(), Assignment: Assignment(mask, c.palette)}
	var errs []error
	for _, v := range views {
		if err := v.Update(res.Assignment); err != nil {
			c.logger.Warn("view update failed", "view", v.ID(), "err", err)
			errs = append(errs, errors.Wrap(errors.GetCode(err), err, "update %s", v.ID()))
		}
	}
	res.Err = stderrors.Join(errs...)

	c.logger.Debug("selection applied", "source", source, "selected", mask.Count(), "views", len(views))
	for _, fn := range subs {
		fn(res)
	}
	return res, res.Err
}

// Reset broadcasts the reset color to every view.
func (c *Coordinator) Reset() error {
	_, err := c.Apply("", nil)
	return err
}
