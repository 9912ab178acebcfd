package lasso

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lassoview/pkg/geom"
)

// DefaultMinDistance is the minimum pointer travel, in surface units, before a
// new path point is recorded.
const DefaultMinDistance = 3.0

// Surface is the drawable area a controller listens on.
type Surface interface {
	ID() string
	Bounds() geom.Rect
}

// Lasso is a configured controller factory. It is safe to attach one Lasso
// to many surfaces.
type Lasso struct {
	minDist float64
	logger  *log.Logger
}

// Option configures a [Lasso].
type Option func(*Lasso)

// WithMinDistance sets the minimum distance between recorded path points.
// Negative values are treated as zero.
func WithMinDistance(d float64) Option {
	return func(l *Lasso) {
		if d < 0 {
			d = 0
		}
		l.minDist = d
	}
}

// WithLogger sets the logger used for gesture debug output.
func WithLogger(logger *log.Logger) Option {
	return func(l *Lasso) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Lasso.
func New(opts ...Option) *Lasso {
	l := &Lasso{
		minDist: DefaultMinDistance,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MinDistance returns the configured minimum point distance.
func (l *Lasso) MinDistance() float64 { return l.minDist }

// Attach binds the lasso to a surface and its marker centers. The markers
// are copied; index i of every mask refers to markers[i].
func (l *Lasso) Attach(s Surface, markers []geom.Point) *Controller {
	return &Controller{
		surface: s,
		markers: append([]geom.Point(nil), markers...),
		minDist: l.minDist,
		logger:  l.logger.With("surface", s.ID()),
		mask:    make(Mask, len(markers)),
	}
}
