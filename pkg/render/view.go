package render

import (
	"math"
	"sync"

	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
)

// Marker is one drawn record.
type Marker struct {
	Index  int
	Center geom.Point
	Radius float64
	Fill   Color
}

// View is the handle returned by [New]. Marker geometry is fixed at
// construction; only fills change, through [View.Update]. A View is safe for
// concurrent use.
type View struct {
	cfg     config
	records []data.Record
	xScale  Scale
	yScale  Scale
	centers []geom.Point
	radii   []float64

	mu    sync.RWMutex
	fills []Color
}

// New renders records as markers on a fresh surface. Records are positional:
// marker i, fill i and link endpoint i all refer to records[i].
func New(records []data.Record, opts ...Option) (*View, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.height == 0 {
		cfg.height = cfg.width
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	xs, err := data.Map(records, cfg.x)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAccessor, err, "x accessor")
	}
	ys, err := data.Map(records, cfg.y)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAccessor, err, "y accessor")
	}
	for _, l := range cfg.links {
		if l.Source < 0 || l.Source >= len(records) || l.Target < 0 || l.Target >= len(records) {
			return nil, errors.New(errors.ErrCodeInvalidLink,
				"link %v out of range for %d records", l, len(records))
		}
	}

	m := cfg.margins
	xScale, err := cfg.xScale(
		pick(cfg.xDomain, extent(xs)),
		pick(cfg.xRange, [2]float64{m.Left, cfg.width - m.Right}))
	if err != nil {
		return nil, err
	}
	yScale, err := cfg.yScale(
		pick(cfg.yDomain, extent(ys)),
		pick(cfg.yRange, [2]float64{cfg.height - m.Bottom, m.Top}))
	if err != nil {
		return nil, err
	}

	radii, err := cfg.radius.Resolve(records)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "radius")
	}
	for i, r := range radii {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"radius %v for record %d", r, i)
		}
	}
	fills, err := cfg.fill.Resolve(records)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "fill")
	}
	if err := validateColors(fills); err != nil {
		return nil, err
	}

	centers := make([]geom.Point, len(records))
	for i := range records {
		centers[i] = geom.Pt(xScale.Map(xs[i]), yScale.Map(ys[i]))
		if !centers[i].IsFinite() {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"record %d (%v, %v) has no position on the configured scales", i, xs[i], ys[i])
		}
	}

	return &View{
		cfg:     cfg,
		records: records,
		xScale:  xScale,
		yScale:  yScale,
		centers: centers,
		radii:   radii,
		fills:   fills,
	}, nil
}

func (c *config) validate() error {
	if err := errors.ValidateSurfaceID(c.id); err != nil {
		return err
	}
	if c.x == nil || c.y == nil {
		return errors.New(errors.ErrCodeInvalidAccessor, "x and y accessors are required")
	}
	if c.xScale == nil || c.yScale == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "scale constructors are required")
	}
	if !(c.width > 0) || !(c.height > 0) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"surface size %vx%v must be positive", c.width, c.height)
	}
	m := c.margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margins must not be negative")
	}
	if err := c.stroke.Validate(); err != nil {
		return err
	}
	if len(c.links) > 0 {
		if err := c.linkStroke.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func pick(override *[2]float64, auto [2]float64) [2]float64 {
	if override != nil {
		return *override
	}
	return auto
}

// ID is the surface identifier, used as the SVG element id.
func (v *View) ID() string { return v.cfg.id }

// Len is the number of markers.
func (v *View) Len() int { return len(v.centers) }

// Bounds is the surface rectangle in surface coordinates.
func (v *View) Bounds() geom.Rect { return geom.R(0, 0, v.cfg.width, v.cfg.height) }

// Records returns the records the view was built from.
func (v *View) Records() []data.Record { return v.records }

// Points returns marker centers in record-index order.
func (v *View) Points() []geom.Point {
	return append([]geom.Point(nil), v.centers...)
}

// Links returns the drawn links.
func (v *View) Links() []data.Link {
	return append([]data.Link(nil), v.cfg.links...)
}

// Fills returns the current fill of every marker.
func (v *View) Fills() []Color {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]Color(nil), v.fills...)
}

// Markers returns a snapshot of every marker.
func (v *View) Markers() []Marker {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Marker, len(v.centers))
	for i := range v.centers {
		out[i] = Marker{Index: i, Center: v.centers[i], Radius: v.radii[i], Fill: v.fills[i]}
	}
	return out
}

// Project maps a point in data space to surface space.
func (v *View) Project(p geom.Point) geom.Point {
	return geom.Pt(v.xScale.Map(p.X), v.yScale.Map(p.Y))
}

// ProjectPolygon maps every vertex of a data-space polygon to surface space.
func (v *View) ProjectPolygon(poly geom.Polygon) geom.Polygon {
	out := make(geom.Polygon, len(poly))
	for i, p := range poly {
		out[i] = v.Project(p)
	}
	return out
}

// Update recolors markers. Only fills change; positions, radii, stroke and
// links stay as they were. On error the previous fills are kept.
func (v *View) Update(a ColorAssignment) error {
	fills, err := a.Resolve(v.records)
	if err != nil {
		return err
	}
	if err := validateColors(fills); err != nil {
		return err
	}
	v.mu.Lock()
	v.fills = fills
	v.mu.Unlock()
	return nil
}

// Clone returns a view sharing geometry with v but with its own fills.
func (v *View) Clone() *View {
	c := &View{
		cfg:     v.cfg,
		records: v.records,
		xScale:  v.xScale,
		yScale:  v.yScale,
		centers: v.centers,
		radii:   v.radii,
	}
	c.fills = v.Fills()
	return c
}
