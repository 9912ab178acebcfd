package render

import (
	"github.com/matzehuels/lassoview/pkg/data"
)

// Default option values.
const (
	DefaultID                = "scatterplot"
	DefaultRadius            = 5.0
	DefaultFill        Color = "#4D7AA7"
	DefaultStroke      Color = "#CCCCCC"
	DefaultStrokeWidth       = 1.0
	DefaultWidth             = 640.0
	DefaultLinkStroke  Color = "#DDDDDD"
	DefaultLinkWidth         = 1.0
	DefaultLinkOpacity       = 0.7
)

// Margins is the space between the surface edge and the plot area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins leaves room for tick labels on the left and bottom axes.
var DefaultMargins = Margins{Top: 20, Right: 30, Bottom: 30, Left: 40}

// Option configures [New].
type Option func(*config)

type config struct {
	id          string
	x, y        data.Accessor
	radius      Channel[float64]
	fill        ColorAssignment
	stroke      Color
	strokeWidth float64
	margins     Margins
	width       float64
	height      float64 // 0 means "same as width"

	xScale, yScale   ScaleFunc
	xDomain, yDomain *[2]float64
	xRange, yRange   *[2]float64

	xLabel, yLabel       string
	showXAxis, showYAxis bool

	links       []data.Link
	linkStroke  Color
	linkWidth   float64
	linkOpacity float64
}

func defaultConfig() config {
	return config{
		id:          DefaultID,
		x:           data.Field("x"),
		y:           data.Field("y"),
		radius:      Constant(DefaultRadius),
		fill:        Constant(DefaultFill),
		stroke:      DefaultStroke,
		strokeWidth: DefaultStrokeWidth,
		margins:     DefaultMargins,
		width:       DefaultWidth,
		xScale:      Linear,
		yScale:      Linear,
		showXAxis:   true,
		showYAxis:   true,
		linkStroke:  DefaultLinkStroke,
		linkWidth:   DefaultLinkWidth,
		linkOpacity: DefaultLinkOpacity,
	}
}

func WithID(id string) Option        { return func(c *config) { c.id = id } }
func WithX(acc data.Accessor) Option { return func(c *config) { c.x = acc } }
func WithY(acc data.Accessor) Option { return func(c *config) { c.y = acc } }

// WithRadius sets the marker radius channel.
func WithRadius(r Channel[float64]) Option { return func(c *config) { c.radius = r } }

// WithFill sets the initial fill assignment.
func WithFill(a ColorAssignment) Option { return func(c *config) { c.fill = a } }

func WithStroke(color Color, width float64) Option {
	return func(c *config) { c.stroke, c.strokeWidth = color, width }
}

func WithMargins(m Margins) Option { return func(c *config) { c.margins = m } }

// WithSize sets the surface size. A zero height follows the width.
func WithSize(width, height float64) Option {
	return func(c *config) { c.width, c.height = width, height }
}

func WithXScale(fn ScaleFunc) Option { return func(c *config) { c.xScale = fn } }
func WithYScale(fn ScaleFunc) Option { return func(c *config) { c.yScale = fn } }

// WithXDomain overrides the automatic x extent.
func WithXDomain(lo, hi float64) Option {
	return func(c *config) { c.xDomain = &[2]float64{lo, hi} }
}

// WithYDomain overrides the automatic y extent.
func WithYDomain(lo, hi float64) Option {
	return func(c *config) { c.yDomain = &[2]float64{lo, hi} }
}

// WithXRange overrides the surface interval the x domain maps onto.
func WithXRange(lo, hi float64) Option {
	return func(c *config) { c.xRange = &[2]float64{lo, hi} }
}

// WithYRange overrides the surface interval the y domain maps onto. The
// default runs bottom to top.
func WithYRange(lo, hi float64) Option {
	return func(c *config) { c.yRange = &[2]float64{lo, hi} }
}

func WithLabels(x, y string) Option {
	return func(c *config) { c.xLabel, c.yLabel = x, y }
}

func WithAxes(x, y bool) Option {
	return func(c *config) { c.showXAxis, c.showYAxis = x, y }
}

// WithLinks draws a line between the markers of each linked record pair.
func WithLinks(links []data.Link) Option {
	return func(c *config) { c.links = append([]data.Link(nil), links...) }
}

func WithLinkStyle(color Color, width, opacity float64) Option {
	return func(c *config) { c.linkStroke, c.linkWidth, c.linkOpacity = color, width, opacity }
}
