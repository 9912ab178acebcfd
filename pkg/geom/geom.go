package geom

import (
	"math"

	sf "github.com/peterstace/simplefeatures/geom"
)

// Point is a position in surface space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Rect is an axis-aligned rectangle. The zero Rect is empty.
type Rect struct {
	Min, Max Point
	valid    bool
}

// R constructs a rectangle from two corners in any order.
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{
		Min:   Point{math.Min(x0, x1), math.Min(y0, y1)},
		Max:   Point{math.Max(x0, x1), math.Max(y0, y1)},
		valid: true,
	}
}

// Empty reports whether the rectangle covers no points at all.
func (r Rect) Empty() bool { return !r.valid }

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	if !r.valid {
		return false
	}
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Expand returns the smallest rectangle containing r and p.
func (r Rect) Expand(p Point) Rect {
	if !r.valid {
		return Rect{Min: p, Max: p, valid: true}
	}
	r.Min.X = math.Min(r.Min.X, p.X)
	r.Min.Y = math.Min(r.Min.Y, p.Y)
	r.Max.X = math.Max(r.Max.X, p.X)
	r.Max.Y = math.Max(r.Max.Y, p.Y)
	return r
}

// Dx returns the width of r.
func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }

// Dy returns the height of r.
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Polygon is a closed ring of vertices. The closing edge from the last vertex
// back to the first is implicit.
type Polygon []Point

// Contains reports whether p lies inside the polygon under the even-odd rule.
// See the package documentation for how boundary points are classified.
func (pg Polygon) Contains(p Point) bool {
	n := len(pg)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pg[i], pg[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			// x coordinate where edge (b,a) crosses the horizontal through p
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Area returns the absolute area enclosed by the polygon (shoelace formula).
func (pg Polygon) Area() float64 {
	if len(pg) < 3 {
		return 0
	}
	var sum float64
	for i, j := 0, len(pg)-1; i < len(pg); j, i = i, i+1 {
		sum += pg[j].X*pg[i].Y - pg[i].X*pg[j].Y
	}
	return math.Abs(sum) / 2
}

// Bounds returns the bounding box of the polygon's vertices.
func (pg Polygon) Bounds() Rect {
	var r Rect
	for _, p := range pg {
		r = r.Expand(p)
	}
	return r
}

// Clone returns a copy of the polygon that shares no memory with pg.
func (pg Polygon) Clone() Polygon {
	if pg == nil {
		return nil
	}
	out := make(Polygon, len(pg))
	copy(out, pg)
	return out
}

// WKT renders the polygon's closed ring as well-known text, e.g.
// "LINESTRING(0 0,4 0,4 4,0 0)". Polygons with fewer than three vertices
// render as an open line string (or an empty one). A ring the geometry
// library rejects, such as one with non-finite vertices, renders as "".
func (pg Polygon) WKT() string {
	coords := make([]float64, 0, 2*(len(pg)+1))
	for _, p := range pg {
		coords = append(coords, p.X, p.Y)
	}
	if len(pg) >= 3 {
		coords = append(coords, pg[0].X, pg[0].Y)
	}
	if len(pg) == 1 {
		// A line string needs two points; repeat the lone vertex.
		coords = append(coords, pg[0].X, pg[0].Y)
	}
	ls, err := sf.NewLineString(sf.NewSequence(coords, sf.DimXY))
	if err != nil {
		return ""
	}
	return ls.AsText()
}
