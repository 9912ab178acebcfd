// Package geom provides the planar geometry used by lasso selection.
//
// Coordinates are surface-space pixels: the same space the renderer places
// marker centers in and the pointer events arrive in. Y grows downward, but
// nothing in this package depends on orientation.
//
// # Containment Rule
//
// [Polygon.Contains] implements the even-odd (ray casting) rule over the
// polygon's edges. The polygon is always treated as closed: the last vertex
// connects back to the first, so callers never append the start point.
//
// Edges are tested half-open, (yi > y) != (yj > y), which makes a point that
// lies exactly on an edge or vertex land on a fixed side for a given polygon.
// For an axis-aligned rectangle drawn clockwise on screen this means points on
// the left and top edges count as inside and points on the right and bottom
// edges count as outside. The rule is deterministic: the same polygon and
// point always give the same answer.
//
// A polygon with fewer than three vertices has zero area and contains
// nothing.
package geom
