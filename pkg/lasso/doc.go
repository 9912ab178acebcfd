// Package lasso turns pointer gestures on a surface into selection masks.
//
// # Lifecycle
//
// A [Lasso] holds shared settings. [Lasso.Attach] binds it to one surface
// and one set of marker centers, producing a [Controller]. Each controller
// is a two-state machine:
//
//	Idle --Press--> Drawing --Move--> Drawing
//	Drawing --Release--> Idle   (mask computed, end callback fired)
//	Drawing --Leave/Cancel--> Idle   (no mask, no callback)
//
// Move and Release only extend the path when the pointer has travelled at
// least the minimum distance from the last recorded point.
//
// # Hit Testing
//
// On release the path is treated as a closed polygon and each marker center
// is tested with the even-odd rule of [geom.Polygon.Contains]. A path of
// fewer than three points selects nothing. Markers outside the bounding box
// of the path are rejected before the polygon test.
//
// The controller does not clip points to the surface bounds: callers that
// convert data-space polygons through a scale may legitimately produce
// coordinates outside the drawable area.
package lasso
