// Package render draws records as a 2D scatterplot on an SVG surface.
//
// # Overview
//
// [New] maps each record to a circular marker through two numeric accessors
// and a pair of scales, optionally draws links between records, and returns a
// [View] handle. The handle keeps the projected marker centers (the
// coordinates a lasso hit-tests against) and lets callers recolor markers
// later with [View.Update].
//
//	view, err := render.New(records,
//	    render.WithID("scatter"),
//	    render.WithX(data.Field("wt")),
//	    render.WithY(data.Field("mpg")),
//	)
//	view.Update(render.Constant[render.Color]("#aa0000"))
//	view.WriteSVG(w)
//
// # Channels
//
// A [Channel] is one of three shapes: a single value for every marker
// ([Constant]), one value per record index ([Array]), or a function of the
// record ([Mapper]). Fill colors use [ColorAssignment]; radii use
// Channel[float64]. An array whose length differs from the record count is
// rejected with an ARRAY_LENGTH error.
//
// # Scales
//
// [Linear] and [Log] build [Scale] values on top of go-moremath. When the
// domain collapses to a single value (including an empty record set) every
// value maps to the middle of the range.
//
// # Output
//
// [View.WriteSVG] writes axes, then links, then markers, so markers always
// paint above links. Each marker carries a data-index attribute matching its
// record index.
package render
