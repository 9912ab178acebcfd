// Package pkg provides the libraries behind lassoview's linked views.
//
// # Overview
//
// Lassoview draws one dataset twice, as a scatterplot and as a network of
// the same records, and links the two with a freehand lasso: records
// enclosed on either view are highlighted on both. The pkg directory is
// organized into four areas:
//
//  1. Views: [geom], [data] and [render] turn records into markers on a
//     drawable surface
//  2. Interaction: [lasso] and [selection] turn pointer gestures into
//     selection masks and broadcast color assignments
//  3. Layout: [layout] and [provider] position the network view, locally or
//     through an external websocket backend
//  4. Infrastructure: [cache], [errors], [observability] and [buildinfo]
//
// # Architecture
//
// The flow of one gesture:
//
//	pointer events
//	      ↓
//	 [lasso] controller (path, hit test on release)
//	      ↓
//	 [selection] coordinator (mask → one color assignment)
//	      ↓
//	 [render] views (fills replaced, SVG redrawn)
//
// # Quick Start
//
// Link a scatterplot to a second view of the same records:
//
//	records, _ := data.Load("examples/data/mtcars.csv")
//	scatter, _ := render.New(records,
//	    render.WithX(data.Field("mpg")),
//	    render.WithY(data.Field("hp")),
//	)
//
//	coord := selection.NewCoordinator(selection.WithPalette(selection.DefaultPalette))
//	group := selection.NewGroup(lasso.New(), coord)
//	_, _ = group.Add(scatter)
//
//	_ = group.Dispatch(scatter.ID(), lasso.Event{Kind: lasso.EventPress, Point: geom.Pt(100, 100)})
//
// # Main Packages
//
// [render] - The view renderer. Visual options are channels that are either
// a constant, an index-aligned array or a per-record mapper; Update replaces
// only the marker fills.
//
// [lasso] - The gesture state machine. Points closer than the minimum
// distance are dropped and release runs an even-odd hit test over the
// markers inside the path's bounding box.
//
// [selection] - The coordinator maps a mask to Highlight/Dim fills (or
// Reset when nothing is enclosed) on every attached view. A Group owns one
// controller per view and routes pointer events to them.
//
// [layout] - Network layout engines: a seeded spring layout and Graphviz
// engines, with a cached wrapper.
//
// [provider] - The websocket protocol for external record and layout
// backends, both client and server.
//
// [cache] - Layout cache backends: null, file and Redis.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/geom
// [data]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/data
// [render]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/render
// [lasso]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/lasso
// [selection]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/selection
// [layout]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/layout
// [provider]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/provider
// [cache]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/lassoview/pkg/buildinfo
package pkg
