// Package cli implements the lassoview command-line interface.
//
// The commands render the linked scatterplot and network views of a dataset
// to SVG, serve them to a browser with a server-side lasso, show them in a
// terminal, and run a layout provider that other instances can use. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Write both views as SVG files, optionally with a selection
//   - serve: Serve the interactive views over HTTP and websocket
//   - tui: Show the interactive views in the terminal
//   - provider: Serve records and layouts to remote clients
//   - cache: Manage the layout cache
//
// # Configuration
//
// Every command reads an optional TOML or YAML file given with --config.
// Flags override values from the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level with "HH:MM:SS.ms"
// timestamps (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. It is meant for one goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts the clock.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Laid out 32 nodes (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
