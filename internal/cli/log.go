// Package cli implements the serenity command-line interface.
//
// This package provides commands for working with canvas documents outside
// the editor: migrating legacy snapshots, managing the image asset store,
// collecting unreferenced assets, exporting diagrams and browsing a canvas
// in the terminal. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - info: Summarize a canvas and its assets
//   - migrate: Upgrade a legacy snapshot to the current format
//   - gc: Delete assets no canvas node references
//   - assets: Put, list, remove and locate stored image assets
//   - export: Render a canvas as DOT, SVG, PDF or PNG
//   - tui: Navigate and edit a canvas with the keyboard
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

// newLogger returns a logger writing timestamped lines ("15:04:05.00") to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Collected 3 assets (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// commandLogger derives a logger whose lines are prefixed with the name
// of the running subcommand. The root command keeps the bare logger.
func commandLogger(l *log.Logger, name string) *log.Logger {
	if name == "" || name == appName {
		return l
	}
	return l.WithPrefix(name)
}

// loggerFromContext returns the logger attached by withLogger, falling
// back to log.Default so commands run outside the root still log.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
