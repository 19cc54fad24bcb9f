// Package cli implements the tarper command-line interface.
//
// The CLI runs ordering strategies over a source directory, compares them,
// inspects search trees and manages the cost cache. It is built on cobra and
// logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - run: Search for a good ordering and optionally write the archive
//   - compare: Run several strategies and print a table of their costs
//   - strategies: List the available strategies
//   - tree: Debug tool that builds, prunes and renders a search tree
//   - cache: Manage the cost cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which adds
// search heartbeats and prune results. Loggers are passed through
// context.Context.
//
// # Example
//
//	import "github.com/matzehuels/tarper/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger that writes to w at level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
// It is meant for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond,
// e.g. "Searched 128 files (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
