// Package progress reports what a running command is doing: which pipeline
// stage it is in and the output lines of the tools it drives.
package progress

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/nwpack/internal/ctxlog"
)

// Reporter receives progress of the running command.
type Reporter interface {
	// Stage announces that a new stage started.
	Stage(name string)
	// Log forwards one output line.
	Log(line string)
	// Show asks the progress view to come to the front. It is used when a
	// command is requested while another one is still running.
	Show()
}

// LogReporter writes progress to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter returns a LogReporter writing to the logger carried by ctx.
func NewLogReporter(ctx context.Context) *LogReporter {
	return &LogReporter{logger: ctxlog.FromContext(ctx)}
}

func (r *LogReporter) Stage(name string) {
	r.logger.Info("▶️ Stage started.", "stage", name)
}

func (r *LogReporter) Log(line string) {
	r.logger.Info(line)
}

func (r *LogReporter) Show() {
	r.logger.Warn("A command is already running, see its progress above.")
}

// Multi fans every call out to each reporter in order.
type Multi []Reporter

func (m Multi) Stage(name string) {
	for _, r := range m {
		r.Stage(name)
	}
}

func (m Multi) Log(line string) {
	for _, r := range m {
		r.Log(line)
	}
}

func (m Multi) Show() {
	for _, r := range m {
		r.Show()
	}
}

// Discard is a Reporter that drops everything.
var Discard Reporter = Multi(nil)
