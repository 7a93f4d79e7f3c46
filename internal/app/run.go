package app

import (
	"context"

	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"github.com/specialistvlad/nwpack/internal/progress"
)

// Run executes the configured command, with the status server and the
// progress view connection alive for its duration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.", "command", a.config.Command, "args", a.config.Args)
	defer a.Close()

	if a.config.StatusPort > 0 {
		a.statusServer()
		defer a.closeStatusServer()
	}
	if a.config.ProgressURL != "" {
		a.connectProgress(ctx)
	}

	err := a.Dispatch(ctx, a.config.Command, a.config.Args)
	a.logger.Debug("App.Run method finished.")
	return err
}

// connectProgress adds the socket.io progress view to the reporters. A view
// that cannot be reached only costs its output, so failures are logged.
func (a *App) connectProgress(ctx context.Context) {
	view, err := progress.Dial(ctx, progress.DialOptions{URL: a.config.ProgressURL})
	if err != nil {
		a.logger.Warn("Progress view unavailable, reporting to the log only.", "error", err)
		return
	}
	a.reporter = progress.Multi{a.reporter, view}
	a.closers = append(a.closers, view)
}
