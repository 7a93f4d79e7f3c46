package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"github.com/specialistvlad/nwpack/internal/pipeline"
	"github.com/specialistvlad/nwpack/internal/progress"
	"github.com/specialistvlad/nwpack/internal/runtime"
	"github.com/specialistvlad/nwpack/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	session    *session.Session
	registry   *runtime.Registry
	reporter   progress.Reporter
	prompter   Prompter
	compiler   pipeline.Compiler
	httpServer *http.Server
	closers    []io.Closer
}

// Option customizes an App.
type Option func(*App)

// WithPrompter replaces the prompter asking for remediation consent.
func WithPrompter(p Prompter) Option {
	return func(a *App) { a.prompter = p }
}

// WithReporter replaces the progress reporter.
func WithReporter(r progress.Reporter) Option {
	return func(a *App) { a.reporter = r }
}

// WithCompiler replaces the script compiler used by publish and compile.
func WithCompiler(c pipeline.Compiler) Option {
	return func(a *App) { a.compiler = c }
}

// WithSession shares an existing session instead of creating one.
func WithSession(s *session.Session) Option {
	return func(a *App) { a.session = s }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	platform, err := runtime.ParsePlatform(cfg.Platform)
	if err != nil {
		// NewConfig validated the platform already.
		platform = runtime.CurrentPlatform()
	}

	a := &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		session:  session.New(),
		registry: runtime.New(cfg.RuntimeRoot, cfg.ArchiveDir, platform),
		reporter: progress.NewLogReporter(ctx),
	}
	if cfg.AssumeYes {
		a.prompter = AutoPrompter{}
	} else {
		a.prompter = NewTerminalPrompter(os.Stdin, outW)
	}
	for _, opt := range opts {
		opt(a)
	}
	logger.Debug("App initialized.", "runtime_root", cfg.RuntimeRoot, "platform", platform.String())
	return a
}

// Session returns the session shared by the App's commands.
func (a *App) Session() *session.Session {
	return a.session
}

func (a *App) newPipeline() *pipeline.Pipeline {
	opts := []pipeline.Option{
		pipeline.WithReporter(a.reporter),
		pipeline.WithStageHook(a.session.SetStage),
	}
	if a.compiler != nil {
		opts = append(opts, pipeline.WithCompiler(a.compiler))
	}
	return pipeline.New(a.registry, opts...)
}

// Close releases the connections opened by Run.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
