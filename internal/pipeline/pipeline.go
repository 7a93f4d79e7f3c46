// Package pipeline turns an NW.js project into a distributable package.
//
// A publish run is an ordered list of stages driven by one loop that stops
// at the first error: load the configuration, resolve the runtime, rewrite
// the HTML entry points, compile the extracted scripts, build the archive
// and assemble the package. Every path is relative to the working
// directory, which the caller points at the project for the whole run.
package pipeline

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nwpack/internal/archive"
	"github.com/specialistvlad/nwpack/internal/compiler"
	"github.com/specialistvlad/nwpack/internal/config"
	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"github.com/specialistvlad/nwpack/internal/htmlrewrite"
	"github.com/specialistvlad/nwpack/internal/progress"
	"github.com/specialistvlad/nwpack/internal/runtime"
)

// Compiler runs the script compiler shipped with an SDK distribution.
type Compiler interface {
	Compile(ctx context.Context, compilerPath, input, output string, sink compiler.Sink) error
}

// Pipeline holds the collaborators shared by every run.
type Pipeline struct {
	registry *runtime.Registry
	compiler Compiler
	reporter progress.Reporter
	onStage  func(name string)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCompiler replaces the subprocess compiler.
func WithCompiler(c Compiler) Option {
	return func(p *Pipeline) { p.compiler = c }
}

// WithReporter sets where stage and tool output is reported.
func WithReporter(r progress.Reporter) Option {
	return func(p *Pipeline) { p.reporter = r }
}

// WithStageHook registers a func called with the name of each stage as it
// starts.
func WithStageHook(fn func(name string)) Option {
	return func(p *Pipeline) { p.onStage = fn }
}

// New returns a Pipeline resolving runtimes through reg.
func New(reg *runtime.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: reg,
		compiler: compiler.Exec{},
		reporter: progress.Discard,
		onStage:  func(string) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes a finished publish run.
type Result struct {
	// Name is the application name from the merged manifest.
	Name string
	// Version is the runtime the package was assembled with.
	Version runtime.Version
	// Archive is the finalized application archive.
	Archive string
	// Output is the executable, or the output directory for bundles.
	Output string
	// Entries is the number of archive entries.
	Entries int
}

// page is one rewritten HTML entry point.
type page struct {
	path string
	html string
}

// compiled is one compiled script: its archive name and where it was written.
type compiled struct {
	name string
	path string
}

// run is the state threaded through the stages of one publish run.
type run struct {
	publish  *config.Publish
	manifest config.Manifest
	version  runtime.Version
	pages    []page
	targets  htmlrewrite.Targets
	scripts  []compiled
	archive  *archive.Builder
	result   Result
}

type stage struct {
	name string
	fn   func(ctx context.Context, r *run) error
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{"load config", p.loadConfig},
		{"resolve runtime", p.resolveRuntime},
		{"rewrite html", p.rewriteHTML},
		{"compile scripts", p.compileScripts},
		{"archive", p.buildArchive},
		{"assemble", p.assemble},
	}
}

// Publish runs every stage against the project in the working directory.
// On failure no package is produced and the partial archive is removed.
func (p *Pipeline) Publish(ctx context.Context) (res *Result, err error) {
	logger := ctxlog.FromContext(ctx)
	r := &run{targets: htmlrewrite.Targets{}}
	defer func() {
		if err != nil && r.archive != nil {
			r.archive.Abort()
		}
	}()

	logger.Info("🚀 Publishing project...")
	for _, s := range p.stages() {
		p.onStage(s.name)
		p.reporter.Stage(s.name)
		logger.Debug("Stage started.", "stage", s.name)
		if err := s.fn(ctx, r); err != nil {
			return nil, fmt.Errorf("stage '%s' failed: %w", s.name, err)
		}
	}
	logger.Info("🏁 Publish complete.", "name", r.result.Name, "version", r.version.String(), "output", r.result.Output)
	p.reporter.Log("Complete")
	return &r.result, nil
}
