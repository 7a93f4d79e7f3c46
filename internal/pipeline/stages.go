package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/nwpack/internal/archive"
	"github.com/specialistvlad/nwpack/internal/assembler"
	"github.com/specialistvlad/nwpack/internal/compiler"
	"github.com/specialistvlad/nwpack/internal/config"
	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"github.com/specialistvlad/nwpack/internal/fsutil"
	"github.com/specialistvlad/nwpack/internal/htmlrewrite"
	"github.com/specialistvlad/nwpack/internal/prereq"
)

func (p *Pipeline) loadConfig(ctx context.Context, r *run) error {
	pub, err := config.LoadPublish(ctx, ".")
	if errors.Is(err, config.ErrNotFound) {
		return prereq.PublishConfig(err)
	}
	if err != nil {
		return fmt.Errorf("failed to load publish config: %w", err)
	}
	manifest, err := config.LoadManifest(ctx, ".")
	if errors.Is(err, config.ErrNotFound) {
		return prereq.Manifest(err)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", config.ManifestFile, err)
	}

	manifest.Override(pub.Package)
	if err := validateName(manifest.Name()); err != nil {
		return err
	}
	r.publish = pub
	r.manifest = manifest
	r.result.Name = manifest.Name()
	return nil
}

// validateName rejects names that cannot be used as a file name.
func validateName(name string) error {
	switch {
	case name == "":
		return errors.New("application name is empty")
	case name == "." || name == "..", strings.ContainsAny(name, `/\`):
		return fmt.Errorf("application name '%s' is not a valid file name", name)
	}
	return nil
}

func (p *Pipeline) resolveRuntime(ctx context.Context, r *run) error {
	if r.publish.WantsLatest() {
		v, ok, err := p.registry.Latest()
		if err != nil {
			return err
		}
		if !ok {
			return prereq.Install("")
		}
		r.version = v
	} else {
		v, err := p.registry.Version(r.publish.Version)
		if err != nil {
			return fmt.Errorf("invalid runtime version '%s': %w", r.publish.Version, err)
		}
		r.version = v.RuntimeVersion()
	}
	if _, ok := r.version.RootPath(); !ok {
		return prereq.Install(r.version.Version)
	}
	r.result.Version = r.version
	ctxlog.FromContext(ctx).Debug("Runtime resolved.", "version", r.version.String(), "platform", r.version.Platform.String())
	return nil
}

func (p *Pipeline) rewriteHTML(ctx context.Context, r *run) error {
	p.reporter.Log("Convert html...")
	matches, err := fsutil.Glob(r.publish.HTML...)
	if err != nil {
		return err
	}
	for _, src := range matches {
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		p.reporter.Log(src)
		html, targets := htmlrewrite.Rewrite(string(data))
		r.targets.Merge(targets)
		r.pages = append(r.pages, page{path: src, html: html})
	}
	ctxlog.FromContext(ctx).Debug("HTML rewritten.", "pages", len(r.pages), "scripts", len(r.targets))
	return nil
}

func (p *Pipeline) compileScripts(ctx context.Context, r *run) error {
	if len(r.targets) == 0 {
		return nil
	}
	p.reporter.Log("Compile js...")
	nwjc, ok := r.version.SDKVersion().Compiler()
	if !ok {
		return prereq.Install(r.version.Version)
	}

	opts := compiler.PrepareOptions{Precheck: r.publish.Precheck, Minify: r.publish.Minify}
	sources := make([]string, 0, len(r.targets))
	for src := range r.targets {
		sources = append(sources, src)
	}
	slices.Sort(sources)

	for _, src := range sources {
		bin := r.targets[src]
		dest := filepath.Join(r.publish.BinDir, filepath.FromSlash(bin))
		p.reporter.Log(src)
		if err := compileOne(ctx, p.compiler, nwjc, src, dest, r.publish.BinDir, opts, p.reporter.Log); err != nil {
			return err
		}
		r.scripts = append(r.scripts, compiled{name: bin, path: dest})
	}
	return nil
}

// compileOne prepares src and compiles it to dest.
func compileOne(ctx context.Context, c Compiler, nwjc, src, dest, workDir string, opts compiler.PrepareOptions, sink compiler.Sink) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	input, err := compiler.Prepare(src, workDir, opts)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Compiling script.", "script", src, "input", input, "output", dest)
	err = c.Compile(ctx, nwjc, input, dest, sink)
	// Failures name the user's script, not the prepared copy.
	var failed *compiler.FailedError
	if input != src && errors.As(err, &failed) {
		failed.Script = src
	}
	return err
}

func (p *Pipeline) buildArchive(ctx context.Context, r *run) error {
	if err := os.MkdirAll(r.publish.BinDir, 0o755); err != nil {
		return err
	}
	manifest, err := r.manifest.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	b := archive.Create(filepath.Join(r.publish.BinDir, r.manifest.Name()+".zip"))
	r.archive = b
	b.AppendText(config.ManifestFile, string(manifest))
	for _, pg := range r.pages {
		b.AppendText(pg.path, pg.html)
	}
	for _, s := range r.scripts {
		b.AppendFile(s.name, s.path)
	}

	p.reporter.Log("Add files...")
	files, err := fsutil.Glob(r.publish.Files...)
	if err != nil {
		return err
	}
	for _, src := range files {
		dir, err := fsutil.IsDir(src)
		if err != nil {
			return err
		}
		if dir {
			continue
		}
		p.reporter.Log(src)
		b.AppendFile(src, src)
	}

	p.reporter.Log("Flush zip...")
	if err := b.Finalize(); err != nil {
		return err
	}
	r.result.Archive = b.Path()
	r.result.Entries = b.Len()
	ctxlog.FromContext(ctx).Debug("Archive finalized.", "path", b.Path(), "entries", b.Len())
	return nil
}

func (p *Pipeline) assemble(ctx context.Context, r *run) error {
	p.reporter.Log("Generate exe...")
	root, ok := r.version.RootPath()
	if !ok {
		return fmt.Errorf("runtime %s disappeared during the run", r.version)
	}
	res, err := assembler.Assemble(ctx, assembler.Options{
		OutputDir:   r.publish.OutputDir,
		RuntimeRoot: root,
		ArchivePath: r.archive.Path(),
		Name:        r.manifest.Name(),
		Exclude:     r.publish.Exclude,
		Platform:    r.version.Platform,
	})
	if err != nil {
		return err
	}
	r.result.Output = res.Path
	return nil
}
