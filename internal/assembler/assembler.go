// Package assembler produces the platform-native package from a finalized
// application archive and an installed runtime.
//
// The runtime distribution tree is always copied into the output directory,
// minus excluded paths. On bundle platforms (macOS) the archive is then
// placed at AppSlot inside the application bundle. Everywhere else the
// launcher is left out of the copy and replaced by an executable named after
// the application: the launcher bytes followed by the archive bytes. The
// runtime finds the appended zip by its end-of-central-directory record, so
// no trailer is added.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"github.com/specialistvlad/nwpack/internal/fsutil"
	"github.com/specialistvlad/nwpack/internal/runtime"
)

// AppSlot is where bundle packages carry the application archive, relative
// to the output directory.
const AppSlot = "nwjs.app/Contents/Resources/app.nw"

// Options describes one assembly.
type Options struct {
	// OutputDir receives the package.
	OutputDir string
	// RuntimeRoot is the installed runtime distribution directory.
	RuntimeRoot string
	// ArchivePath is the finalized application archive.
	ArchivePath string
	// Name is the application name, used for the executable file name.
	Name string
	// Exclude lists runtime-relative paths (slash separated) left out of
	// the package.
	Exclude []string
	// Platform selects the package layout.
	Platform runtime.Platform
}

// Result describes the produced package.
type Result struct {
	// Path is the executable file, or the bundle output directory.
	Path string
	// Files is the number of files written.
	Files int
}

// Assemble builds the package described by opts. Everything is written to a
// staging directory first and moved into OutputDir only once complete, so a
// failed assembly never leaves a truncated executable behind.
func Assemble(ctx context.Context, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if opts.Name == "" {
		return nil, errors.New("application name is empty")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(filepath.Dir(filepath.Clean(opts.OutputDir)), ".assemble-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(staging)

	files, err := copyRuntime(ctx, opts, staging)
	if err != nil {
		return nil, fmt.Errorf("failed to copy runtime: %w", err)
	}

	res := &Result{Path: opts.OutputDir}
	if opts.Platform.IsBundle() {
		if err := fsutil.CopyFile(opts.ArchivePath, filepath.Join(staging, filepath.FromSlash(AppSlot))); err != nil {
			return nil, fmt.Errorf("failed to place archive: %w", err)
		}
	} else {
		name := opts.Name + opts.Platform.ExeExt()
		if err := writeExecutable(ctx, opts, filepath.Join(staging, name)); err != nil {
			return nil, err
		}
		res.Path = filepath.Join(opts.OutputDir, name)
	}
	res.Files = files + 1

	if err := commit(staging, opts.OutputDir); err != nil {
		return nil, err
	}
	logger.Debug("Package assembled.", "path", res.Path, "files", res.Files)
	return res, nil
}

// copyRuntime copies the runtime tree into dest, skipping excluded paths and,
// on single-executable platforms, the launcher.
func copyRuntime(ctx context.Context, opts Options, dest string) (int, error) {
	logger := ctxlog.FromContext(ctx)

	skip := make(map[string]struct{}, len(opts.Exclude)+1)
	for _, ex := range opts.Exclude {
		skip[filepath.ToSlash(filepath.Clean(ex))] = struct{}{}
	}
	if !opts.Platform.IsBundle() {
		skip[opts.Platform.Launcher()] = struct{}{}
	}

	files := 0
	err := filepath.WalkDir(opts.RuntimeRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(opts.RuntimeRoot, path)
		if err != nil || rel == "." {
			return err
		}
		if _, excluded := skip[filepath.ToSlash(rel)]; excluded {
			logger.Debug("Skipping excluded runtime path.", "path", rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		files++
		return fsutil.CopyFile(path, target)
	})
	return files, err
}

// writeExecutable writes the launcher followed by the archive to exePath.
func writeExecutable(ctx context.Context, opts Options, exePath string) error {
	launcher := filepath.Join(opts.RuntimeRoot, opts.Platform.Launcher())
	if _, err := os.Stat(launcher); err != nil {
		return fmt.Errorf("runtime launcher not found: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Concatenating launcher and archive.", "launcher", launcher, "archive", opts.ArchivePath)

	return fsutil.WriteFileAtomic(exePath, 0o755, func(w io.Writer) error {
		if _, err := fsutil.AppendFileTo(w, launcher); err != nil {
			return fmt.Errorf("failed to write launcher: %w", err)
		}
		if _, err := fsutil.AppendFileTo(w, opts.ArchivePath); err != nil {
			return fmt.Errorf("failed to write archive: %w", err)
		}
		return nil
	})
}

// commit moves every top-level entry of staging into dir, replacing entries
// of the same name.
func commit(staging, dir string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, e := range entries {
		dest := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(dest); err != nil {
			return err
		}
		if err := os.Rename(filepath.Join(staging, e.Name()), dest); err != nil {
			return fmt.Errorf("failed to move '%s' into '%s': %w", e.Name(), dir, err)
		}
	}
	return nil
}
