package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/specialistvlad/nwpack/internal/archive"
	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"golang.org/x/mod/semver"
)

var dirNameRe = regexp.MustCompile(`^nwjs(-sdk)?-v(.+)-([a-z]+)-([a-z0-9]+)$`)

var archiveExts = []string{".zip", ".tar.gz", ".tgz"}

// Version is one runtime or SDK distribution, installed or not.
type Version struct {
	Version  string
	SDK      bool
	Platform Platform

	reg *Registry
}

// DirName returns the distribution directory (and archive base) name.
func (v Version) DirName() string {
	kind := "nwjs"
	if v.SDK {
		kind = "nwjs-sdk"
	}
	return fmt.Sprintf("%s-v%s-%s", kind, v.Version, v.Platform)
}

// String implements fmt.Stringer.
func (v Version) String() string {
	if v.SDK {
		return v.Version + "-sdk"
	}
	return v.Version
}

func (v Version) dir() string {
	return filepath.Join(v.reg.Root, v.DirName())
}

// Installed reports whether the distribution directory exists.
func (v Version) Installed() bool {
	info, err := os.Stat(v.dir())
	return err == nil && info.IsDir()
}

// RootPath returns the distribution directory, or false if it is not installed.
func (v Version) RootPath() (string, bool) {
	if !v.Installed() {
		return "", false
	}
	return v.dir(), true
}

// Path returns the runtime launcher, or false if it is not installed.
func (v Version) Path() (string, bool) {
	return v.file(v.Platform.Launcher())
}

// Compiler returns the nwjc compiler. Only SDK distributions ship one.
func (v Version) Compiler() (string, bool) {
	if !v.SDK {
		return "", false
	}
	return v.file(v.Platform.CompilerName())
}

func (v Version) file(name string) (string, bool) {
	root, ok := v.RootPath()
	if !ok {
		return "", false
	}
	p := filepath.Join(root, name)
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

// SDKVersion returns the SDK distribution of the same version.
func (v Version) SDKVersion() Version {
	v.SDK = true
	return v
}

// RuntimeVersion returns the redistributable runtime of the same version.
func (v Version) RuntimeVersion() Version {
	v.SDK = false
	return v
}

// Install extracts the distribution archive from the registry's archive
// directory. It returns false when the distribution is already installed.
func (v Version) Install(ctx context.Context) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("version", v.String(), "platform", v.Platform.String())
	if v.Installed() {
		logger.Debug("Distribution already installed.")
		return false, nil
	}

	src, err := v.archivePath()
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(v.reg.Root, 0o755); err != nil {
		return false, err
	}

	logger.Info("📦 Installing distribution...", "archive", src)
	staging, err := os.MkdirTemp(v.reg.Root, ".install-*")
	if err != nil {
		return false, err
	}
	defer os.RemoveAll(staging)

	if err := archive.Extract(src, staging); err != nil {
		return false, fmt.Errorf("failed to extract '%s': %w", src, err)
	}

	// Upstream archives hold a single top-level directory named like the
	// distribution; anything else is installed as extracted.
	content := staging
	if entries, err := os.ReadDir(staging); err == nil && len(entries) == 1 && entries[0].IsDir() && entries[0].Name() == v.DirName() {
		content = filepath.Join(staging, entries[0].Name())
	}
	if err := os.Rename(content, v.dir()); err != nil {
		return false, fmt.Errorf("failed to install %s: %w", v.DirName(), err)
	}
	logger.Info("Distribution installed.", "path", v.dir())
	return true, nil
}

// Remove deletes the distribution directory. It returns false when the
// distribution was not installed.
func (v Version) Remove() (bool, error) {
	if !v.Installed() {
		return false, nil
	}
	if err := os.RemoveAll(v.dir()); err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", v.DirName(), err)
	}
	return true, nil
}

func (v Version) archivePath() (string, error) {
	if v.reg.ArchiveDir == "" {
		return "", fmt.Errorf("no runtime archive directory configured to install %s from", v.DirName())
	}
	for _, ext := range archiveExts {
		p := filepath.Join(v.reg.ArchiveDir, v.DirName()+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no archive for %s found in '%s' (expected %s.zip or %s.tar.gz)",
		v.DirName(), v.reg.ArchiveDir, v.DirName(), v.DirName())
}

// compareVersions orders version strings with semantic versioning rules;
// strings that are not valid semver sort before valid ones.
func compareVersions(a, b string) int {
	va, vb := "v"+strings.TrimPrefix(a, "v"), "v"+strings.TrimPrefix(b, "v")
	okA, okB := semver.IsValid(va), semver.IsValid(vb)
	switch {
	case okA && okB:
		return semver.Compare(va, vb)
	case okA:
		return 1
	case okB:
		return -1
	default:
		return strings.Compare(a, b)
	}
}
