package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// IndexFile is the optional file under the registry root that lists the
// versions available upstream, in the format of the upstream index.json.
const IndexFile = "index.json"

// Registry enumerates and resolves distributions under Root for one target
// platform. ArchiveDir is where Install looks for distribution archives.
type Registry struct {
	Root       string
	ArchiveDir string
	Platform   Platform
}

// New returns a Registry.
func New(root, archiveDir string, platform Platform) *Registry {
	return &Registry{Root: root, ArchiveDir: archiveDir, Platform: platform}
}

// Version returns the distribution for a version text such as "0.19.0",
// "v0.19.0" or "0.19.0-sdk".
func (r *Registry) Version(text string) (Version, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "v")
	sdk := strings.HasSuffix(text, "-sdk")
	text = strings.TrimSuffix(text, "-sdk")
	if text == "" {
		return Version{}, errors.New("empty version")
	}
	// The text becomes part of a directory name under Root.
	if strings.ContainsAny(text, `/\`) || strings.Contains(text, "..") || !semver.IsValid("v"+text) {
		return Version{}, fmt.Errorf("invalid version %q", text)
	}
	return Version{Version: text, SDK: sdk, Platform: r.Platform, reg: r}, nil
}

// List returns the installed distributions accepted by filter, newest first.
// A nil filter accepts everything.
func (r *Registry) List(filter func(Version) bool) ([]Version, error) {
	entries, err := os.ReadDir(r.Root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read runtime directory '%s': %w", r.Root, err)
	}

	var out []Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, ok := r.parseDirName(e.Name())
		if !ok || (filter != nil && !filter(v)) {
			continue
		}
		out = append(out, v)
	}
	sortVersions(out)
	return out, nil
}

// ListAll returns installed distributions together with those listed in the
// registry index, newest first, without duplicates.
func (r *Registry) ListAll(filter func(Version) bool) ([]Version, error) {
	installed, err := r.List(nil)
	if err != nil {
		return nil, err
	}
	indexed, err := r.readIndex()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []Version
	for _, v := range append(installed, indexed...) {
		if _, ok := seen[v.DirName()]; ok {
			continue
		}
		seen[v.DirName()] = struct{}{}
		if filter == nil || filter(v) {
			out = append(out, v)
		}
	}
	sortVersions(out)
	return out, nil
}

// Latest returns the newest installed runtime (non-SDK) distribution. The
// boolean is false when nothing is installed.
func (r *Registry) Latest() (Version, bool, error) {
	list, err := r.List(func(v Version) bool { return !v.SDK })
	if err != nil || len(list) == 0 {
		return Version{}, false, err
	}
	return list[0], true, nil
}

func (r *Registry) parseDirName(name string) (Version, bool) {
	m := dirNameRe.FindStringSubmatch(name)
	if m == nil {
		return Version{}, false
	}
	p := Platform{OS: m[3], Arch: m[4]}
	if p != r.Platform {
		return Version{}, false
	}
	return Version{Version: m[2], SDK: m[1] != "", Platform: p, reg: r}, true
}

type indexDoc struct {
	Versions []struct {
		Version string `json:"version"`
	} `json:"versions"`
}

func (r *Registry) readIndex() ([]Version, error) {
	data, err := os.ReadFile(filepath.Join(r.Root, IndexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc indexDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", IndexFile, err)
	}
	var out []Version
	for _, entry := range doc.Versions {
		v, err := r.Version(entry.Version)
		if err != nil {
			continue
		}
		out = append(out, v.RuntimeVersion(), v.SDKVersion())
	}
	return out, nil
}

// sortVersions orders newest first; for equal versions the runtime sorts
// before its SDK.
func sortVersions(vs []Version) {
	sort.SliceStable(vs, func(i, j int) bool {
		if c := compareVersions(vs[i].Version, vs[j].Version); c != 0 {
			return c > 0
		}
		return !vs[i].SDK && vs[j].SDK
	})
}
