package config

import (
	"encoding/json"
	"fmt"
)

const (
	// AnyVersion selects the newest installed runtime.
	AnyVersion = "any"

	// ManifestFile is the application manifest file name.
	ManifestFile = "package.json"

	defaultBinDir    = "bin"
	defaultOutputDir = "publish"
)

// PublishFiles are the accepted publish config file names, in lookup order.
var PublishFiles = []string{"nwjs.publish.json", "nwjs.publish.hcl", "nwjs.publish.toml"}

// DefaultPublish returns the built-in publish config defaults.
func DefaultPublish() map[string]any {
	return map[string]any{
		"version": AnyVersion,
		"package": map[string]any{},
		"html":    []any{"index.html"},
		"files":   []any{},
		"exclude": []any{},
	}
}

// DefaultManifest returns the built-in manifest defaults.
func DefaultManifest() map[string]any {
	return map[string]any{
		"name": "untitled",
		"main": "index.html",
	}
}

// Publish declares what a publish run includes and which runtime it targets.
type Publish struct {
	// Version is the runtime version, or AnyVersion for the newest installed.
	Version string `json:"version"`
	// Package holds manifest overrides merged over package.json.
	Package map[string]any `json:"package"`
	// HTML lists the globs of HTML entry points whose scripts are compiled.
	HTML StringList `json:"html"`
	// Files lists the globs of extra files copied into the archive as is.
	Files StringList `json:"files"`
	// Exclude lists runtime-relative paths left out of the package.
	Exclude []string `json:"exclude"`

	// Minify shrinks scripts with esbuild before compiling them.
	Minify bool `json:"minify,omitempty"`
	// Precheck rejects scripts with syntax errors before compiling them.
	Precheck bool `json:"precheck,omitempty"`
	// BinDir holds compiled scripts and the archive. Defaults to "bin".
	BinDir string `json:"bin,omitempty"`
	// OutputDir receives the packaged executable. Defaults to "publish".
	OutputDir string `json:"output,omitempty"`

	// Source is the file the config was loaded from.
	Source string `json:"-"`
}

// WantsLatest reports whether the config targets the newest installed runtime.
func (p *Publish) WantsLatest() bool {
	return p.Version == "" || p.Version == AnyVersion
}

func (p *Publish) applyDefaults() {
	if p.BinDir == "" {
		p.BinDir = defaultBinDir
	}
	if p.OutputDir == "" {
		p.OutputDir = defaultOutputDir
	}
	if p.Package == nil {
		p.Package = map[string]any{}
	}
}

// StringList is a list of strings that also accepts a single string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*l = many
	return nil
}

// Manifest is the application's package.json. Arbitrary keys are kept.
type Manifest map[string]any

// Name returns the application name.
func (m Manifest) Name() string { return m.str("name") }

// Main returns the entry file.
func (m Manifest) Main() string { return m.str("main") }

func (m Manifest) str(key string) string {
	s, _ := m[key].(string)
	return s
}

// Override merges overrides into m: nested objects merge recursively, any
// other value replaces the existing one.
func (m Manifest) Override(overrides map[string]any) {
	deepMerge(m, overrides)
}

// JSON encodes the manifest as it is embedded into the archive.
func (m Manifest) JSON() ([]byte, error) {
	return json.Marshal(map[string]any(m))
}
