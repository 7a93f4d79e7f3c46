package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/nwpack/internal/ctxlog"
)

// ErrNotFound is returned when a configuration file does not exist.
var ErrNotFound = errors.New("configuration file not found")

// LoadPublish reads the first publish config found in dir and merges it
// over DefaultPublish. A missing file yields an error wrapping ErrNotFound.
func LoadPublish(ctx context.Context, dir string) (*Publish, error) {
	logger := ctxlog.FromContext(ctx)

	for _, name := range PublishFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		dec, err := DecoderFor(name)
		if err != nil {
			return nil, err
		}
		m, err := dec.Decode(name, data)
		if err != nil {
			return nil, err
		}
		fillDefaults(m, DefaultPublish())

		var p Publish
		if err := bind(m, &p); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		p.applyDefaults()
		p.Source = path
		logger.Debug("Publish config loaded.", "path", path, "version", p.Version, "html", []string(p.HTML), "files", []string(p.Files))
		return &p, nil
	}
	return nil, fmt.Errorf("%w: none of %v in '%s'", ErrNotFound, PublishFiles, dir)
}

// LoadManifest reads package.json in dir and merges it over DefaultManifest.
// A missing file yields an error wrapping ErrNotFound.
func LoadManifest(ctx context.Context, dir string) (Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	m, err := JSONDecoder{}.Decode(ManifestFile, data)
	if err != nil {
		return nil, err
	}
	fillDefaults(m, DefaultManifest())
	ctxlog.FromContext(ctx).Debug("Manifest loaded.", "path", path, "name", m["name"])
	return Manifest(m), nil
}

// WriteDefaultPublish writes the default publish config as JSON into dir.
func WriteDefaultPublish(dir string) (string, error) {
	return writeJSON(filepath.Join(dir, PublishFiles[0]), DefaultPublish())
}

// WriteDefaultManifest writes the default package.json into dir.
func WriteDefaultManifest(dir string) (string, error) {
	return writeJSON(filepath.Join(dir, ManifestFile), DefaultManifest())
}

func writeJSON(path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
