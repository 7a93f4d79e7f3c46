package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/nwpack/internal/runtime"
)

// Environment variables providing configuration defaults.
const (
	EnvHome       = "NWPACK_HOME"
	EnvArchiveDir = "NWPACK_ARCHIVE_DIR"
	EnvPlatform   = "NWPACK_PLATFORM"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string
	Args    []string

	LogFormat   string
	LogLevel    string
	StatusPort  int
	ProgressURL string
	AssumeYes   bool

	RuntimeRoot string // installed runtimes
	ArchiveDir  string // runtime archives available to install
	Platform    string // target platform, "os-arch"
}

// NewConfig validates cfg and fills in defaults. Runtime paths are made
// absolute because commands change the working directory.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		return nil, errors.New("a command is required")
	}
	if _, ok := commands[cfg.Command]; !ok {
		return nil, fmt.Errorf("unknown command '%s'", cfg.Command)
	}
	if cfg.StatusPort < 0 {
		return nil, errors.New("status port cannot be negative")
	}

	if cfg.Platform == "" {
		cfg.Platform = runtime.CurrentPlatform().String()
	} else if _, err := runtime.ParsePlatform(cfg.Platform); err != nil {
		return nil, err
	}

	if cfg.RuntimeRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine the default runtime directory, set %s: %w", EnvHome, err)
		}
		cfg.RuntimeRoot = filepath.Join(home, ".nwpack", "runtimes")
	}
	var err error
	if cfg.RuntimeRoot, err = filepath.Abs(cfg.RuntimeRoot); err != nil {
		return nil, err
	}
	if cfg.ArchiveDir != "" {
		if cfg.ArchiveDir, err = filepath.Abs(cfg.ArchiveDir); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}
