package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Command(t *testing.T) {
	// --- Arrange ---
	t.Setenv("NWPACK_HOME", "")
	t.Setenv("NWPACK_ARCHIVE_DIR", "")
	t.Setenv("NWPACK_PLATFORM", "")
	root := t.TempDir()
	args := []string{"--log-format", "JSON", "-y", "--runtime-root", root, "--platform", "osx-x64", "list", "--all"}

	// --- Act ---
	cfg, exit, err := Parse(args, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, "list", cfg.Command)
	assert.Equal(t, []string{"--all"}, cfg.Args)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.AssumeYes)
	assert.Equal(t, root, cfg.RuntimeRoot)
	assert.Equal(t, "osx-x64", cfg.Platform)
}

func TestParse_EnvironmentDefaults(t *testing.T) {
	root := t.TempDir()
	archives := t.TempDir()
	t.Setenv("NWPACK_HOME", root)
	t.Setenv("NWPACK_ARCHIVE_DIR", archives)
	t.Setenv("NWPACK_PLATFORM", "win-ia32")

	cfg, _, err := Parse([]string{"install", "0.50.0"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, root, cfg.RuntimeRoot)
	assert.Equal(t, archives, cfg.ArchiveDir)
	assert.Equal(t, "win-ia32", cfg.Platform)
	assert.Equal(t, []string{"0.50.0"}, cfg.Args)
	assert.True(t, filepath.IsAbs(cfg.RuntimeRoot))
}

func TestParse_UsageExits(t *testing.T) {
	for _, args := range [][]string{nil, {"-h"}, {"help"}} {
		var out bytes.Buffer
		cfg, exit, err := Parse(args, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
		assert.Contains(t, out.String(), "publish [dir]")
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"--nope", "list"}, "flag provided but not defined: -nope"},
		{"bad log format", []string{"--log-format", "xml", "list"}, "invalid log-format"},
		{"bad log level", []string{"--log-level", "loud", "list"}, "invalid log-level"},
		{"unknown command", []string{"deploy"}, "unknown command 'deploy'"},
		{"bad platform", []string{"--platform", "beos", "list"}, "invalid platform"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
