package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_InitWritesDefaults(t *testing.T) {
	// --- Arrange ---
	project := t.TempDir()
	args := []string{"--runtime-root", t.TempDir(), "--platform", "linux-x64", "init", project}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(project, "nwjs.publish.json"))
	data, err := os.ReadFile(filepath.Join(project, "package.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"name": "untitled", "main": "index.html"}`, string(data))
}

func TestRun_CommandError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Removing with an invalid version text fails inside the command.
	args := []string{"--runtime-root", t.TempDir(), "--platform", "linux-x64", "--yes", "remove", "v"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty version")
}
