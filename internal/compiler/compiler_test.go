package compiler

import (
	"context"
	"os"
	"path/filepath"
	goruntime "runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript writes an executable shell script standing in for nwjc.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("fake compiler scripts need a POSIX shell")
	}
	p := filepath.Join(t.TempDir(), "nwjc")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755))
	return p
}

func TestExec_Compile_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	nwjc := writeScript(t, `echo "compiling $1"
echo "warning: slow" >&2
cp "$1" "$2"
`)
	dir := t.TempDir()
	in := filepath.Join(dir, "main.js")
	out := filepath.Join(dir, "main.bin")
	require.NoError(t, os.WriteFile(in, []byte("var a = 1;"), 0o644))

	var lines []string

	// --- Act ---
	err := Exec{}.Compile(context.Background(), nwjc, in, out, func(l string) { lines = append(lines, l) })

	// --- Assert ---
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"compiling " + in, "warning: slow"}, lines)
	assert.FileExists(t, out)
}

func TestExec_Compile_NonZeroExit(t *testing.T) {
	t.Parallel()

	nwjc := writeScript(t, "echo broken\nexit 3\n")

	err := Exec{}.Compile(context.Background(), nwjc, "js/app.js", "bin/js/app.bin", nil)

	var failed *FailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "js/app.js", failed.Script)
	assert.Equal(t, 3, failed.ExitCode)
	assert.Contains(t, err.Error(), "exit code 3")
}

func TestExec_Compile_MissingCompiler(t *testing.T) {
	t.Parallel()

	err := Exec{}.Compile(context.Background(), filepath.Join(t.TempDir(), "nope"), "a.js", "a.bin", nil)
	require.Error(t, err)
	var failed *FailedError
	assert.NotErrorAs(t, err, &failed)
	assert.Contains(t, err.Error(), "failed to start compiler")
}

func TestExec_Compile_Cancelled(t *testing.T) {
	t.Parallel()

	nwjc := writeScript(t, "exec sleep 30\n")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Exec{}.Compile(ctx, nwjc, "a.js", "a.bin", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
