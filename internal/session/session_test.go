package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_ChangesAndRestoresWorkingDir(t *testing.T) {
	// Not parallel: mutates the process working directory.
	start := t.TempDir()
	t.Chdir(start)
	project := t.TempDir()

	s := New()
	release, err := s.Acquire("publish", project)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assertSameDir(t, project, wd)
	assert.Equal(t, Status{Busy: true, Command: "publish"}, s.Status())

	require.NoError(t, release())
	require.NoError(t, release(), "release must be idempotent")

	wd, err = os.Getwd()
	require.NoError(t, err)
	assertSameDir(t, start, wd)
	assert.False(t, s.Status().Busy)
}

func TestAcquire_SecondCallerIsBusy(t *testing.T) {
	t.Parallel()

	s := New()
	release, err := s.Acquire("compile", "")
	require.NoError(t, err)

	_, err = s.Acquire("publish", "")
	require.ErrorIs(t, err, ErrBusy)

	s.SetStage("compile scripts")
	assert.Equal(t, "compile scripts", s.Status().Stage)

	require.NoError(t, release())
	release2, err := s.Acquire("publish", "")
	require.NoError(t, err)
	require.NoError(t, release2())
}

func TestAcquire_BadDirectoryReleasesFlag(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.Acquire("publish", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.False(t, s.Status().Busy)
}

func assertSameDir(t *testing.T, want, got string) {
	t.Helper()
	w, err := filepath.EvalSymlinks(want)
	require.NoError(t, err)
	g, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, w, g)
}
