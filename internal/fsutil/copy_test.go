package fsutil

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile_CreatesParentsAndKeepsMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "nw")
	require.NoError(t, os.WriteFile(src, []byte("launcher"), 0o755))

	dst := filepath.Join(dir, "out", "deep", "nw")
	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "launcher", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyFile_MissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestAppendFileTo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "part")
	require.NoError(t, os.WriteFile(src, []byte("tail"), 0o644))

	buf := bytes.NewBufferString("head-")
	n, err := AppendFileTo(buf, src)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, "head-tail", buf.String())
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "app.exe")

	err := WriteFileAtomic(path, 0o755, func(w io.Writer) error {
		_, err := io.WriteString(w, "payload")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestWriteFileAtomic_FailureLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "app.exe")
	boom := errors.New("boom")

	err := WriteFileAtomic(path, 0o755, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
