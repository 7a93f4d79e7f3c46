package archive

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readZip(t *testing.T, path string) ([]string, map[string]string, []uint16) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	var methods []uint16
	contents := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		names = append(names, f.Name)
		methods = append(methods, f.Method)
		contents[f.Name] = string(data)
	}
	return names, contents, methods
}

func TestBuilder_WritesEntriesInOrderUncompressed(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	src := filepath.Join(dir, "compiled.bin")
	require.NoError(t, os.WriteFile(src, []byte{0xca, 0xfe}, 0o644))
	out := filepath.Join(dir, "bin", "app.zip")

	b := Create(out)
	manifest, err := json.Marshal(map[string]any{"name": "app", "main": "index.html"})
	require.NoError(t, err)

	// --- Act ---
	b.AppendText("package.json", string(manifest))
	b.AppendText("index.html", "<html></html>")
	b.AppendFile("js/main.bin", src)
	b.AppendFile(`./css\site.css`, src)
	require.Equal(t, 4, b.Len())
	require.NoError(t, b.Finalize())

	// --- Assert ---
	names, contents, methods := readZip(t, out)
	assert.Equal(t, []string{"package.json", "index.html", "js/main.bin", "css/site.css"}, names)
	for _, m := range methods {
		assert.Equal(t, zip.Store, m)
	}

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(contents["package.json"]), &got))
	assert.Equal(t, "app", got["name"])
	assert.Equal(t, "\xca\xfe", contents["js/main.bin"])

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the final archive should remain")
}

func TestBuilder_MissingFileFailsAtFinalize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "app.zip")
	b := Create(out)
	b.AppendText("package.json", "{}")

	// Appending a missing file is lazy and must not fail here.
	require.NotPanics(t, func() { b.AppendFile("missing.js", filepath.Join(dir, "missing.js")) })

	err := b.Finalize()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.js")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no archive should be left behind")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuilder_AppendAfterFinalizePanics(t *testing.T) {
	t.Parallel()

	b := Create(filepath.Join(t.TempDir(), "app.zip"))
	b.AppendText("package.json", "{}")
	require.NoError(t, b.Finalize())

	assert.PanicsWithValue(t, ErrFinalized, func() { b.AppendText("late.txt", "x") })
	assert.PanicsWithValue(t, ErrFinalized, func() { _ = b.Finalize() })
}

func TestBuilder_Abort(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "app.zip")
	b := Create(out)
	b.AppendText("package.json", "{}")
	b.Abort()

	assert.Panics(t, func() { b.AppendFile("x", "y") })
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}
