package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/nwpack/internal/prereq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_InstallListRemove(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	e := newEnv(t)
	e.packRuntime(t)
	a, logs := SetupAppTest(t, e.config("install"))
	ctx := context.Background()

	// --- Act & Assert ---
	require.NoError(t, a.Dispatch(ctx, "install", []string{"0.50.0"}))
	assert.DirExists(t, filepath.Join(e.root, "nwjs-v0.50.0-linux-x64"))
	assert.DirExists(t, filepath.Join(e.root, "nwjs-sdk-v0.50.0-linux-x64"))
	assert.Contains(t, logs.String(), "Install complete.")

	require.NoError(t, a.Dispatch(ctx, "install", []string{"0.50.0"}))
	assert.Contains(t, logs.String(), "NW.js already installed.")

	require.NoError(t, a.Dispatch(ctx, "list", nil))
	assert.Contains(t, logs.String(), "0.50.0-sdk\n")

	require.NoError(t, a.Dispatch(ctx, "remove", []string{"0.50.0"}))
	assert.NoDirExists(t, filepath.Join(e.root, "nwjs-v0.50.0-linux-x64"))
	assert.NoDirExists(t, filepath.Join(e.root, "nwjs-sdk-v0.50.0-linux-x64"))
	assert.Contains(t, logs.String(), "Remove complete.")
}

func TestCommands_InstallWithoutVersionChoosesFromIndex(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.packRuntime(t)
	write(t, filepath.Join(e.root, "index.json"), `{"versions": [{"version": "v0.50.0"}]}`)
	p := &scriptedPrompter{answer: true}
	a, _ := SetupAppTest(t, e.config("install"), WithPrompter(p))

	require.NoError(t, a.Dispatch(context.Background(), "install", nil))
	assert.DirExists(t, filepath.Join(e.root, "nwjs-v0.50.0-linux-x64"))
}

func TestCommands_ListAllMarksInstalled(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.installRuntime(t)
	write(t, filepath.Join(e.root, "index.json"), `{"versions": [{"version": "v0.60.0"}, {"version": "v0.50.0"}]}`)
	a, logs := SetupAppTest(t, e.config("list"))

	require.NoError(t, a.Dispatch(context.Background(), "list", []string{"--all"}))

	out := logs.String()
	assert.Contains(t, out, "0.60.0\n")
	assert.Contains(t, out, "0.50.0 (installed)\n")
	assert.Contains(t, out, "0.50.0-sdk (installed)\n")

	err := a.Dispatch(context.Background(), "list", []string{"extra"})
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
}

func TestCommands_Compile(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.installRuntime(t)
	script := filepath.Join(e.project, "app.js")
	write(t, script, "app();")
	a, _ := SetupAppTest(t, e.config("compile"), WithCompiler(&fakeCompiler{}))
	ctx := context.Background()

	require.NoError(t, a.Dispatch(ctx, "compile", []string{"0.50.0", script}))
	assert.FileExists(t, filepath.Join(e.project, "app.bin"))

	out := filepath.Join(e.project, "out", "app.snapshot")
	require.NoError(t, a.Dispatch(ctx, "compile", []string{script, out}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "app();", string(data))

	var usage *UsageError
	require.ErrorAs(t, a.Dispatch(ctx, "compile", nil), &usage)
}

func TestCommands_CompileWithoutRuntime(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	p := &scriptedPrompter{answer: false}
	a, _ := SetupAppTest(t, e.config("compile"), WithPrompter(p))

	err := a.Dispatch(context.Background(), "compile", []string{"app.js"})

	pe, ok := prereq.As(err)
	require.True(t, ok)
	assert.Equal(t, prereq.NeedInstall, pe.Kind)
	assert.Equal(t, []string{"No NW.js runtime is installed. Install one?"}, p.questions)
}

func TestCommands_Init(t *testing.T) {
	e := newEnv(t)
	a, _ := SetupAppTest(t, e.config("init", e.project))
	write(t, filepath.Join(e.project, "package.json"), `{"name": "mine"}`)

	require.NoError(t, a.Dispatch(context.Background(), "init", []string{e.project}))

	assert.FileExists(t, filepath.Join(e.project, "nwjs.publish.json"))
	data, err := os.ReadFile(filepath.Join(e.project, "package.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "mine"}`, string(data), "an existing manifest is kept")
}

func TestIsVersion(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want bool
	}{
		{"0.50.0", true},
		{"v0.50.0", true},
		{"0.50.0-sdk", true},
		{"main.js", false},
		{"src/0.50.0.js", false},
		{"", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, isVersion(tc.in), tc.in)
	}
}

func TestCommands_AreListed(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"compile", "init", "install", "list", "publish", "remove"}, Commands())
}
