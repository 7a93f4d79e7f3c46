package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/specialistvlad/nwpack/internal/fsutil"
)

// SyntaxError reports a script rejected before it reached the compiler.
type SyntaxError struct {
	Script string
	Err    error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in '%s': %v", e.Script, e.Err)
}

// Unwrap returns the parser error.
func (e *SyntaxError) Unwrap() error { return e.Err }

// PrepareOptions selects the preparation steps applied before compiling.
type PrepareOptions struct {
	// Precheck parses the script and rejects it on syntax errors.
	Precheck bool
	// Minify rewrites the script with whitespace and syntax minification.
	// Identifiers are kept so that globals remain reachable from HTML.
	Minify bool
}

// Prepare applies opts to the script at src and returns the path that should
// be handed to the compiler. Minified output is written under workDir using
// the script's relative path; without Minify, src itself is returned.
func Prepare(src, workDir string, opts PrepareOptions) (string, error) {
	if !opts.Precheck && !opts.Minify {
		return src, nil
	}

	code, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}

	if opts.Precheck {
		if _, err := goja.Compile(src, string(code), false); err != nil {
			return "", &SyntaxError{Script: src, Err: err}
		}
	}
	if !opts.Minify {
		return src, nil
	}

	result := api.Transform(string(code), api.TransformOptions{
		Loader:           api.LoaderJS,
		Sourcefile:       src,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		line := 0
		if msg.Location != nil {
			line = msg.Location.Line
		}
		return "", &SyntaxError{Script: src, Err: fmt.Errorf("%s [line %d]", msg.Text, line)}
	}

	out := filepath.Join(workDir, fsutil.ReplaceExt(strings.TrimLeft(filepath.Clean(src), `/\`), "min.js"))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, result.Code, 0o644); err != nil {
		return "", err
	}
	return out, nil
}
