package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/nwpack/internal/compiler"
	"github.com/specialistvlad/nwpack/internal/fsutil"
	"github.com/specialistvlad/nwpack/internal/htmlrewrite"
	"github.com/specialistvlad/nwpack/internal/prereq"
	"github.com/specialistvlad/nwpack/internal/runtime"
)

// CompileRequest describes a single-script compilation.
type CompileRequest struct {
	// Version is the runtime version whose SDK compiler is used.
	Version runtime.Version
	// Script is the JavaScript source.
	Script string
	// Output is the compiled file. Defaults to Script with a .bin extension.
	Output string
	// Prepare selects the optional steps run before compiling.
	Prepare compiler.PrepareOptions
	// WorkDir receives prepared scripts. Defaults to "bin".
	WorkDir string
}

// Compile compiles one script with the SDK compiler of req.Version and
// returns the output path.
func (p *Pipeline) Compile(ctx context.Context, req CompileRequest) (string, error) {
	if req.Script == "" {
		return "", errors.New("no script to compile")
	}
	output := req.Output
	if output == "" {
		output = fsutil.ReplaceExt(req.Script, htmlrewrite.BinExt)
	}
	workDir := req.WorkDir
	if workDir == "" {
		workDir = "bin"
	}

	p.onStage("compile")
	p.reporter.Stage("compile")
	nwjc, ok := req.Version.SDKVersion().Compiler()
	if !ok {
		return "", prereq.Install(req.Version.Version)
	}
	p.reporter.Log(req.Script)
	if err := compileOne(ctx, p.compiler, nwjc, req.Script, output, workDir, req.Prepare, p.reporter.Log); err != nil {
		return "", fmt.Errorf("failed to compile '%s': %w", req.Script, err)
	}
	return output, nil
}
