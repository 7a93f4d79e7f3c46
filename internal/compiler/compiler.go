// Package compiler runs the SDK script compiler (nwjc) that turns a
// JavaScript file into the V8 snapshot loaded by evalNWBin, and optionally
// prepares scripts before compilation.
package compiler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

const waitDelay = 2 * time.Second

// Sink receives the compiler's output one line at a time.
type Sink func(line string)

// FailedError reports a compiler run that exited with a non-zero status.
type FailedError struct {
	Script   string
	ExitCode int
}

// Error implements the error interface.
func (e *FailedError) Error() string {
	return fmt.Sprintf("compiler failed on '%s' with exit code %d", e.Script, e.ExitCode)
}

// Exec runs compilers as subprocesses.
type Exec struct{}

// Compile runs `compilerPath input output`, streaming the process output to
// sink line by line. It succeeds only when the compiler exits with status 0.
// No timeout is applied; a compiler that never exits blocks until ctx is
// cancelled.
func (Exec) Compile(ctx context.Context, compilerPath, input, output string, sink Sink) error {
	cmd := exec.CommandContext(ctx, compilerPath, input, output)
	// Bounds how long output copying may outlive a killed compiler.
	cmd.WaitDelay = waitDelay
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return fmt.Errorf("failed to start compiler '%s': %w", compilerPath, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		for scanner.Scan() {
			if sink != nil {
				sink(scanner.Text())
			}
		}
		// Keep draining so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, pr)
	}()

	err := cmd.Wait()
	pw.Close()
	<-done

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return &FailedError{Script: input, ExitCode: exitErr.ExitCode()}
		}
		if ctx.Err() != nil {
			return fmt.Errorf("compiling '%s' cancelled: %w", input, ctx.Err())
		}
		return fmt.Errorf("failed to run compiler on '%s': %w", input, err)
	}
	return nil
}
