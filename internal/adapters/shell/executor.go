// Package shell implements ports.Executor on top of a local shell process.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/aretw0/gantry/pkg/ports"
)

// Executor runs step scripts through a shell interpreter ("sh -c script").
// Scripts are opaque to the engine: the shell's exit code is the only contract.
type Executor struct {
	// Interpreters maps shell names to binaries ("sh" -> "/bin/sh").
	// Unknown names resolve through PATH, so the zero value is usable.
	Interpreters map[string]string
}

// New creates an Executor with default interpreter resolution.
func New() *Executor {
	return &Executor{}
}

// Run executes the command and returns its exit code.
// A non-zero exit code is returned with a nil error; err is non-nil only when
// the process could not start or was terminated by the context.
func (e *Executor) Run(ctx context.Context, cmd ports.Command) (int, error) {
	shell := cmd.Shell
	if shell == "" {
		return 0, fmt.Errorf("command shell must be set")
	}
	if bin, ok := e.Interpreters[shell]; ok {
		shell = bin
	}

	proc := exec.CommandContext(ctx, shell, "-c", cmd.Script)
	proc.Dir = cmd.Dir
	proc.Env = append(os.Environ(), cmd.Env...)
	if cmd.Output != nil {
		proc.Stdout = cmd.Output
		proc.Stderr = cmd.Output
	}

	err := proc.Run()
	if err == nil {
		return 0, nil
	}

	// Prefer the context error: a killed process reports an opaque exit
	// status, but the caller needs to distinguish timeout/cancel.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to start %q: %w", shell, err)
}
