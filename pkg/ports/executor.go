package ports

import (
	"context"
	"io"
)

// Command describes a single step invocation.
type Command struct {
	// Script is the shell script to execute.
	Script string

	// Shell is the interpreter (e.g. "sh", "bash"). Must not be empty.
	Shell string

	// Dir is the working directory.
	Dir string

	// Env holds additional environment entries in "KEY=value" form,
	// appended to the host environment.
	Env []string

	// Output receives the combined stdout/stderr stream. May be nil.
	Output io.Writer
}

// Executor runs a single step command.
//
// Run returns the process exit code. A non-zero code is not an error at this
// layer; err is non-nil only when the process could not be started or was
// terminated by context cancellation or timeout.
type Executor interface {
	Run(ctx context.Context, cmd Command) (int, error)
}

// WorkspacePreparer materializes the source tree a job operates on.
type WorkspacePreparer interface {
	// Prepare populates dir with the repository content referenced by repo
	// and commit. It is called once per job, before the first step.
	Prepare(ctx context.Context, repo, commit, dir string) error
}
