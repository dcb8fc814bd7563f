// Package git implements ports.WorkspacePreparer using the git binary.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Preparer clones a repository into a job workspace and checks out the
// event's commit. Each job gets its own clone: jobs are isolated by contract,
// so no worktree sharing is attempted.
type Preparer struct {
	// Binary is the git executable. Defaults to "git".
	Binary string
}

// New creates a Preparer using the git binary from PATH.
func New() *Preparer {
	return &Preparer{Binary: "git"}
}

// Prepare clones repo into dir and checks out commit. An empty commit leaves
// the clone at the remote default branch.
func (p *Preparer) Prepare(ctx context.Context, repo, commit, dir string) error {
	if repo == "" {
		return fmt.Errorf("repository URL or path is required")
	}

	for _, args := range p.plan(repo, commit, dir) {
		if err := p.run(ctx, args); err != nil {
			return err
		}
	}
	return nil
}

// plan returns the git invocations for a checkout. Split out for testing.
func (p *Preparer) plan(repo, commit, dir string) [][]string {
	plan := [][]string{
		{"clone", "--quiet", repo, dir},
	}
	if commit != "" {
		plan = append(plan, []string{"-C", dir, "checkout", "--quiet", commit})
	}
	return plan
}

func (p *Preparer) run(ctx context.Context, args []string) error {
	bin := p.Binary
	if bin == "" {
		bin = "git"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("git %s: %w: %s", args[0], err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}
