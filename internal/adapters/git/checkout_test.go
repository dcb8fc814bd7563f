package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestPlan(t *testing.T) {
	p := New()

	plan := p.plan("https://example.com/repo.git", "abc123", "/tmp/ws")
	require.Len(t, plan, 2)
	assert.Equal(t, []string{"clone", "--quiet", "https://example.com/repo.git", "/tmp/ws"}, plan[0])
	assert.Equal(t, []string{"-C", "/tmp/ws", "checkout", "--quiet", "abc123"}, plan[1])

	plan = p.plan("https://example.com/repo.git", "", "/tmp/ws")
	require.Len(t, plan, 1, "no checkout step without a commit")
}

func TestPrepareRequiresRepo(t *testing.T) {
	err := New().Prepare(context.Background(), "", "", t.TempDir())
	require.Error(t, err)
}

func TestPrepareClonesLocalRepo(t *testing.T) {
	gitBin, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git binary not available")
	}

	// Build a throwaway source repository with one commit.
	src := t.TempDir()
	runGit := func(args ...string) {
		cmd := exec.Command(gitBin, append([]string{"-C", src}, args...)...)
		cmd.Env = append(cmd.Environ(),
			"GIT_AUTHOR_NAME=gantry", "GIT_AUTHOR_EMAIL=gantry@localhost",
			"GIT_COMMITTER_NAME=gantry", "GIT_COMMITTER_EMAIL=gantry@localhost",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	runGit("init", "--quiet")
	require.NoError(t, writeFile(filepath.Join(src, "hello.txt"), "hi\n"))
	runGit("add", "hello.txt")
	runGit("commit", "--quiet", "-m", "initial")

	dest := filepath.Join(t.TempDir(), "ws")
	require.NoError(t, New().Prepare(context.Background(), src, "", dest))
	assert.FileExists(t, filepath.Join(dest, "hello.txt"))
}
