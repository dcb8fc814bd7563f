package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gantry/pkg/domain"
)

const canonical = `
name: ci
on:
  pull_request:
  push:
    branches: [main]

jobs:
  lint:
    runs-on: ubuntu-latest
    steps:
      - name: Checkout
        run: git status
      - name: Format check
        run: gofmt -l .
      - name: Lint
        run: go vet ./...
  test:
    runs-on: ubuntu-latest
    steps:
      - name: Checkout
        run: git status
      - name: Run tests
        run: go test ./...
`

func TestParseCanonicalWorkflow(t *testing.T) {
	p, err := Parse([]byte(canonical))
	require.NoError(t, err)

	assert.Equal(t, "ci", p.Name)

	// Trigger surface: any PR, pushes to main only.
	require.NotNil(t, p.On.PullRequest)
	assert.Empty(t, p.On.PullRequest.Branches)
	require.NotNil(t, p.On.Push)
	assert.Equal(t, []string{"main"}, p.On.Push.Branches)

	// Declaration order is preserved.
	require.Len(t, p.Jobs, 2)
	assert.Equal(t, "lint", p.Jobs[0].ID)
	assert.Equal(t, "test", p.Jobs[1].ID)

	lint := p.Job("lint")
	require.NotNil(t, lint)
	assert.Equal(t, "ubuntu-latest", lint.RunsOn)
	require.Len(t, lint.Steps, 3)
	assert.Equal(t, "Format check", lint.Steps[1].Name)
	assert.Equal(t, "gofmt -l .", lint.Steps[1].Run)
	assert.Empty(t, lint.Needs)
}

func TestParseTriggerShapes(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		p, err := Parse([]byte("on: push\njobs:\n  j:\n    runs-on: linux\n    steps:\n      - run: \"true\"\n"))
		require.NoError(t, err)
		require.NotNil(t, p.On.Push)
		assert.Nil(t, p.On.PullRequest)
	})

	t.Run("sequence", func(t *testing.T) {
		p, err := Parse([]byte("on: [push, pull_request]\njobs:\n  j:\n    runs-on: linux\n    steps:\n      - run: \"true\"\n"))
		require.NoError(t, err)
		assert.NotNil(t, p.On.Push)
		assert.NotNil(t, p.On.PullRequest)
	})

	t.Run("unsupported event", func(t *testing.T) {
		_, err := Parse([]byte("on: release\njobs:\n  j:\n    runs-on: linux\n    steps:\n      - run: \"true\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported event "release"`)
	})
}

func TestParseNeeds(t *testing.T) {
	src := `
on: push
jobs:
  build:
    runs-on: linux
    steps:
      - run: make build
  package:
    runs-on: linux
    needs: build
    steps:
      - run: make package
  deploy:
    runs-on: linux
    needs: [build, package]
    steps:
      - run: make deploy
`
	p, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"build"}, p.Job("package").Needs)
	assert.Equal(t, []string{"build", "package"}, p.Job("deploy").Needs)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing trigger",
			src:  "jobs:\n  j:\n    runs-on: linux\n    steps:\n      - run: \"true\"\n",
			want: "on:",
		},
		{
			name: "missing jobs",
			src:  "on: push\n",
			want: "jobs:",
		},
		{
			name: "missing runs-on",
			src:  "on: push\njobs:\n  lint:\n    steps:\n      - run: \"true\"\n",
			want: "jobs.lint.runs-on",
		},
		{
			name: "missing steps",
			src:  "on: push\njobs:\n  lint:\n    runs-on: linux\n",
			want: "jobs.lint.steps",
		},
		{
			name: "empty step script",
			src:  "on: push\njobs:\n  lint:\n    runs-on: linux\n    steps:\n      - name: nothing\n",
			want: "jobs.lint.steps[0].run",
		},
		{
			// YAML accepts repeated mapping keys, so the two definitions
			// would otherwise collide on one job ID at execution time.
			name: "duplicate job key",
			src: "on: push\njobs:\n" +
				"  lint:\n    runs-on: linux\n    steps:\n      - run: \"true\"\n" +
				"  lint:\n    runs-on: linux\n    steps:\n      - run: \"false\"\n",
			want: "jobs.lint: duplicate job",
		},
		{
			name: "unknown needs reference",
			src:  "on: push\njobs:\n  lint:\n    runs-on: linux\n    needs: [ghost]\n    steps:\n      - run: \"true\"\n",
			want: `unknown job "ghost"`,
		},
		{
			name: "self dependency",
			src:  "on: push\njobs:\n  lint:\n    runs-on: linux\n    needs: lint\n    steps:\n      - run: \"true\"\n",
			want: "depend on itself",
		},
		{
			name: "dependency cycle",
			src: "on: push\njobs:\n" +
				"  a:\n    runs-on: linux\n    needs: b\n    steps:\n      - run: \"true\"\n" +
				"  b:\n    runs-on: linux\n    needs: a\n    steps:\n      - run: \"true\"\n",
			want: "dependency cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDefaultsNameFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nightly.yml")
	src := "on: push\njobs:\n  j:\n    runs-on: linux\n    steps:\n      - run: \"true\"\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nightly", p.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestParseJobDefaults(t *testing.T) {
	src := `
on: push
jobs:
  j:
    runs-on: linux
    timeout-minutes: 5
    steps:
      - run: sleep 1
        continue-on-error: true
        working-directory: sub
        shell: bash
`
	p, err := Parse([]byte(src))
	require.NoError(t, err)

	j := p.Job("j")
	require.NotNil(t, j)
	assert.Equal(t, 5, j.TimeoutMinutes)

	step := j.Steps[0]
	assert.True(t, step.ContinueOnError)
	assert.Equal(t, "sub", step.WorkingDirectory)
	assert.Equal(t, "bash", step.Shell)

	// Engine-facing defaults live on the domain types.
	assert.Equal(t, 5*60, int(j.Timeout().Seconds()))
	assert.Equal(t, domain.DefaultTimeoutMinutes*60,
		int((&domain.Job{}).Timeout().Seconds()))
}
