package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/gantry/pkg/domain"
)

func TestRunSummary(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(42 * time.Second)

	run := &domain.Run{
		ID:       "a1b2c3d4e5f6",
		Pipeline: "ci",
		Status:   domain.StatusFailed,
		Event: domain.Event{
			Type:   domain.EventPush,
			Branch: "main",
			Commit: "4f2a91c0",
		},
		StartedAt:  &start,
		FinishedAt: &end,
		Jobs: []*domain.JobResult{
			{
				JobID:      "lint",
				Status:     domain.StatusFailed,
				StartedAt:  &start,
				FinishedAt: &end,
				Steps: []domain.StepResult{
					{Name: "fmt", Status: domain.StatusSucceeded},
					{Name: "vet", Status: domain.StatusFailed, ExitCode: 2},
					{Name: "lint", Status: domain.StatusSkipped},
				},
			},
			{JobID: "test", Status: domain.StatusSucceeded, StartedAt: &start, FinishedAt: &end},
		},
	}

	md := RunSummary(run)

	assert.Contains(t, md, "# ci (failed)")
	assert.Contains(t, md, "push")
	assert.Contains(t, md, "`main`")
	assert.Contains(t, md, "`4f2a91c0`")
	assert.Contains(t, md, "| lint | failed |")
	assert.Contains(t, md, "| test | succeeded |")
	assert.Contains(t, md, "vet (exit 2)")
	assert.Contains(t, md, "42s")
}

func TestRunSummaryIncludesJobMarkdown(t *testing.T) {
	run := &domain.Run{
		ID:       "run-1",
		Pipeline: "ci",
		Status:   domain.StatusSucceeded,
		Jobs: []*domain.JobResult{
			{JobID: "test", Status: domain.StatusSucceeded, Summary: "## Coverage\n87% of statements\n"},
		},
	}

	md := RunSummary(run)
	assert.Contains(t, md, "## Coverage")
	assert.Contains(t, md, "87% of statements")
}

func TestRunSummaryJobError(t *testing.T) {
	run := &domain.Run{
		ID:       "run-1",
		Pipeline: "ci",
		Status:   domain.StatusFailed,
		Jobs: []*domain.JobResult{
			{JobID: "lint", Status: domain.StatusFailed, Error: "job timed out after 1m0s"},
		},
	}

	md := RunSummary(run)
	assert.Contains(t, md, "> job timed out after 1m0s")
}

func TestRunSummaryUnstartedJob(t *testing.T) {
	run := &domain.Run{
		ID:       "run-1",
		Pipeline: "ci",
		Status:   domain.StatusQueued,
		Jobs: []*domain.JobResult{
			{JobID: "lint", Status: domain.StatusQueued},
		},
	}

	md := RunSummary(run)
	assert.True(t, strings.Contains(md, "| lint | queued | - |"))
}
