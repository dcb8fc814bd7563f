package observability_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gantry/internal/observability"
	"github.com/aretw0/gantry/pkg/domain"
)

func TestMetricsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.New(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnRunStart(ctx, &domain.RunEvent{Pipeline: "ci", RunID: "r1", Status: domain.StatusRunning})
	hooks.OnStepFinish(ctx, &domain.StepEvent{Pipeline: "ci", JobID: "lint", Status: domain.StatusSucceeded, Duration: 250 * time.Millisecond})
	hooks.OnJobFinish(ctx, &domain.JobEvent{Pipeline: "ci", JobID: "lint", Status: domain.StatusFailed})
	hooks.OnRunFinish(ctx, &domain.RunEvent{Pipeline: "ci", RunID: "r1", Status: domain.StatusFailed})

	expected := strings.NewReader(`
# HELP gantry_runs_total Completed runs by pipeline and terminal status.
# TYPE gantry_runs_total counter
gantry_runs_total{pipeline="ci",status="failed"} 1
# HELP gantry_jobs_total Completed jobs by pipeline, job ID and terminal status.
# TYPE gantry_jobs_total counter
gantry_jobs_total{job="lint",pipeline="ci",status="failed"} 1
`)
	require.NoError(t, testutil.GatherAndCompare(reg, expected,
		"gantry_runs_total", "gantry_jobs_total"))

	assert.Equal(t, float64(0), testutil.ToFloat64(m.InFlight()),
		"in-flight gauge returns to zero after the run")
}
