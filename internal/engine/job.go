package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/ports"
)

// runJob executes one job: label check, workspace preparation, then the steps
// in declared order. The first failing step fails the job and skips the rest,
// unless the step is marked continue-on-error.
func (e *Engine) runJob(ctx context.Context, x *execution, pipeline *domain.Pipeline, job *domain.Job, result *domain.JobResult, logger *slog.Logger) {
	run := x.run
	logger = logger.With("job", job.ID)

	started := time.Now().UTC()
	x.update(func() {
		result.Status = domain.StatusRunning
		result.StartedAt = &started
	})
	e.save(ctx, x)
	e.fireJobEvent(ctx, e.hooks.OnJobStart, run, result)

	// Set once the workspace exists; steps append markdown to this file.
	var summaryPath string

	finish := func(status domain.Status, failure string) {
		finished := time.Now().UTC()
		summary := readSummary(summaryPath)
		x.update(func() {
			result.Status = status
			result.FinishedAt = &finished
			result.Summary = summary
			result.Error = failure
		})
		e.save(ctx, x)
		e.fireJobEvent(ctx, e.hooks.OnJobFinish, run, result)
		logger.Info("job finished", "status", status, "duration", finished.Sub(started))
	}

	if !e.acceptsLabel(job.RunsOn) {
		finish(domain.StatusFailed, fmt.Sprintf("no runner matches label %q", job.RunsOn))
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, job.Timeout())
	defer cancel()

	logw := &logWriter{
		ctx:    context.WithoutCancel(ctx),
		store:  e.logs,
		runID:  run.ID,
		jobID:  job.ID,
		logger: logger,
	}

	// Isolated workspace per job. Jobs share nothing, by contract.
	workspace := filepath.Join(e.workRoot, run.ID, job.ID)
	if e.workRoot == "" {
		tmp, err := os.MkdirTemp("", "gantry-"+job.ID+"-")
		if err != nil {
			finish(domain.StatusFailed, fmt.Sprintf("failed to create workspace: %v", err))
			return
		}
		workspace = tmp
		defer os.RemoveAll(tmp)
	} else if err := os.MkdirAll(workspace, 0o755); err != nil {
		finish(domain.StatusFailed, fmt.Sprintf("failed to create workspace: %v", err))
		return
	}

	// The summary file lives next to the workspace, not inside it, so a
	// checkout into an empty directory stays possible.
	summaryPath = workspace + ".summary.md"
	defer os.Remove(summaryPath)

	if e.preparer != nil && run.Event.Repo != "" {
		fmt.Fprintf(logw, "Preparing workspace (%s @ %s)\n", run.Event.Repo, shortCommit(run.Event.Commit))
		if err := e.preparer.Prepare(jobCtx, run.Event.Repo, run.Event.Commit, workspace); err != nil {
			if ctx.Err() != nil {
				finish(domain.StatusCanceled, "")
				return
			}
			finish(domain.StatusFailed, fmt.Sprintf("workspace preparation failed: %v", err))
			return
		}
	}

	env := e.jobEnv(run, job, workspace, summaryPath)

	failed := false
	for i := range job.Steps {
		step := &job.Steps[i]

		if failed {
			x.update(func() {
				result.Steps = append(result.Steps, domain.StepResult{
					Name:   step.DisplayName(),
					Status: domain.StatusSkipped,
				})
			})
			continue
		}

		stepResult := e.runStep(jobCtx, run, job, step, workspace, env, logw)
		x.update(func() {
			result.Steps = append(result.Steps, stepResult)
		})
		e.save(ctx, x)
		e.fireStepEvent(ctx, run, job, &stepResult)

		switch stepResult.Status {
		case domain.StatusCanceled:
			if ctx.Err() != nil {
				finish(domain.StatusCanceled, "")
			} else {
				// Job-level timeout, not a run cancellation.
				finish(domain.StatusFailed, fmt.Sprintf("job timed out after %s", job.Timeout()))
			}
			return
		case domain.StatusFailed:
			if !step.ContinueOnError {
				failed = true
			}
		}
	}

	if failed {
		finish(domain.StatusFailed, "")
		return
	}
	finish(domain.StatusSucceeded, "")
}

// runStep executes a single step and records its outcome.
func (e *Engine) runStep(ctx context.Context, run *domain.Run, job *domain.Job, step *domain.Step, workspace string, baseEnv []string, logw *logWriter) domain.StepResult {
	name := step.DisplayName()
	started := time.Now().UTC()
	result := domain.StepResult{
		Name:      name,
		Status:    domain.StatusRunning,
		StartedAt: &started,
	}

	fmt.Fprintf(logw, "--- %s\n", name)

	shell := step.Shell
	if shell == "" {
		shell = domain.DefaultShell
	}

	dir := workspace
	if step.WorkingDirectory != "" {
		dir = filepath.Join(workspace, step.WorkingDirectory)
	}

	env := append(make([]string, 0, len(baseEnv)+len(step.Env)), baseEnv...)
	for k, v := range step.Env {
		env = append(env, k+"="+v)
	}

	code, err := e.executor.Run(ctx, ports.Command{
		Script: step.Run,
		Shell:  shell,
		Dir:    dir,
		Env:    env,
		Output: logw,
	})

	finished := time.Now().UTC()
	result.FinishedAt = &finished
	result.ExitCode = code

	switch {
	case err == nil && code == 0:
		result.Status = domain.StatusSucceeded
	case err == nil:
		// Non-zero exit is the step's own verdict.
		result.Status = domain.StatusFailed
		result.Error = fmt.Sprintf("exit status %d", code)
		fmt.Fprintf(logw, "--- %s failed with exit status %d\n", name, code)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		result.Status = domain.StatusCanceled
		result.Error = err.Error()
	default:
		result.Status = domain.StatusFailed
		result.Error = err.Error()
		fmt.Fprintf(logw, "--- %s error: %v\n", name, err)
	}
	return result
}

// jobEnv assembles the environment for a job's steps: CI conventions first,
// then the job's own env block. Step env is layered on top per step.
func (e *Engine) jobEnv(run *domain.Run, job *domain.Job, workspace, summaryPath string) []string {
	env := []string{
		"CI=true",
		"GANTRY_PIPELINE=" + run.Pipeline,
		"GANTRY_RUN_ID=" + run.ID,
		"GANTRY_JOB=" + job.ID,
		"GANTRY_EVENT=" + string(run.Event.Type),
		"GANTRY_BRANCH=" + run.Event.Branch,
		"GANTRY_COMMIT=" + run.Event.Commit,
		"GANTRY_WORKSPACE=" + workspace,
		"GANTRY_STEP_SUMMARY=" + summaryPath,
	}
	for k, v := range job.Env {
		env = append(env, k+"="+v)
	}
	return env
}

// acceptsLabel reports whether this engine can host a job with the label.
// An engine configured without labels accepts anything.
func (e *Engine) acceptsLabel(label string) bool {
	if len(e.labels) == 0 {
		return true
	}
	for _, l := range e.labels {
		if l == label {
			return true
		}
	}
	return false
}

func (e *Engine) fireStepEvent(ctx context.Context, run *domain.Run, job *domain.Job, result *domain.StepResult) {
	if e.hooks.OnStepFinish == nil {
		return
	}
	ev := &domain.StepEvent{
		Timestamp: time.Now().UTC(),
		RunID:     run.ID,
		Pipeline:  run.Pipeline,
		JobID:     job.ID,
		StepName:  result.Name,
		Status:    result.Status,
		ExitCode:  result.ExitCode,
	}
	if result.StartedAt != nil && result.FinishedAt != nil {
		ev.Duration = result.FinishedAt.Sub(*result.StartedAt)
	}
	e.hooks.OnStepFinish(ctx, ev)
}

// maxSummarySize bounds how much step-summary markdown a job may attach.
const maxSummarySize = 64 << 10

func readSummary(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if len(data) > maxSummarySize {
		data = data[:maxSummarySize]
	}
	return string(data)
}

func shortCommit(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	if sha == "" {
		return "HEAD"
	}
	return sha
}

// logWriter streams step output into the LogStore. Log backpressure must not
// fail a build, so append errors are logged and swallowed.
type logWriter struct {
	ctx    context.Context
	store  ports.LogStore
	runID  string
	jobID  string
	logger *slog.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	if err := w.store.Append(w.ctx, w.runID, w.jobID, p); err != nil {
		w.logger.Warn("failed to append step output", "error", err)
	}
	return len(p), nil
}
