// Package engine contains the run scheduler: it turns a pipeline definition
// and a triggering event into job executions, enforcing the ordering and
// failure semantics of the definition.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/gantry/internal/logging"
	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/ports"
)

// Engine executes runs. It is stateless across runs: all run state lives in
// the RunStore, and nothing is retained in memory once a run finishes.
type Engine struct {
	executor ports.Executor
	runs     ports.RunStore
	logs     ports.LogStore
	preparer ports.WorkspacePreparer
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	labels      []string
	maxParallel int
	workRoot    string
}

// Option configures the Engine.
type Option func(*Engine)

// WithWorkspacePreparer sets the adapter that materializes job workspaces
// (e.g. a git checkout). Without one, jobs run in a bare scratch directory.
func WithWorkspacePreparer(p ports.WorkspacePreparer) Option {
	return func(e *Engine) {
		e.preparer = p
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLabels restricts which runner labels this engine accepts. Jobs whose
// runs-on is not in the set fail at scheduling. An empty set accepts any
// label, which keeps one-shot local runs working against hosted-style
// definitions ("ubuntu-latest").
func WithLabels(labels ...string) Option {
	return func(e *Engine) {
		e.labels = labels
	}
}

// WithMaxParallel bounds the number of jobs running at once. Zero means
// unlimited.
func WithMaxParallel(n int) Option {
	return func(e *Engine) {
		e.maxParallel = n
	}
}

// WithWorkRoot sets the directory under which job workspaces are created.
func WithWorkRoot(dir string) Option {
	return func(e *Engine) {
		e.workRoot = dir
	}
}

// New creates an Engine with the given executor and stores.
func New(executor ports.Executor, runs ports.RunStore, logs ports.LogStore, opts ...Option) *Engine {
	e := &Engine{
		executor: executor,
		runs:     runs,
		logs:     logs,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// execution guards one run's shared record: job goroutines mutate their own
// result entries, but persistence marshals the whole run, so every mutation
// and save goes through the same mutex.
type execution struct {
	mu  sync.Mutex
	run *domain.Run
}

func (x *execution) update(fn func()) {
	x.mu.Lock()
	defer x.mu.Unlock()
	fn()
}

func (e *Engine) save(ctx context.Context, x *execution) {
	x.mu.Lock()
	defer x.mu.Unlock()
	// Persist with a detached context so a canceled run still gets recorded.
	if err := e.runs.Save(context.WithoutCancel(ctx), x.run); err != nil {
		e.logger.Error("failed to persist run", "run", x.run.ID, "error", err)
	}
}

// Execute runs the pipeline for an already-created (queued) run and blocks
// until the run reaches a terminal status. Jobs without dependency edges run
// concurrently and in isolation; one job's failure never interrupts another.
func (e *Engine) Execute(ctx context.Context, pipeline *domain.Pipeline, run *domain.Run) error {
	x := &execution{run: run}
	logger := e.logger.With("pipeline", pipeline.Name, "run", run.ID)

	started := time.Now().UTC()
	x.update(func() {
		run.Status = domain.StatusRunning
		run.StartedAt = &started
	})
	e.save(ctx, x)
	e.fireRunEvent(ctx, e.hooks.OnRunStart, run)
	logger.Info("run started", "event", run.Event.Type, "branch", run.Event.Branch)

	// done closes when a job reaches a terminal status; dependents wait on it.
	done := make(map[string]chan struct{}, len(pipeline.Jobs))
	for _, job := range pipeline.Jobs {
		done[job.ID] = make(chan struct{})
	}

	var sem chan struct{}
	if e.maxParallel > 0 {
		sem = make(chan struct{}, e.maxParallel)
	}

	var wg sync.WaitGroup
	for i := range pipeline.Jobs {
		job := &pipeline.Jobs[i]
		result := run.JobResult(job.ID)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(done[job.ID])

			status, ok := e.awaitNeeds(ctx, x, job, done)
			if !ok {
				e.settle(ctx, x, run, result, status)
				return
			}

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					e.settle(ctx, x, run, result, domain.StatusCanceled)
					return
				}
			}

			e.runJob(ctx, x, pipeline, job, result, logger)
		}()
	}
	wg.Wait()

	finished := time.Now().UTC()
	x.update(func() {
		run.FinishedAt = &finished
		run.Status = run.Conclude()
	})
	e.save(ctx, x)
	e.fireRunEvent(ctx, e.hooks.OnRunFinish, run)
	logger.Info("run finished", "status", run.Status, "duration", finished.Sub(started))

	return nil
}

// awaitNeeds blocks until every dependency of the job is terminal. It returns
// (StatusRunning, true) when the job may start, or the status the job should
// take instead: skipped when a dependency did not succeed, canceled when the
// run was canceled while waiting.
func (e *Engine) awaitNeeds(ctx context.Context, x *execution, job *domain.Job, done map[string]chan struct{}) (domain.Status, bool) {
	for _, need := range job.Needs {
		select {
		case <-done[need]:
		case <-ctx.Done():
			return domain.StatusCanceled, false
		}
	}

	skip := false
	x.update(func() {
		for _, need := range job.Needs {
			if dep := x.run.JobResult(need); dep != nil && dep.Status != domain.StatusSucceeded {
				skip = true
				return
			}
		}
	})
	if skip {
		return domain.StatusSkipped, false
	}
	return domain.StatusRunning, true
}

// settle records a terminal status for a job that never started running:
// skipped after a failed dependency, or canceled while waiting. It stamps
// FinishedAt and fires OnJobFinish just like the normal finish path.
func (e *Engine) settle(ctx context.Context, x *execution, run *domain.Run, result *domain.JobResult, status domain.Status) {
	now := time.Now().UTC()
	x.update(func() {
		result.Status = status
		result.FinishedAt = &now
	})
	e.save(ctx, x)
	e.fireJobEvent(ctx, e.hooks.OnJobFinish, run, result)
}

func (e *Engine) fireRunEvent(ctx context.Context, hook func(context.Context, *domain.RunEvent), run *domain.Run) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.RunEvent{
		Timestamp: time.Now().UTC(),
		RunID:     run.ID,
		Pipeline:  run.Pipeline,
		Status:    run.Status,
	})
}

func (e *Engine) fireJobEvent(ctx context.Context, hook func(context.Context, *domain.JobEvent), run *domain.Run, result *domain.JobResult) {
	if hook == nil {
		return
	}
	ev := &domain.JobEvent{
		Timestamp: time.Now().UTC(),
		RunID:     run.ID,
		Pipeline:  run.Pipeline,
		JobID:     result.JobID,
		Status:    result.Status,
	}
	if result.StartedAt != nil && result.FinishedAt != nil {
		ev.Duration = result.FinishedAt.Sub(*result.StartedAt)
	}
	hook(ctx, ev)
}
