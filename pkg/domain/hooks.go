package domain

import (
	"context"
	"time"
)

// RunEvent describes a run-level lifecycle transition.
type RunEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Pipeline  string    `json:"pipeline"`
	Status    Status    `json:"status"`
}

// JobEvent describes a job-level lifecycle transition.
type JobEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	RunID     string        `json:"run_id"`
	Pipeline  string        `json:"pipeline"`
	JobID     string        `json:"job_id"`
	Status    Status        `json:"status"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// StepEvent describes a step's completion.
type StepEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	RunID     string        `json:"run_id"`
	Pipeline  string        `json:"pipeline"`
	JobID     string        `json:"job_id"`
	StepName  string        `json:"step_name"`
	Status    Status        `json:"status"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. Hooks are invoked
// synchronously on the scheduling goroutine; keep them cheap.
type LifecycleHooks struct {
	OnRunStart   func(context.Context, *RunEvent)
	OnRunFinish  func(context.Context, *RunEvent)
	OnJobStart   func(context.Context, *JobEvent)
	OnJobFinish  func(context.Context, *JobEvent)
	OnStepFinish func(context.Context, *StepEvent)
}

// Merge returns hooks that invoke both receivers' callbacks in order.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart:   chainRun(h.OnRunStart, other.OnRunStart),
		OnRunFinish:  chainRun(h.OnRunFinish, other.OnRunFinish),
		OnJobStart:   chainJob(h.OnJobStart, other.OnJobStart),
		OnJobFinish:  chainJob(h.OnJobFinish, other.OnJobFinish),
		OnStepFinish: chainStep(h.OnStepFinish, other.OnStepFinish),
	}
}

func chainRun(a, b func(context.Context, *RunEvent)) func(context.Context, *RunEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *RunEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func chainJob(a, b func(context.Context, *JobEvent)) func(context.Context, *JobEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *JobEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func chainStep(a, b func(context.Context, *StepEvent)) func(context.Context, *StepEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *StepEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
