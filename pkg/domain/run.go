package domain

import "time"

// Status is the lifecycle state of a run, a job, or a step.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
	StatusSkipped   Status = "skipped"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled, StatusSkipped:
		return true
	}
	return false
}

// Run is the record of one pipeline execution for one triggering event.
// Runs are independent of each other; the engine holds no run state in memory
// once a run reaches a terminal status.
type Run struct {
	ID         string       `json:"id"`
	Pipeline   string       `json:"pipeline"`
	Event      Event        `json:"event"`
	Status     Status       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Jobs       []*JobResult `json:"jobs"`

	// Error is set when the run failed outside any job (e.g. scheduling).
	Error string `json:"error,omitempty"`
}

// NewRun creates a queued run for the given pipeline and event.
func NewRun(id string, pipeline *Pipeline, ev Event) *Run {
	run := &Run{
		ID:        id,
		Pipeline:  pipeline.Name,
		Event:     ev,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	for _, job := range pipeline.Jobs {
		run.Jobs = append(run.Jobs, &JobResult{
			JobID:  job.ID,
			Status: StatusQueued,
		})
	}
	return run
}

// JobResult returns the result entry for the given job ID, or nil.
func (r *Run) JobResult(jobID string) *JobResult {
	for _, j := range r.Jobs {
		if j.JobID == jobID {
			return j
		}
	}
	return nil
}

// Finished reports whether the run reached a terminal status.
func (r *Run) Finished() bool {
	return r.Status.Terminal()
}

// Conclude derives the run's terminal status from its job results: canceled
// wins over failed, failed over succeeded. Skipped jobs do not fail a run.
func (r *Run) Conclude() Status {
	status := StatusSucceeded
	for _, j := range r.Jobs {
		switch j.Status {
		case StatusCanceled:
			return StatusCanceled
		case StatusFailed:
			status = StatusFailed
		}
	}
	if r.Error != "" {
		return StatusFailed
	}
	return status
}

// Duration returns the wall-clock time of the run, or zero if not started.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil {
		return 0
	}
	end := time.Now().UTC()
	if r.FinishedAt != nil {
		end = *r.FinishedAt
	}
	return end.Sub(*r.StartedAt)
}

// JobResult records the outcome of one job within a run.
type JobResult struct {
	JobID      string       `json:"job_id"`
	Status     Status       `json:"status"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Steps      []StepResult `json:"steps,omitempty"`

	// Summary holds markdown the job's steps appended to their step
	// summary file, if any.
	Summary string `json:"summary,omitempty"`

	// Error describes a failure that happened outside a step's own exit
	// code (workspace preparation, timeout, unmatched runner label).
	Error string `json:"error,omitempty"`
}

// StepResult records the outcome of one step.
type StepResult struct {
	Name       string     `json:"name"`
	Status     Status     `json:"status"`
	ExitCode   int        `json:"exit_code"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}
