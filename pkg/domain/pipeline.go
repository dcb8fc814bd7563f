package domain

import "time"

// Default shells and limits applied when a definition leaves them out.
const (
	// DefaultShell interprets step scripts when no shell is declared.
	DefaultShell = "sh"

	// DefaultTimeoutMinutes bounds a job that declares no timeout.
	DefaultTimeoutMinutes = 60
)

// Pipeline is a workflow definition: the trigger surface and the jobs to run.
type Pipeline struct {
	// Name identifies the pipeline. Defaults to the definition file name.
	Name string `json:"name" yaml:"name"`

	// On declares which repository events create a run.
	On Trigger `json:"on" yaml:"on"`

	// Jobs holds the job definitions in declaration order.
	// Order is presentational only; execution order is governed by Needs.
	Jobs []Job `json:"jobs" yaml:"jobs"`
}

// Job returns the job with the given ID, or nil if it does not exist.
func (p *Pipeline) Job(id string) *Job {
	for i := range p.Jobs {
		if p.Jobs[i].ID == id {
			return &p.Jobs[i]
		}
	}
	return nil
}

// Job is an independently scheduled unit of work. Jobs share no state; unless
// linked by Needs they have no ordering dependency and may run concurrently.
type Job struct {
	// ID is the job's key in the definition (e.g. "lint", "test").
	ID string `json:"id" yaml:"id"`

	// Name is an optional display name. Defaults to ID.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// RunsOn is an opaque runner label (e.g. "ubuntu-latest"). The engine
	// matches it against its advertised label set.
	RunsOn string `json:"runs_on" yaml:"runs-on"`

	// Needs lists job IDs that must succeed before this job starts.
	// A failed or skipped dependency causes this job to be skipped.
	Needs []string `json:"needs,omitempty" yaml:"needs,omitempty"`

	// Env is added to the environment of every step in the job.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// TimeoutMinutes bounds the total runtime of the job.
	TimeoutMinutes int `json:"timeout_minutes,omitempty" yaml:"timeout-minutes,omitempty"`

	// Steps execute strictly in declared order.
	Steps []Step `json:"steps" yaml:"steps"`
}

// DisplayName returns Name if set, otherwise the job ID.
func (j *Job) DisplayName() string {
	if j.Name != "" {
		return j.Name
	}
	return j.ID
}

// Timeout returns the declared timeout, or the default when none is set.
func (j *Job) Timeout() time.Duration {
	minutes := j.TimeoutMinutes
	if minutes <= 0 {
		minutes = DefaultTimeoutMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Step is a single shell invocation inside a job. A non-zero exit fails the
// job and skips the remaining steps, unless ContinueOnError is set.
type Step struct {
	// Name is an optional display name. Defaults to the first line of Run.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Run is the script passed to the shell.
	Run string `json:"run" yaml:"run"`

	// Shell overrides the interpreter (default "sh").
	Shell string `json:"shell,omitempty" yaml:"shell,omitempty"`

	// Env is added to the step's environment, over the job Env.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// WorkingDirectory is resolved relative to the job workspace.
	WorkingDirectory string `json:"working_directory,omitempty" yaml:"working-directory,omitempty"`

	// ContinueOnError lets the job proceed past a failure of this step.
	ContinueOnError bool `json:"continue_on_error,omitempty" yaml:"continue-on-error,omitempty"`
}

// DisplayName returns Name if set, otherwise a label derived from the script.
func (s *Step) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	for i := 0; i < len(s.Run); i++ {
		if s.Run[i] == '\n' {
			return s.Run[:i]
		}
	}
	return s.Run
}
