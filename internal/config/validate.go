package config

import (
	"fmt"

	"github.com/aretw0/gantry/pkg/domain"
)

// Validate checks structural integrity of a parsed pipeline: job IDs are
// unique, every job has a runner label and at least one step, every step has
// a script, needs
// references resolve, and the needs graph is acyclic. Errors name the
// offending path (e.g. "jobs.lint.steps[0].run").
func Validate(p *domain.Pipeline) error {
	if p.On.Empty() {
		return fmt.Errorf("on: at least one trigger event is required")
	}
	if len(p.Jobs) == 0 {
		return fmt.Errorf("jobs: at least one job is required")
	}

	ids := make(map[string]bool, len(p.Jobs))
	for _, job := range p.Jobs {
		if ids[job.ID] {
			return fmt.Errorf("jobs.%s: duplicate job", job.ID)
		}
		ids[job.ID] = true
	}

	for _, job := range p.Jobs {
		if job.RunsOn == "" {
			return fmt.Errorf("jobs.%s.runs-on: runner label is required", job.ID)
		}
		if len(job.Steps) == 0 {
			return fmt.Errorf("jobs.%s.steps: at least one step is required", job.ID)
		}
		if job.TimeoutMinutes < 0 {
			return fmt.Errorf("jobs.%s.timeout-minutes: must not be negative", job.ID)
		}
		for i, step := range job.Steps {
			if step.Run == "" {
				return fmt.Errorf("jobs.%s.steps[%d].run: script is required", job.ID, i)
			}
		}
		for _, need := range job.Needs {
			if !ids[need] {
				return fmt.Errorf("jobs.%s.needs: unknown job %q", job.ID, need)
			}
			if need == job.ID {
				return fmt.Errorf("jobs.%s.needs: job cannot depend on itself", job.ID)
			}
		}
	}

	if cycle := findCycle(p.Jobs); cycle != "" {
		return fmt.Errorf("jobs: dependency cycle through %q", cycle)
	}
	return nil
}

// findCycle runs a three-color DFS over the needs graph and returns a job ID
// on a cycle, or "".
func findCycle(jobs []domain.Job) string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	needs := make(map[string][]string, len(jobs))
	for _, j := range jobs {
		needs[j.ID] = j.Needs
	}
	color := make(map[string]int, len(jobs))

	var visit func(id string) string
	visit = func(id string) string {
		color[id] = gray
		for _, dep := range needs[id] {
			switch color[dep] {
			case gray:
				return dep
			case white:
				if hit := visit(dep); hit != "" {
					return hit
				}
			}
		}
		color[id] = black
		return ""
	}

	for _, j := range jobs {
		if color[j.ID] == white {
			if hit := visit(j.ID); hit != "" {
				return hit
			}
		}
	}
	return ""
}
