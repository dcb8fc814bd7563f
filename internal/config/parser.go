// Package config parses and validates Gantry workflow definitions.
//
// The file format follows the common CI YAML shape: a trigger surface ("on")
// and a map of jobs, each with a runner label and an ordered list of steps.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/gantry/pkg/domain"
)

// fileWorkflow mirrors the YAML document. "on" and "jobs" need raw nodes:
// "on" accepts three shapes and "jobs" is a map whose declaration order we keep.
type fileWorkflow struct {
	Name string    `yaml:"name"`
	On   yaml.Node `yaml:"on"`
	Jobs yaml.Node `yaml:"jobs"`
}

type fileJob struct {
	Name           string            `yaml:"name"`
	RunsOn         string            `yaml:"runs-on"`
	Needs          yaml.Node         `yaml:"needs"`
	Env            map[string]string `yaml:"env"`
	TimeoutMinutes int               `yaml:"timeout-minutes"`
	Steps          []fileStep        `yaml:"steps"`
}

type fileStep struct {
	Name             string            `yaml:"name"`
	Run              string            `yaml:"run"`
	Shell            string            `yaml:"shell"`
	Env              map[string]string `yaml:"env"`
	WorkingDirectory string            `yaml:"working-directory"`
	ContinueOnError  bool              `yaml:"continue-on-error"`
}

// Load reads and parses a workflow file. The pipeline name defaults to the
// file name without extension.
func Load(path string) (*domain.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	pipeline, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	if pipeline.Name == "" {
		base := filepath.Base(path)
		pipeline.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return pipeline, nil
}

// Parse decodes a workflow definition and validates it.
func Parse(data []byte) (*domain.Pipeline, error) {
	var doc fileWorkflow
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid workflow yaml: %w", err)
	}

	pipeline := &domain.Pipeline{Name: doc.Name}

	trigger, err := parseTrigger(&doc.On)
	if err != nil {
		return nil, err
	}
	pipeline.On = trigger

	jobs, err := parseJobs(&doc.Jobs)
	if err != nil {
		return nil, err
	}
	pipeline.Jobs = jobs

	if err := Validate(pipeline); err != nil {
		return nil, err
	}
	return pipeline, nil
}

// parseTrigger handles the three accepted shapes of "on":
//
//	on: push
//	on: [push, pull_request]
//	on: { push: { branches: [main] }, pull_request: {} }
func parseTrigger(node *yaml.Node) (domain.Trigger, error) {
	var trigger domain.Trigger

	if node.Kind == 0 || node.Tag == "!!null" {
		return trigger, fmt.Errorf("on: at least one trigger event is required")
	}

	assign := func(event string, rule *domain.TriggerRule) error {
		switch event {
		case string(domain.EventPush):
			trigger.Push = rule
		case string(domain.EventPullRequest):
			trigger.PullRequest = rule
		default:
			return fmt.Errorf("on: unsupported event %q", event)
		}
		return nil
	}

	switch node.Kind {
	case yaml.ScalarNode:
		if err := assign(node.Value, &domain.TriggerRule{}); err != nil {
			return trigger, err
		}

	case yaml.SequenceNode:
		for _, item := range node.Content {
			if err := assign(item.Value, &domain.TriggerRule{}); err != nil {
				return trigger, err
			}
		}

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			rule := &domain.TriggerRule{}
			if value.Kind == yaml.MappingNode {
				if err := value.Decode(rule); err != nil {
					return trigger, fmt.Errorf("on.%s: %w", key.Value, err)
				}
			}
			if err := assign(key.Value, rule); err != nil {
				return trigger, err
			}
		}

	default:
		return trigger, fmt.Errorf("on: expected event name, list, or mapping")
	}

	return trigger, nil
}

// parseJobs decodes the jobs mapping, preserving declaration order.
func parseJobs(node *yaml.Node) ([]domain.Job, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, fmt.Errorf("jobs: at least one job is required")
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("jobs: expected a mapping of job definitions")
	}

	var jobs []domain.Job
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var raw fileJob
		if err := value.Decode(&raw); err != nil {
			return nil, fmt.Errorf("jobs.%s: %w", key.Value, err)
		}

		needs, err := parseNeeds(&raw.Needs)
		if err != nil {
			return nil, fmt.Errorf("jobs.%s.needs: %w", key.Value, err)
		}

		job := domain.Job{
			ID:             key.Value,
			Name:           raw.Name,
			RunsOn:         raw.RunsOn,
			Needs:          needs,
			Env:            raw.Env,
			TimeoutMinutes: raw.TimeoutMinutes,
		}
		for _, s := range raw.Steps {
			job.Steps = append(job.Steps, domain.Step{
				Name:             s.Name,
				Run:              s.Run,
				Shell:            s.Shell,
				Env:              s.Env,
				WorkingDirectory: s.WorkingDirectory,
				ContinueOnError:  s.ContinueOnError,
			})
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// parseNeeds accepts a single job ID or a list of job IDs.
func parseNeeds(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var needs []string
		if err := node.Decode(&needs); err != nil {
			return nil, err
		}
		return needs, nil
	default:
		return nil, fmt.Errorf("expected a job ID or a list of job IDs")
	}
}
