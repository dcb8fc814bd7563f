package domain

import "time"

// EventType identifies the kind of repository event.
type EventType string

const (
	EventPush        EventType = "push"
	EventPullRequest EventType = "pull_request"
)

// Event is a repository event delivered to the engine. Each event that matches
// a pipeline's trigger surface creates exactly one run of that pipeline.
type Event struct {
	// Type is "push" or "pull_request".
	Type EventType `json:"type"`

	// Branch is the pushed branch for push events, or the target (base)
	// branch for pull requests.
	Branch string `json:"branch,omitempty"`

	// Commit is the SHA the run should check out.
	Commit string `json:"commit,omitempty"`

	// Repo is the clone URL or local path of the repository.
	Repo string `json:"repo,omitempty"`

	// Sender is an optional actor identifier, for reporting only.
	Sender string `json:"sender,omitempty"`

	// ReceivedAt records when the engine accepted the event.
	ReceivedAt time.Time `json:"received_at"`
}

// Trigger declares which events create a run. A nil rule means the event type
// does not trigger at all; an empty rule matches every branch.
type Trigger struct {
	Push        *TriggerRule `json:"push,omitempty" yaml:"push,omitempty"`
	PullRequest *TriggerRule `json:"pull_request,omitempty" yaml:"pull_request,omitempty"`
}

// TriggerRule filters events of one type by branch.
type TriggerRule struct {
	// Branches restricts matching to the listed branches. Empty matches all.
	Branches []string `json:"branches,omitempty" yaml:"branches,omitempty"`
}

// Matches reports whether the event should create a run.
func (t Trigger) Matches(ev Event) bool {
	switch ev.Type {
	case EventPush:
		return t.Push.matches(ev.Branch)
	case EventPullRequest:
		return t.PullRequest.matches(ev.Branch)
	default:
		return false
	}
}

// Empty reports whether no event type is wired at all.
func (t Trigger) Empty() bool {
	return t.Push == nil && t.PullRequest == nil
}

func (r *TriggerRule) matches(branch string) bool {
	if r == nil {
		return false
	}
	if len(r.Branches) == 0 {
		return true
	}
	for _, b := range r.Branches {
		if b == branch {
			return true
		}
	}
	return false
}
