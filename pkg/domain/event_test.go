package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerMatches(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		event   Event
		want    bool
	}{
		{
			name:    "push to main with branch filter",
			trigger: Trigger{Push: &TriggerRule{Branches: []string{"main"}}},
			event:   Event{Type: EventPush, Branch: "main"},
			want:    true,
		},
		{
			name:    "push to feature branch filtered out",
			trigger: Trigger{Push: &TriggerRule{Branches: []string{"main"}}},
			event:   Event{Type: EventPush, Branch: "feature/x"},
			want:    false,
		},
		{
			name:    "push with empty filter matches any branch",
			trigger: Trigger{Push: &TriggerRule{}},
			event:   Event{Type: EventPush, Branch: "anything"},
			want:    true,
		},
		{
			name:    "pull request without rule does not match",
			trigger: Trigger{Push: &TriggerRule{Branches: []string{"main"}}},
			event:   Event{Type: EventPullRequest, Branch: "main"},
			want:    false,
		},
		{
			name:    "pull request filters on target branch",
			trigger: Trigger{PullRequest: &TriggerRule{Branches: []string{"main"}}},
			event:   Event{Type: EventPullRequest, Branch: "main"},
			want:    true,
		},
		{
			name:    "unknown event type never matches",
			trigger: Trigger{Push: &TriggerRule{}, PullRequest: &TriggerRule{}},
			event:   Event{Type: EventType("tag"), Branch: "main"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trigger.Matches(tt.event))
		})
	}
}

func TestTriggerEmpty(t *testing.T) {
	assert.True(t, Trigger{}.Empty())
	assert.False(t, Trigger{Push: &TriggerRule{}}.Empty())
}
