package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/gantry/pkg/domain"
)

// EventHeader names the header carrying the webhook event type.
const EventHeader = "X-Gantry-Event"

// pushPayload is the subset of a push delivery we care about.
type pushPayload struct {
	Ref        string `mapstructure:"ref"`
	After      string `mapstructure:"after"`
	Repository struct {
		CloneURL string `mapstructure:"clone_url"`
	} `mapstructure:"repository"`
	Sender struct {
		Login string `mapstructure:"login"`
	} `mapstructure:"sender"`
}

// pullRequestPayload is the subset of a pull_request delivery we care about.
type pullRequestPayload struct {
	PullRequest struct {
		Base struct {
			Ref  string `mapstructure:"ref"`
			Repo struct {
				CloneURL string `mapstructure:"clone_url"`
			} `mapstructure:"repo"`
		} `mapstructure:"base"`
		Head struct {
			SHA string `mapstructure:"sha"`
		} `mapstructure:"head"`
	} `mapstructure:"pull_request"`
	Sender struct {
		Login string `mapstructure:"login"`
	} `mapstructure:"sender"`
}

// decodeEvent maps a webhook delivery to a domain event. The body is decoded
// generically first, then mapped through mapstructure so unknown provider
// fields are simply ignored.
func decodeEvent(r *http.Request) (domain.Event, error) {
	eventType := r.Header.Get(EventHeader)
	if eventType == "" {
		return domain.Event{}, fmt.Errorf("missing %s header", EventHeader)
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return domain.Event{}, fmt.Errorf("invalid event payload: %w", err)
	}

	ev := domain.Event{
		Type:       domain.EventType(eventType),
		ReceivedAt: time.Now().UTC(),
	}

	switch ev.Type {
	case domain.EventPush:
		var payload pushPayload
		if err := mapstructure.Decode(raw, &payload); err != nil {
			return domain.Event{}, fmt.Errorf("invalid push payload: %w", err)
		}
		ev.Branch = strings.TrimPrefix(payload.Ref, "refs/heads/")
		ev.Commit = payload.After
		ev.Repo = payload.Repository.CloneURL
		ev.Sender = payload.Sender.Login

	case domain.EventPullRequest:
		var payload pullRequestPayload
		if err := mapstructure.Decode(raw, &payload); err != nil {
			return domain.Event{}, fmt.Errorf("invalid pull_request payload: %w", err)
		}
		// Branch filters apply to the target branch; the checkout uses the
		// head commit.
		ev.Branch = payload.PullRequest.Base.Ref
		ev.Commit = payload.PullRequest.Head.SHA
		ev.Repo = payload.PullRequest.Base.Repo.CloneURL
		ev.Sender = payload.Sender.Login

	default:
		return domain.Event{}, fmt.Errorf("unsupported event type %q", eventType)
	}

	return ev, nil
}
