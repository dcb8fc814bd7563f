package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpAdapter "github.com/aretw0/gantry/internal/adapters/http"
	"github.com/aretw0/gantry/pkg/domain"
)

// stubEngine records calls and serves canned data.
type stubEngine struct {
	lastEvent  domain.Event
	dispatched []*domain.Run
	noMatch    bool
	runs       map[string]*domain.Run
	logs       map[string]string
	cancelErr  error
}

func (s *stubEngine) Dispatch(ctx context.Context, ev domain.Event) ([]*domain.Run, error) {
	s.lastEvent = ev
	if s.noMatch {
		return nil, domain.ErrNoMatchingTrigger
	}
	return s.dispatched, nil
}

func (s *stubEngine) Runs(ctx context.Context) ([]*domain.Run, error) {
	var out []*domain.Run
	for _, r := range s.runs {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubEngine) Run(ctx context.Context, runID string) (*domain.Run, error) {
	run, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (s *stubEngine) JobLog(ctx context.Context, runID, jobID string) ([]byte, error) {
	log, ok := s.logs[runID+"/"+jobID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return []byte(log), nil
}

func (s *stubEngine) Cancel(ctx context.Context, runID string) error {
	return s.cancelErr
}

func (s *stubEngine) Pipelines() []*domain.Pipeline {
	return []*domain.Pipeline{{Name: "ci"}}
}

func newTestServer(t *testing.T, eng *stubEngine) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(httpAdapter.NewHandler(eng))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleEventPush(t *testing.T) {
	eng := &stubEngine{dispatched: []*domain.Run{{ID: "run-1"}, {ID: "run-2"}}}
	srv := newTestServer(t, eng)

	body := `{
		"ref": "refs/heads/main",
		"after": "4f2a91c0",
		"repository": {"clone_url": "https://example.com/repo.git"},
		"sender": {"login": "dev"}
	}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/events", strings.NewReader(body))
	req.Header.Set(httpAdapter.EventHeader, "push")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var decoded struct {
		Runs []string `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, []string{"run-1", "run-2"}, decoded.Runs)

	assert.Equal(t, domain.EventPush, eng.lastEvent.Type)
	assert.Equal(t, "main", eng.lastEvent.Branch, "refs/heads/ prefix is stripped")
	assert.Equal(t, "4f2a91c0", eng.lastEvent.Commit)
	assert.Equal(t, "https://example.com/repo.git", eng.lastEvent.Repo)
	assert.Equal(t, "dev", eng.lastEvent.Sender)
	assert.WithinDuration(t, time.Now(), eng.lastEvent.ReceivedAt, 5*time.Second)
}

func TestHandleEventPullRequest(t *testing.T) {
	eng := &stubEngine{dispatched: []*domain.Run{{ID: "run-1"}}}
	srv := newTestServer(t, eng)

	body := `{
		"pull_request": {
			"base": {"ref": "main", "repo": {"clone_url": "https://example.com/repo.git"}},
			"head": {"sha": "feedbeef"}
		},
		"sender": {"login": "contributor"}
	}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/events", strings.NewReader(body))
	req.Header.Set(httpAdapter.EventHeader, "pull_request")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, domain.EventPullRequest, eng.lastEvent.Type)
	assert.Equal(t, "main", eng.lastEvent.Branch, "filters apply to the target branch")
	assert.Equal(t, "feedbeef", eng.lastEvent.Commit)
}

func TestHandleEventErrors(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	t.Run("missing event header", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/events", "application/json", strings.NewReader("{}"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unsupported event type", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/events", strings.NewReader("{}"))
		req.Header.Set(httpAdapter.EventHeader, "deployment")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/events", strings.NewReader("not json"))
		req.Header.Set(httpAdapter.EventHeader, "push")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleEventNoMatch(t *testing.T) {
	srv := newTestServer(t, &stubEngine{noMatch: true})

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/events", strings.NewReader(`{"ref": "refs/heads/side"}`))
	req.Header.Set(httpAdapter.EventHeader, "push")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// An event nothing subscribes to is acknowledged, not rejected.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetRun(t *testing.T) {
	eng := &stubEngine{runs: map[string]*domain.Run{
		"run-1": {ID: "run-1", Pipeline: "ci", Status: domain.StatusSucceeded},
	}}
	srv := newTestServer(t, eng)

	t.Run("found", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/runs/run-1")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var run domain.Run
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
		assert.Equal(t, domain.StatusSucceeded, run.Status)
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/runs/run-404")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetJobLog(t *testing.T) {
	eng := &stubEngine{logs: map[string]string{"run-1/lint": "gofmt -l .\nall clean\n"}}
	srv := newTestServer(t, eng)

	resp, err := http.Get(srv.URL + "/runs/run-1/jobs/lint/log")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestCancelRun(t *testing.T) {
	t.Run("in flight", func(t *testing.T) {
		srv := newTestServer(t, &stubEngine{})
		resp, err := http.Post(srv.URL+"/runs/run-1/cancel", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("already finished", func(t *testing.T) {
		srv := newTestServer(t, &stubEngine{cancelErr: domain.ErrRunFinished})
		resp, err := http.Post(srv.URL+"/runs/run-1/cancel", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown run", func(t *testing.T) {
		srv := newTestServer(t, &stubEngine{cancelErr: domain.ErrRunNotFound})
		resp, err := http.Post(srv.URL+"/runs/run-1/cancel", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
