// Package http exposes the engine over a JSON API: webhook event intake,
// run inspection, job logs, and cancellation.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/gantry/pkg/domain"
)

// Engine defines the surface the API needs from the Gantry core.
type Engine interface {
	Dispatch(ctx context.Context, ev domain.Event) ([]*domain.Run, error)
	Runs(ctx context.Context) ([]*domain.Run, error)
	Run(ctx context.Context, runID string) (*domain.Run, error)
	JobLog(ctx context.Context, runID, jobID string) ([]byte, error)
	Cancel(ctx context.Context, runID string) error
	Pipelines() []*domain.Pipeline
}

// Server carries the handler dependencies.
type Server struct {
	engine  Engine
	metrics http.Handler
}

// ServerOption configures the handler.
type ServerOption func(*Server)

// WithMetricsHandler mounts a metrics endpoint (e.g. promhttp.Handler())
// at GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...ServerOption) http.Handler {
	s := &Server{engine: engine}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/events", s.handleEvent)
	r.Get("/pipelines", s.listPipelines)
	r.Get("/runs", s.listRuns)
	r.Get("/runs/{id}", s.getRun)
	r.Get("/runs/{id}/jobs/{job}/log", s.getJobLog)
	r.Post("/runs/{id}/cancel", s.cancelRun)
	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// handleEvent accepts a webhook delivery and schedules runs for every
// matching pipeline. The event type comes from the X-Gantry-Event header,
// mirroring the usual webhook convention.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := decodeEvent(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	runs, err := s.engine.Dispatch(r.Context(), ev)
	if err != nil {
		if errors.Is(err, domain.ErrNoMatchingTrigger) {
			// Not a client error: the event was fine, nothing subscribes to it.
			writeJSON(w, http.StatusOK, map[string]any{"runs": []any{}})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"runs": ids})
}

func (s *Server) listPipelines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Pipelines())
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.engine.Runs(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": runs,
		"total": len(runs),
	})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.engine.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) getJobLog(w http.ResponseWriter, r *http.Request) {
	data, err := s.engine.JobLog(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "job"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrRunNotFound) || errors.Is(err, domain.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) cancelRun(w http.ResponseWriter, r *http.Request) {
	err := s.engine.Cancel(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "canceling"})
	case errors.Is(err, domain.ErrRunNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrRunFinished):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
