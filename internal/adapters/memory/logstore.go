package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/gantry/pkg/domain"
)

// LogStore implements ports.LogStore in memory. Safe for concurrent use.
type LogStore struct {
	mu   sync.RWMutex
	logs map[string]map[string][]byte // runID -> jobID -> log
}

// NewLogStore creates an empty in-memory log store.
func NewLogStore() *LogStore {
	return &LogStore{logs: make(map[string]map[string][]byte)}
}

// Append adds output to the job's log.
func (s *LogStore) Append(ctx context.Context, runID, jobID string, p []byte) error {
	if runID == "" || jobID == "" {
		return fmt.Errorf("run and job IDs cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	jobs, ok := s.logs[runID]
	if !ok {
		jobs = make(map[string][]byte)
		s.logs[runID] = jobs
	}
	jobs[jobID] = append(jobs[jobID], p...)
	return nil
}

// Read returns a copy of the job's log.
func (s *LogStore) Read(ctx context.Context, runID, jobID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.logs[runID][jobID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Delete removes all logs for a run.
func (s *LogStore) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, runID)
	return nil
}
