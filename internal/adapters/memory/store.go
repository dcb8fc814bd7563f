// Package memory provides in-memory stores, used for tests and one-shot
// local runs where persistence is not wanted.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/gantry/pkg/domain"
)

// Store implements ports.RunStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	runs map[string][]byte
}

// New creates an empty in-memory run store.
func New() *Store {
	return &Store{runs: make(map[string][]byte)}
}

// Save persists a deep copy of the run (via JSON), so later mutations of the
// caller's value do not leak into the store.
func (s *Store) Save(ctx context.Context, run *domain.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = data
	return nil
}

// Load retrieves a run by ID.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Run, error) {
	s.mu.RLock()
	data, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrRunNotFound
	}

	var run domain.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", runID, err)
	}
	return &run, nil
}

// Delete removes a run. Deleting a missing run is not an error.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	return nil
}

// List returns all runs, newest first.
func (s *Store) List(ctx context.Context) ([]*domain.Run, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	runs := make([]*domain.Run, 0, len(ids))
	for _, id := range ids {
		run, err := s.Load(ctx, id)
		if err != nil {
			if err == domain.ErrRunNotFound {
				continue // deleted concurrently
			}
			return nil, err
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}
