package ports

import (
	"context"

	"github.com/aretw0/gantry/pkg/domain"
)

// RunStore defines the interface for persisting run records.
// Stores must round-trip runs losslessly.
type RunStore interface {
	// Save persists the run, overwriting any previous record with the same ID.
	Save(ctx context.Context, run *domain.Run) error

	// Load retrieves a run by ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Run, error)

	// Delete removes a run record.
	Delete(ctx context.Context, runID string) error

	// List returns all stored runs, newest first.
	List(ctx context.Context) ([]*domain.Run, error)
}

// LogStore persists captured step output, keyed by run and job.
type LogStore interface {
	// Append adds output to the job's log.
	Append(ctx context.Context, runID, jobID string, p []byte) error

	// Read returns the job's full log.
	// Returns domain.ErrRunNotFound if nothing was written for the pair.
	Read(ctx context.Context, runID, jobID string) ([]byte, error)

	// Delete removes all logs for a run.
	Delete(ctx context.Context, runID string) error
}
