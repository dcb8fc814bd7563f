package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/gantry/pkg/domain"
)

// LogStore implements ports.LogStore using one file per run/job pair,
// laid out as <base>/<runID>/<jobID>.log.
type LogStore struct {
	BasePath string
}

// NewLogStore creates a LogStore rooted at basePath.
// If basePath is empty, it defaults to ".gantry/logs".
func NewLogStore(basePath string) *LogStore {
	if basePath == "" {
		basePath = filepath.Join(".gantry", "logs")
	}
	return &LogStore{BasePath: basePath}
}

func (s *LogStore) path(runID, jobID string) string {
	return filepath.Join(s.BasePath, runID, jobID+".log")
}

// Append adds output to the job's log file, creating it as needed.
func (s *LogStore) Append(ctx context.Context, runID, jobID string, p []byte) error {
	if runID == "" || jobID == "" {
		return fmt.Errorf("run and job IDs cannot be empty")
	}

	dir := filepath.Join(s.BasePath, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure log directory: %w", err)
	}

	f, err := os.OpenFile(s.path(runID, jobID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(p); err != nil {
		return fmt.Errorf("failed to append log: %w", err)
	}
	return nil
}

// Read returns the job's full log.
func (s *LogStore) Read(ctx context.Context, runID, jobID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(runID, jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	return data, nil
}

// Delete removes all logs for a run.
func (s *LogStore) Delete(ctx context.Context, runID string) error {
	if err := os.RemoveAll(filepath.Join(s.BasePath, runID)); err != nil {
		return fmt.Errorf("failed to delete run logs: %w", err)
	}
	return nil
}
