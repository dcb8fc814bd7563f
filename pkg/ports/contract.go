package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gantry/pkg/domain"
)

// RunStoreContract runs a suite of tests to verify that a RunStore
// implementation adheres to the defined interface contract.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()

	pipeline := &domain.Pipeline{
		Name: "contract",
		Jobs: []domain.Job{
			{ID: "lint", RunsOn: "ubuntu-latest", Steps: []domain.Step{{Run: "make lint"}}},
			{ID: "test", RunsOn: "ubuntu-latest", Steps: []domain.Step{{Run: "make test"}}},
		},
	}
	event := domain.Event{
		Type:       domain.EventPush,
		Branch:     "main",
		Commit:     "0a1b2c3d",
		ReceivedAt: time.Now().UTC().Truncate(time.Second),
	}

	t.Run("Save and Load", func(t *testing.T) {
		run := domain.NewRun("contract-run-1", pipeline, event)
		started := time.Now().UTC().Truncate(time.Second)
		run.Status = domain.StatusFailed
		run.StartedAt = &started
		run.Jobs[0].Status = domain.StatusFailed
		run.Jobs[0].Steps = []domain.StepResult{
			{Name: "make lint", Status: domain.StatusFailed, ExitCode: 1, Error: "exit status 1"},
		}

		require.NoError(t, store.Save(ctx, run), "Save should not return error")

		loaded, err := store.Load(ctx, run.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, run.ID, loaded.ID)
		assert.Equal(t, run.Pipeline, loaded.Pipeline)
		assert.Equal(t, domain.StatusFailed, loaded.Status)
		assert.Equal(t, event.Commit, loaded.Event.Commit)

		require.Len(t, loaded.Jobs, 2)
		require.Len(t, loaded.Jobs[0].Steps, 1)
		assert.Equal(t, 1, loaded.Jobs[0].Steps[0].ExitCode)
		assert.Equal(t, domain.StatusQueued, loaded.Jobs[1].Status)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		run := domain.NewRun("contract-run-2", pipeline, event)
		require.NoError(t, store.Save(ctx, run))

		run.Status = domain.StatusSucceeded
		require.NoError(t, store.Save(ctx, run))

		loaded, err := store.Load(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSucceeded, loaded.Status)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "contract-run-missing")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		run := domain.NewRun("contract-run-3", pipeline, event)
		require.NoError(t, store.Save(ctx, run))

		require.NoError(t, store.Delete(ctx, run.ID), "Delete should not return error")

		_, err := store.Load(ctx, run.ID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List newest first", func(t *testing.T) {
		older := domain.NewRun("contract-run-old", pipeline, event)
		older.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
		newer := domain.NewRun("contract-run-new", pipeline, event)
		newer.CreatedAt = time.Now().UTC().Truncate(time.Second)

		require.NoError(t, store.Save(ctx, older))
		require.NoError(t, store.Save(ctx, newer))

		defer func() {
			_ = store.Delete(ctx, older.ID)
			_ = store.Delete(ctx, newer.ID)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)

		indexOf := func(id string) int {
			for i, r := range runs {
				if r.ID == id {
					return i
				}
			}
			return -1
		}
		newIdx, oldIdx := indexOf(newer.ID), indexOf(older.ID)
		require.GreaterOrEqual(t, newIdx, 0, "newer run should be listed")
		require.GreaterOrEqual(t, oldIdx, 0, "older run should be listed")
		assert.Less(t, newIdx, oldIdx, "List should order newest first")
	})
}

// LogStoreContract verifies a LogStore implementation against the interface
// contract.
func LogStoreContract(t *testing.T, store LogStore) {
	ctx := context.Background()

	t.Run("Append and Read", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, "log-run-1", "lint", []byte("line one\n")))
		require.NoError(t, store.Append(ctx, "log-run-1", "lint", []byte("line two\n")))

		data, err := store.Read(ctx, "log-run-1", "lint")
		require.NoError(t, err)
		assert.Equal(t, "line one\nline two\n", string(data))
	})

	t.Run("Jobs are isolated", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, "log-run-2", "lint", []byte("lint output\n")))
		require.NoError(t, store.Append(ctx, "log-run-2", "test", []byte("test output\n")))

		data, err := store.Read(ctx, "log-run-2", "test")
		require.NoError(t, err)
		assert.Equal(t, "test output\n", string(data))
	})

	t.Run("Read Non-Existent", func(t *testing.T) {
		_, err := store.Read(ctx, "log-run-missing", "lint")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete removes all jobs of a run", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, "log-run-3", "lint", []byte("x")))
		require.NoError(t, store.Append(ctx, "log-run-3", "test", []byte("y")))

		require.NoError(t, store.Delete(ctx, "log-run-3"))

		_, err := store.Read(ctx, "log-run-3", "lint")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
		_, err = store.Read(ctx, "log-run-3", "test")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})
}
