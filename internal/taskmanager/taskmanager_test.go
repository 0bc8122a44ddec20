package taskmanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

func waitForStatus(t *testing.T, m *Manager, owner string, id uuid.UUID, want Status) Task {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		task, err := m.Get(owner, id)
		require.NoError(t, err)
		if task.Status == want {
			return task
		}
		select {
		case <-deadline:
			t.Fatalf("task %s never reached status %s (last %s)", id, want, task.Status)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSubmitAndComplete(t *testing.T) {
	m := New(2, zap.NewNop())

	id, err := m.Submit("alice", func(ctx context.Context) (any, error) {
		return "done", nil
	})
	require.NoError(t, err)

	task := waitForStatus(t, m, "alice", id, StatusCompleted)
	assert.Equal(t, "done", task.Result)
}

func TestFailedTaskKeepsError(t *testing.T) {
	m := New(2, zap.NewNop())

	id, err := m.Submit("alice", func(ctx context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	require.NoError(t, err)

	task := waitForStatus(t, m, "alice", id, StatusFailed)
	assert.Equal(t, "boom", task.Message)
}

func TestGetUnknownOrForeignTask(t *testing.T) {
	m := New(2, zap.NewNop())

	_, err := m.Get("alice", uuid.New())
	assert.ErrorIs(t, err, models.ErrTaskNotFound)

	id, err := m.Submit("alice", func(ctx context.Context) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)

	// Another user must not see alice's task at all.
	_, err = m.Get("bob", id)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestSubmitLimit(t *testing.T) {
	m := New(1, zap.NewNop())
	release := make(chan struct{})

	_, err := m.Submit("alice", func(ctx context.Context) (any, error) {
		<-release
		return nil, nil
	})
	require.NoError(t, err)

	_, err = m.Submit("alice", func(ctx context.Context) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrTooManyTasks)
	close(release)
}

func TestCancelRunningTask(t *testing.T) {
	m := New(2, zap.NewNop())
	started := make(chan struct{})

	id, err := m.Submit("alice", func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)
	<-started

	require.NoError(t, m.Cancel("alice", id))
	task := waitForStatus(t, m, "alice", id, StatusCancelled)
	assert.Equal(t, StatusCancelled, task.Status)
}

func TestCleanupDropsFinishedTasks(t *testing.T) {
	m := New(2, zap.NewNop())

	id, err := m.Submit("alice", func(ctx context.Context) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)
	waitForStatus(t, m, "alice", id, StatusCompleted)

	m.Cleanup(0)

	_, err = m.Get("alice", id)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestShutdownWaitsForTasks(t *testing.T) {
	m := New(2, zap.NewNop())

	_, err := m.Submit("alice", func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, m.Shutdown(ctx))
}
