package taskmanager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

// ErrTooManyTasks is returned when the active task limit is reached.
var ErrTooManyTasks = errors.New("too many active tasks")

// Status of an asynchronous task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Task is the externally visible state of one submitted job.
type Task struct {
	ID        uuid.UUID `json:"task_id"`
	OwnerUser string    `json:"-"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Result    any       `json:"result,omitempty"`
	Err       error     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Func is the unit of work a task runs. The context is cancelled on task
// cancellation and manager shutdown.
type Func func(ctx context.Context) (any, error)

// Manager runs bounded in-memory asynchronous tasks and keeps their state
// for polling. It is not persistent; a restart forgets all tasks.
type Manager struct {
	mu       sync.RWMutex
	tasks    map[uuid.UUID]*taskEntry
	maxTasks int
	closing  chan struct{}
	wg       sync.WaitGroup
	logger   *zap.Logger
}

type taskEntry struct {
	task   Task
	cancel context.CancelFunc
}

// New creates a task manager allowing at most maxTasks concurrently
// pending or running tasks.
func New(maxTasks int, logger *zap.Logger) *Manager {
	if maxTasks <= 0 {
		maxTasks = 10
	}
	return &Manager{
		tasks:    make(map[uuid.UUID]*taskEntry),
		maxTasks: maxTasks,
		closing:  make(chan struct{}),
		logger:   logger.Named("TaskManager"),
	}
}

// Submit registers fn as a new task owned by ownerUser and starts it in the
// background. It fails with ErrTooManyTasks when the active limit is reached.
func (m *Manager) Submit(ownerUser string, fn Func) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.closing:
		return uuid.UUID{}, errors.New("task manager is shutting down")
	default:
	}

	active := 0
	for _, e := range m.tasks {
		if e.task.Status == StatusPending || e.task.Status == StatusRunning {
			active++
		}
	}
	if active >= m.maxTasks {
		return uuid.UUID{}, fmt.Errorf("%w: limit %d", ErrTooManyTasks, m.maxTasks)
	}

	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now().UTC()
	m.tasks[id] = &taskEntry{
		task: Task{
			ID:        id,
			OwnerUser: ownerUser,
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
		cancel: cancel,
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		m.run(ctx, id, fn)
	}()

	m.logger.Debug("Submitted task",
		zap.String("task_id", id.String()), zap.String("owner", ownerUser))
	return id, nil
}

func (m *Manager) run(ctx context.Context, id uuid.UUID, fn Func) {
	m.update(id, StatusRunning, "", nil, nil)

	result, err := fn(ctx)

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		m.logger.Info("Task cancelled", zap.String("task_id", id.String()))
		m.update(id, StatusCancelled, "cancelled", nil, ctx.Err())
		return
	}
	if err != nil {
		m.logger.Warn("Task failed", zap.String("task_id", id.String()), zap.Error(err))
		m.update(id, StatusFailed, err.Error(), nil, err)
		return
	}
	m.logger.Debug("Task completed", zap.String("task_id", id.String()))
	m.update(id, StatusCompleted, "", result, nil)
}

func (m *Manager) update(id uuid.UUID, status Status, message string, result any, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return
	}
	e.task.Status = status
	e.task.Message = message
	e.task.Result = result
	e.task.Err = err
	e.task.UpdatedAt = time.Now().UTC()
}

// Get returns a snapshot of the task owned by ownerUser.
// Unknown ids map to models.ErrTaskNotFound; an owner mismatch is reported
// the same way so task ids do not leak across users.
func (m *Manager) Get(ownerUser string, id uuid.UUID) (Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.tasks[id]
	if !ok || e.task.OwnerUser != ownerUser {
		return Task{}, fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
	}
	return e.task, nil
}

// Cancel stops a pending or running task owned by ownerUser.
func (m *Manager) Cancel(ownerUser string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok || e.task.OwnerUser != ownerUser {
		return fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
	}
	if e.task.Status != StatusPending && e.task.Status != StatusRunning {
		return fmt.Errorf("cannot cancel a task in status %s", e.task.Status)
	}
	e.cancel()
	e.task.Status = StatusCancelled
	e.task.Message = "cancelled"
	e.task.UpdatedAt = time.Now().UTC()
	return nil
}

// Cleanup drops finished tasks older than age.
func (m *Manager) Cleanup(age time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().UTC().Add(-age)
	for id, e := range m.tasks {
		switch e.task.Status {
		case StatusCompleted, StatusFailed, StatusCancelled:
			if e.task.UpdatedAt.Before(cutoff) {
				delete(m.tasks, id)
			}
		}
	}
}

// Shutdown cancels every unfinished task and waits for the workers, bounded
// by ctx.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	select {
	case <-m.closing:
	default:
		close(m.closing)
	}
	for _, e := range m.tasks {
		if e.task.Status == StatusPending || e.task.Status == StatusRunning {
			e.cancel()
		}
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.New("timed out waiting for tasks to finish")
	}
}
