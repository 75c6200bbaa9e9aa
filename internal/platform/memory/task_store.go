package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/store"
)

// TaskStore implements the store.TaskStore interface on top of an EntityStore.
type TaskStore struct {
	tasks  *EntityStore[*domain.Task]
	logger *slog.Logger
}

// NewTaskStore creates an empty in-memory task store.
// If logger is nil, a default logger will be used.
func NewTaskStore(log *slog.Logger, opts ...Option) *TaskStore {
	if log == nil {
		log = slog.Default()
	}
	return &TaskStore{
		tasks:  NewEntityStore[*domain.Task](opts...),
		logger: log.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return invalidEntity("task", "create", err)
	}

	stored, err := s.tasks.Insert(task)
	if err != nil {
		return err
	}
	*task = *stored

	logger.FromContextOrDefault(ctx, s.logger).Debug("task stored",
		slog.Int64("task_id", stored.ID),
		slog.Int64("user_id", stored.UserID))
	return nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return invalidEntity("task", "update", err)
	}

	stored, err := s.tasks.Update(task)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrTaskNotFound
		}
		return err
	}
	*task = *stored

	logger.FromContextOrDefault(ctx, s.logger).Debug("task replaced",
		slog.Int64("task_id", stored.ID))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	if !s.tasks.Remove(id) {
		return store.ErrTaskNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("task removed", slog.Int64("task_id", id))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	task, ok := s.tasks.Get(id)
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(_ context.Context) ([]*domain.Task, error) {
	return s.tasks.List(), nil
}

// Find implements store.TaskStore.Find
func (s *TaskStore) Find(_ context.Context, match func(*domain.Task) bool) ([]*domain.Task, error) {
	return s.tasks.Find(match), nil
}

// DeleteByUserID implements store.TaskStore.DeleteByUserID
func (s *TaskStore) DeleteByUserID(ctx context.Context, userID int64) (int, error) {
	n := s.tasks.RemoveWhere(func(t *domain.Task) bool { return t.UserID == userID })
	logger.FromContextOrDefault(ctx, s.logger).Debug("tasks removed for owner",
		slog.Int64("user_id", userID),
		slog.Int("count", n))
	return n, nil
}

// Count implements store.TaskStore.Count
func (s *TaskStore) Count(_ context.Context) (int, error) {
	return s.tasks.Count(), nil
}

// CountByUserID implements store.TaskStore.CountByUserID
func (s *TaskStore) CountByUserID(_ context.Context, userID int64) (int, error) {
	return s.tasks.CountWhere(func(t *domain.Task) bool { return t.UserID == userID }), nil
}

// CountByStatus implements store.TaskStore.CountByStatus
func (s *TaskStore) CountByStatus(_ context.Context, status domain.TaskStatus) (int, error) {
	return s.tasks.CountWhere(func(t *domain.Task) bool { return t.Status == status }), nil
}

// invalidEntity wraps a validation failure so that it matches
// store.ErrInvalidEntity and the validation error itself.
func invalidEntity(entity, op string, err error) error {
	return store.NewStoreError(entity, op, "validation failed",
		fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
}
