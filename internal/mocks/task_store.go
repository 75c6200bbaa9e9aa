package mocks

import (
	"context"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/store"
	"github.com/phrazzld/taskhub/internal/taskquery"
	"github.com/stretchr/testify/mock"
)

var _ store.TaskStore = (*TaskStore)(nil)

// TaskStore is a mock of store.TaskStore for use with testify/mock
type TaskStore struct {
	mock.Mock
}

func (m *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TaskStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

// Find is matched on the context only; predicates cannot be compared.
func (m *TaskStore) Find(ctx context.Context, match func(*domain.Task) bool) ([]*domain.Task, error) {
	args := m.Called(ctx, mock.Anything)
	tasks, _ := args.Get(0).([]*domain.Task)
	if match == nil {
		return tasks, args.Error(1)
	}
	return taskquery.Apply(tasks, match), args.Error(1)
}

func (m *TaskStore) DeleteByUserID(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *TaskStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *TaskStore) CountByUserID(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *TaskStore) CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}
