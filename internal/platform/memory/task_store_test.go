package memory

import (
	"context"
	"testing"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(title string, owner int64, status domain.TaskStatus, priority domain.Priority) *domain.Task {
	return &domain.Task{
		Title:       title,
		Description: "details",
		UserID:      owner,
		Status:      status,
		Priority:    priority,
	}
}

func seededTaskStore(t *testing.T) *TaskStore {
	t.Helper()
	ctx := context.Background()
	s := NewTaskStore(nil, WithClock(steppingClock()))
	for _, task := range []*domain.Task{
		newTask("one", 1, domain.TaskStatusTodo, domain.PriorityLow),
		newTask("two", 1, domain.TaskStatusCompleted, domain.PriorityHigh),
		newTask("three", 2, domain.TaskStatusCompleted, domain.PriorityMedium),
		newTask("four", 1, domain.TaskStatusInProgress, domain.PriorityHigh),
	} {
		require.NoError(t, s.Create(ctx, task))
	}
	return s
}

func TestTaskStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore(nil)

	task := newTask("write", 1, domain.TaskStatusTodo, domain.PriorityMedium)
	require.NoError(t, s.Create(ctx, task))
	assert.Equal(t, int64(1), task.ID)

	got, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	again, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	_, err = s.GetByID(ctx, 2)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	err = s.Create(ctx, newTask("", 1, "", ""))
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "task", storeErr.Entity)
	assert.Equal(t, "create", storeErr.Operation)
}

func TestTaskStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := seededTaskStore(t)

	task, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	task.Status = domain.TaskStatusCompleted
	require.NoError(t, s.Update(ctx, task))

	got, _ := s.GetByID(ctx, 1)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)

	missing := newTask("x", 1, domain.TaskStatusTodo, domain.PriorityLow)
	missing.ID = 50
	assert.ErrorIs(t, s.Update(ctx, missing), store.ErrTaskNotFound)

	require.NoError(t, s.Delete(ctx, 1))
	assert.ErrorIs(t, s.Delete(ctx, 1), store.ErrTaskNotFound)
	_, err = s.GetByID(ctx, 1)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStore_CountsAndFind(t *testing.T) {
	ctx := context.Background()
	s := seededTaskStore(t)

	n, _ := s.Count(ctx)
	assert.Equal(t, 4, n)
	n, _ = s.CountByUserID(ctx, 1)
	assert.Equal(t, 3, n)
	n, _ = s.CountByStatus(ctx, domain.TaskStatusCompleted)
	assert.Equal(t, 2, n)

	high, err := s.Find(ctx, func(t *domain.Task) bool { return t.Priority == domain.PriorityHigh })
	require.NoError(t, err)
	require.Len(t, high, 2)
	assert.Equal(t, "two", high[0].Title)
	assert.Equal(t, "four", high[1].Title)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestTaskStore_DeleteByUserID(t *testing.T) {
	ctx := context.Background()
	s := seededTaskStore(t)

	n, err := s.DeleteByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	remaining, _ := s.List(ctx)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(2), remaining[0].UserID)

	n, err = s.DeleteByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
