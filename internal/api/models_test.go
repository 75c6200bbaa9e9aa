package api

import (
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRequest_ToDomain(t *testing.T) {
	t.Run("parses status and priority case-insensitively", func(t *testing.T) {
		req := TaskRequest{Title: "Write docs", Description: "API docs", Status: "in_progress", Priority: "high", UserID: 3}

		task, err := req.ToDomain()

		require.NoError(t, err)
		assert.Equal(t, "Write docs", task.Title)
		assert.Equal(t, domain.TaskStatusInProgress, task.Status)
		assert.Equal(t, domain.PriorityHigh, task.Priority)
		assert.Equal(t, int64(3), task.UserID)
		assert.Zero(t, task.ID)
	})

	t.Run("omitted status and priority stay empty", func(t *testing.T) {
		task, err := TaskRequest{Title: "t", Description: "d", UserID: 1}.ToDomain()

		require.NoError(t, err)
		assert.Empty(t, task.Status)
		assert.Empty(t, task.Priority)
	})

	t.Run("unknown priority is rejected", func(t *testing.T) {
		_, err := TaskRequest{Title: "t", Description: "d", Priority: "URGENT", UserID: 1}.ToDomain()

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.True(t, errors.Is(err, domain.ErrInvalidPriority))
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := TaskRequest{Title: "t", Description: "d", Status: "DONE", UserID: 1}.ToDomain()

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidStatus))
	})
}

func TestUserRequest_ToDomain(t *testing.T) {
	u := UserRequest{Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Smith"}.ToDomain()

	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.FirstName)
	assert.Equal(t, "Smith", u.LastName)
	assert.Zero(t, u.ID)
}

func TestResponseConversion(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	task := &domain.Task{
		ID:          4,
		Title:       "Ship",
		Description: "Ship it",
		Status:      domain.TaskStatusCompleted,
		Priority:    domain.PriorityLow,
		UserID:      2,
		CreatedAt:   now,
		UpdatedAt:   now.Add(time.Hour),
	}

	resp := taskToResponse(task)

	assert.Equal(t, int64(4), resp.ID)
	assert.Equal(t, "COMPLETED", resp.Status)
	assert.Equal(t, "LOW", resp.Priority)
	assert.Equal(t, now.Add(time.Hour), resp.UpdatedAt)

	assert.NotNil(t, tasksToResponse(nil), "empty lists encode as [] rather than null")
	assert.Len(t, usersToResponse([]*domain.User{{ID: 1}, {ID: 2}}), 2)
}
