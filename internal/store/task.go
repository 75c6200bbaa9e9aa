package store

import (
	"context"

	"github.com/phrazzld/taskhub/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// The store does not check that a task's owner exists; that reference is
// enforced by the service layer.
type TaskStore interface {
	// Create saves a new task and writes the assigned ID and timestamps back
	// into task. Returns ErrIDAlreadyAssigned if task carries an existing id
	// and ErrInvalidEntity if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// Update replaces an existing task, preserving CreatedAt.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// List returns all tasks in ascending ID order.
	List(ctx context.Context) ([]*domain.Task, error)

	// Find returns the tasks for which match reports true, in ascending ID order.
	Find(ctx context.Context, match func(*domain.Task) bool) ([]*domain.Task, error)

	// DeleteByUserID removes every task owned by userID and returns how many
	// were removed.
	DeleteByUserID(ctx context.Context, userID int64) (int, error)

	Count(ctx context.Context) (int, error)
	CountByUserID(ctx context.Context, userID int64) (int, error)
	CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error)
}
