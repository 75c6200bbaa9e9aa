package store

import (
	"context"

	"github.com/phrazzld/taskhub/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user and writes the assigned ID and timestamps back
	// into user. Returns ErrIDAlreadyAssigned if user carries an existing id,
	// ErrEmailExists or ErrUsernameExists on a uniqueness conflict, and
	// ErrInvalidEntity (wrapping the domain validation error) if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// Update replaces an existing user. CreatedAt is preserved and UpdatedAt
	// refreshed; both are written back into user.
	// Returns ErrUserNotFound if the user does not exist, and ErrEmailExists or
	// ErrUsernameExists if another user already holds the new email or username.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id int64) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by exact username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email, ignoring case.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByFirstNameContaining returns users whose first name contains
	// fragment, ignoring case, in ascending ID order.
	FindByFirstNameContaining(ctx context.Context, fragment string) ([]*domain.User, error)

	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns all users in ascending ID order.
	List(ctx context.Context) ([]*domain.User, error)

	Count(ctx context.Context) (int, error)
}
