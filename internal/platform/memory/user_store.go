package memory

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/store"
)

// UserStore implements the store.UserStore interface on top of an EntityStore.
// Username and email uniqueness are checked under the same lock as the write,
// so concurrent creates cannot both claim an identity.
type UserStore struct {
	users  *EntityStore[*domain.User]
	logger *slog.Logger
}

// NewUserStore creates an empty in-memory user store.
// If logger is nil, a default logger will be used.
func NewUserStore(log *slog.Logger, opts ...Option) *UserStore {
	if log == nil {
		log = slog.Default()
	}
	return &UserStore{
		users:  NewEntityStore[*domain.User](opts...),
		logger: log.With(slog.String("component", "user_store")),
	}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// identityChecks rejects a write that would reuse another user's email
// (ignoring case) or username. Email conflicts are reported first.
func identityChecks(candidate *domain.User) []ConflictCheck[*domain.User] {
	return []ConflictCheck[*domain.User]{
		func(existing *domain.User) error {
			if existing.HasEmail(candidate.Email) {
				return store.ErrEmailExists
			}
			return nil
		},
		func(existing *domain.User) error {
			if existing.Username == candidate.Username {
				return store.ErrUsernameExists
			}
			return nil
		},
	}
}

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return invalidEntity("user", "create", err)
	}

	stored, err := s.users.InsertChecked(user, identityChecks(user)...)
	if err != nil {
		return err
	}
	*user = *stored

	logger.FromContextOrDefault(ctx, s.logger).Debug("user stored",
		slog.Int64("user_id", stored.ID))
	return nil
}

// Update implements store.UserStore.Update
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return invalidEntity("user", "update", err)
	}

	stored, err := s.users.UpdateChecked(user, identityChecks(user)...)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrUserNotFound
		}
		return err
	}
	*user = *stored

	logger.FromContextOrDefault(ctx, s.logger).Debug("user replaced",
		slog.Int64("user_id", stored.ID))
	return nil
}

// Delete implements store.UserStore.Delete
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	if !s.users.Remove(id) {
		return store.ErrUserNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("user removed", slog.Int64("user_id", id))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := s.users.Get(id)
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return s.first(func(u *domain.User) bool { return u.Username == username })
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.first(func(u *domain.User) bool { return u.HasEmail(email) })
}

func (s *UserStore) first(match func(*domain.User) bool) (*domain.User, error) {
	found := s.users.Find(match)
	if len(found) == 0 {
		return nil, store.ErrUserNotFound
	}
	return found[0], nil
}

// FindByFirstNameContaining implements store.UserStore.FindByFirstNameContaining
func (s *UserStore) FindByFirstNameContaining(_ context.Context, fragment string) ([]*domain.User, error) {
	needle := strings.ToLower(fragment)
	return s.users.Find(func(u *domain.User) bool {
		return strings.Contains(strings.ToLower(u.FirstName), needle)
	}), nil
}

// ExistsByID implements store.UserStore.ExistsByID
func (s *UserStore) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := s.users.Get(id)
	return ok, nil
}

// ExistsByUsername implements store.UserStore.ExistsByUsername
func (s *UserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return s.users.CountWhere(func(u *domain.User) bool { return u.Username == username }) > 0, nil
}

// ExistsByEmail implements store.UserStore.ExistsByEmail
func (s *UserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return s.users.CountWhere(func(u *domain.User) bool { return u.HasEmail(email) }) > 0, nil
}

// List implements store.UserStore.List
func (s *UserStore) List(_ context.Context) ([]*domain.User, error) {
	return s.users.List(), nil
}

// Count implements store.UserStore.Count
func (s *UserStore) Count(_ context.Context) (int, error) {
	return s.users.Count(), nil
}
