package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/store"
)

// TaskCascader is the part of TaskService that user deletion calls back into.
// Neither method takes an owner lock.
type TaskCascader interface {
	GetTaskCountByUserID(ctx context.Context, userID int64) (int, error)
	DeleteAllTasksByUserID(ctx context.Context, userID int64) (int, error)
}

// UserDeletion reports the outcome of DeleteUser.
type UserDeletion struct {
	UserID           int64 `json:"user_id"`
	Deleted          bool  `json:"deleted"`
	DeletedTaskCount int   `json:"deleted_task_count"`
}

// UserSearch holds the optional criteria of SearchUsers. The first non-blank
// field, in the order Username, Email, FirstName, selects the search.
type UserSearch struct {
	Username  string
	Email     string
	FirstName string
}

// UserSearchResult carries the matches and the criterion that produced them.
type UserSearchResult struct {
	Users    []*domain.User `json:"users"`
	Criteria string         `json:"search_criteria"`
}

// UserService provides user-related operations
type UserService interface {
	// CreateUser validates candidate, enforces unique username and email and
	// stores it. The caller must not set an ID.
	CreateUser(ctx context.Context, candidate *domain.User) (*domain.User, error)

	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetUserByEmail matches email case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	GetAllUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateUser replaces the mutable fields of user id. The id and creation
	// time are preserved; uniqueness is checked against every other user.
	UpdateUser(ctx context.Context, id int64, candidate *domain.User) (*domain.User, error)

	// DeleteUser removes the user together with every task the user owns.
	DeleteUser(ctx context.Context, id int64) (*UserDeletion, error)

	// GetUsersByFirstName matches a case-insensitive substring of the first name.
	GetUsersByFirstName(ctx context.Context, fragment string) ([]*domain.User, error)

	SearchUsers(ctx context.Context, criteria UserSearch) (*UserSearchResult, error)

	// UserExists never fails; lookup errors read as false.
	UserExists(ctx context.Context, id int64) bool

	GetUserCount(ctx context.Context) (int, error)
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users   store.UserStore
	tasks   TaskCascader
	locks   *OwnerLocks
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	users store.UserStore,
	tasks TaskCascader,
	locks *OwnerLocks,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if locks == nil {
		return nil, domain.NewValidationError("locks", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:   users,
		tasks:   tasks,
		locks:   locks,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "user_service")),
	}, nil
}

// CreateUser implements UserService.CreateUser
func (s *userServiceImpl) CreateUser(ctx context.Context, candidate *domain.User) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if candidate != nil && candidate.ID != 0 {
		return nil, domain.NewValidationError("id", "must not be set when creating a user", domain.ErrInvalidID)
	}
	if err := candidate.Validate(); err != nil {
		log.Debug("rejected user candidate", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.checkIdentity(ctx, "create_user", 0, candidate); err != nil {
		return nil, err
	}

	user := candidate.Clone()
	// The store repeats the uniqueness checks under its write lock.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.mapWriteError(ctx, "create_user", user, err)
	}

	log.Info("user created",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	s.emitUser(ctx, events.UserCreated, user)

	return user, nil
}

// GetUserByID implements UserService.GetUserByID
func (s *userServiceImpl) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := domain.ValidateID("id", id); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(ctx, "get_user", "id", id, err)
	}
	return user, nil
}

// GetUserByUsername implements UserService.GetUserByUsername
func (s *userServiceImpl) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.NewValidationError("username", "cannot be empty", domain.ErrEmptyContent)
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.mapLookupError(ctx, "get_user_by_username", "username", username, err)
	}
	return user, nil
}

// GetUserByEmail implements UserService.GetUserByEmail
func (s *userServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, domain.NewValidationError("email", "cannot be empty", domain.ErrEmptyContent)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.mapLookupError(ctx, "get_user_by_email", "email", email, err)
	}
	return user, nil
}

// GetAllUsers implements UserService.GetAllUsers
func (s *userServiceImpl) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list_users", "failed to list users", err)
	}
	return users, nil
}

// UpdateUser implements UserService.UpdateUser
func (s *userServiceImpl) UpdateUser(ctx context.Context, id int64, candidate *domain.User) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(ctx, "update_user", "id", id, err)
	}

	if err := s.checkIdentity(ctx, "update_user", id, candidate); err != nil {
		return nil, err
	}

	updated := existing.Clone()
	updated.Username = candidate.Username
	updated.Email = candidate.Email
	updated.FirstName = candidate.FirstName
	updated.LastName = candidate.LastName

	if err := s.users.Update(ctx, updated); err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewUserNotFoundError("id", id)
		}
		return nil, s.mapWriteError(ctx, "update_user", updated, err)
	}

	log.Info("user updated",
		slog.Int64("user_id", id),
		slog.String("username", updated.Username))
	s.emitUser(ctx, events.UserUpdated, updated)

	return updated, nil
}

// DeleteUser implements UserService.DeleteUser
// The owner lock is held from the task count to the removal of the user, so
// no task can be attached to the user while it is being deleted.
func (s *userServiceImpl) DeleteUser(ctx context.Context, id int64) (*UserDeletion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateID("id", id); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(ctx, "delete_user", "id", id, err)
	}

	expected, err := s.tasks.GetTaskCountByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.tasks.DeleteAllTasksByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	if deleted != expected {
		log.Warn("task cascade removed a different number of tasks than counted",
			slog.Int64("user_id", id),
			slog.Int("expected", expected),
			slog.Int("deleted", deleted))
		emit(ctx, s.logger, s.emitter, events.CascadeDiscrepancy, events.DiscrepancyPayload{
			UserID:   id,
			Expected: expected,
			Deleted:  deleted,
		})
	}

	result := &UserDeletion{UserID: id, DeletedTaskCount: deleted}

	if err := s.users.Delete(ctx, id); err != nil {
		if !store.IsNotFoundError(err) {
			return nil, s.internal(ctx, "delete_user", "failed to remove user", err)
		}
		log.Warn("user vanished before removal", slog.Int64("user_id", id))
		return result, nil
	}
	result.Deleted = true

	log.Info("user deleted",
		slog.Int64("user_id", id),
		slog.Int("deleted_tasks", deleted))
	s.emitUser(ctx, events.UserDeleted, user)

	return result, nil
}

// GetUsersByFirstName implements UserService.GetUsersByFirstName
func (s *userServiceImpl) GetUsersByFirstName(ctx context.Context, fragment string) ([]*domain.User, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, domain.NewValidationError("first_name", "search text cannot be empty", domain.ErrEmptyContent)
	}
	users, err := s.users.FindByFirstNameContaining(ctx, fragment)
	if err != nil {
		return nil, s.internal(ctx, "find_users_by_first_name", "failed to query users", err)
	}
	return users, nil
}

// SearchUsers implements UserService.SearchUsers
// A username or email with no match yields an empty result, not an error.
func (s *userServiceImpl) SearchUsers(ctx context.Context, criteria UserSearch) (*UserSearchResult, error) {
	single := func(user *domain.User, err error, label string) (*UserSearchResult, error) {
		if err != nil {
			if store.IsNotFoundError(err) {
				return &UserSearchResult{Users: []*domain.User{}, Criteria: label}, nil
			}
			return nil, err
		}
		return &UserSearchResult{Users: []*domain.User{user}, Criteria: label}, nil
	}

	switch {
	case strings.TrimSpace(criteria.Username) != "":
		user, err := s.GetUserByUsername(ctx, criteria.Username)
		return single(user, err, "username: "+criteria.Username)
	case strings.TrimSpace(criteria.Email) != "":
		user, err := s.GetUserByEmail(ctx, criteria.Email)
		return single(user, err, "email: "+criteria.Email)
	case strings.TrimSpace(criteria.FirstName) != "":
		users, err := s.GetUsersByFirstName(ctx, criteria.FirstName)
		if err != nil {
			return nil, err
		}
		return &UserSearchResult{Users: users, Criteria: "firstName: " + criteria.FirstName}, nil
	default:
		users, err := s.GetAllUsers(ctx)
		if err != nil {
			return nil, err
		}
		return &UserSearchResult{Users: users, Criteria: "all users"}, nil
	}
}

// UserExists implements UserService.UserExists
func (s *userServiceImpl) UserExists(ctx context.Context, id int64) bool {
	if id <= 0 {
		return false
	}
	exists, err := s.users.ExistsByID(ctx, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("existence check failed",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()))
		return false
	}
	return exists
}

// GetUserCount implements UserService.GetUserCount
func (s *userServiceImpl) GetUserCount(ctx context.Context) (int, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return 0, s.internal(ctx, "count_users", "failed to count users", err)
	}
	return n, nil
}

// checkIdentity reports a DuplicateError if another user than selfID already
// holds the candidate's email or username. Email is checked first.
func (s *userServiceImpl) checkIdentity(ctx context.Context, op string, selfID int64, candidate *domain.User) error {
	holder, err := s.users.GetByEmail(ctx, candidate.Email)
	switch {
	case err == nil && holder.ID != selfID:
		return NewDuplicateEmailError(candidate.Email)
	case err != nil && !store.IsNotFoundError(err):
		return s.internal(ctx, op, "failed to check email", err)
	}

	holder, err = s.users.GetByUsername(ctx, candidate.Username)
	switch {
	case err == nil && holder.ID != selfID:
		return NewDuplicateUsernameError(candidate.Username)
	case err != nil && !store.IsNotFoundError(err):
		return s.internal(ctx, op, "failed to check username", err)
	}
	return nil
}

func (s *userServiceImpl) mapLookupError(ctx context.Context, op, key string, value any, err error) error {
	if store.IsNotFoundError(err) {
		logger.FromContextOrDefault(ctx, s.logger).Debug("user not found",
			slog.String("operation", op),
			slog.String("key", key))
		return NewUserNotFoundError(key, value)
	}
	return s.internal(ctx, op, "failed to retrieve user", err)
}

// mapWriteError turns a uniqueness conflict lost to a concurrent writer into
// the same DuplicateError the pre-check returns.
func (s *userServiceImpl) mapWriteError(ctx context.Context, op string, user *domain.User, err error) error {
	switch {
	case errors.Is(err, store.ErrEmailExists):
		return NewDuplicateEmailError(user.Email)
	case errors.Is(err, store.ErrUsernameExists):
		return NewDuplicateUsernameError(user.Username)
	}
	return s.internal(ctx, op, "failed to store user", err)
}

func (s *userServiceImpl) internal(ctx context.Context, op, message string, err error) error {
	logger.FromContextOrDefault(ctx, s.logger).Error(message,
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return NewServiceError("user", op, message, err)
}

func (s *userServiceImpl) emitUser(ctx context.Context, eventType string, u *domain.User) {
	emit(ctx, s.logger, s.emitter, eventType, events.UserPayload{UserID: u.ID, Username: u.Username})
}
