package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewUserService_NilDependencies(t *testing.T) {
	locks := service.NewOwnerLocks()
	tasks := stubCascader{}

	_, err := service.NewUserService(nil, tasks, locks, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.NewUserService(new(mocks.UserStore), nil, locks, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.NewUserService(new(mocks.UserStore), tasks, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	svc, err := service.NewUserService(new(mocks.UserStore), tasks, locks, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, "alice", "alice@x.io", "Alice")

		assert.Equal(t, int64(1), u.ID)
		assert.False(t, u.CreatedAt.IsZero())
		assert.Equal(t, u.CreatedAt, u.UpdatedAt)
		assert.Equal(t, []string{events.UserCreated}, f.events.Types())
	})

	t.Run("rejects preassigned id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.CreateUser(ctx, &domain.User{
			ID: 5, Username: "alice", Email: "alice@x.io", FirstName: "A", LastName: "L",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("rejects invalid candidate before touching the store", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.CreateUser(ctx, &domain.User{
			Username: "al", Email: "alice@x.io", FirstName: "A", LastName: "L",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidLength)

		n, err := f.users.GetUserCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateUser(t, "alice", "alice@x.io", "Alice")

		_, err := f.users.CreateUser(ctx, &domain.User{
			Username: "alice2", Email: "ALICE@X.IO", FirstName: "A", LastName: "L",
		})
		var dup *service.DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "email", dup.Field)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateUser(t, "alice", "alice@x.io", "Alice")

		_, err := f.users.CreateUser(ctx, &domain.User{
			Username: "alice", Email: "other@x.io", FirstName: "A", LastName: "L",
		})
		assert.ErrorIs(t, err, store.ErrUsernameExists)
		assert.EqualError(t, err, "user with username 'alice' already exists")
	})

	t.Run("duplicate lost to concurrent writer maps to DuplicateError", func(t *testing.T) {
		users := new(mocks.UserStore)
		users.On("GetByEmail", mock.Anything, "bob@x.io").Return(nil, store.ErrUserNotFound)
		users.On("GetByUsername", mock.Anything, "bob").Return(nil, store.ErrUserNotFound)
		users.On("Create", mock.Anything, mock.Anything).Return(store.ErrEmailExists)

		svc, err := service.NewUserService(users, stubCascader{}, service.NewOwnerLocks(), nil, nil)
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, &domain.User{
			Username: "bob", Email: "bob@x.io", FirstName: "Bob", LastName: "B",
		})
		var dup *service.DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "bob@x.io", dup.Value)
		users.AssertExpectations(t)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		users := new(mocks.UserStore)
		users.On("GetByEmail", mock.Anything, "bob@x.io").Return(nil, errors.New("disk gone"))

		svc, err := service.NewUserService(users, stubCascader{}, service.NewOwnerLocks(), nil, nil)
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, &domain.User{
			Username: "bob", Email: "bob@x.io", FirstName: "Bob", LastName: "B",
		})
		assert.ErrorIs(t, err, service.ErrInternal)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUserService_Lookups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustCreateUser(t, "alice", "alice@x.io", "Alice")
	f.mustCreateUser(t, "bob", "bob@x.io", "Bob")

	got, err := f.users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = f.users.GetUserByEmail(ctx, "Alice@X.io")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = f.users.GetUserByUsername(ctx, "ghost")
	var nf *service.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "username", nf.Key)
	assert.Equal(t, "ghost", nf.Value)

	_, err = f.users.GetUserByID(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.users.GetUserByID(ctx, 42)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	all, err := f.users.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matches, err := f.users.GetUsersByFirstName(ctx, "LIC")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, alice.ID, matches[0].ID)

	_, err = f.users.GetUsersByFirstName(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.True(t, f.users.UserExists(ctx, alice.ID))
	assert.False(t, f.users.UserExists(ctx, 99))
	assert.False(t, f.users.UserExists(ctx, -1))
}

func TestUserService_UserExistsSwallowsErrors(t *testing.T) {
	users := new(mocks.UserStore)
	users.On("ExistsByID", mock.Anything, int64(3)).Return(false, errors.New("boom"))

	svc, err := service.NewUserService(users, stubCascader{}, service.NewOwnerLocks(), nil, nil)
	require.NoError(t, err)

	assert.False(t, svc.UserExists(context.Background(), 3))
}

func TestUserService_AnyStoreNotFoundIsNotFound(t *testing.T) {
	users := new(mocks.UserStore)
	users.On("GetByID", mock.Anything, int64(8)).Return(nil, fmt.Errorf("lookup: %w", store.ErrNotFound))

	svc, err := service.NewUserService(users, stubCascader{}, service.NewOwnerLocks(), nil, nil)
	require.NoError(t, err)

	_, err = svc.GetUserByID(context.Background(), 8)

	var notFound *service.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Entity)
	assert.NotErrorIs(t, err, service.ErrInternal)
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps id and creation time", func(t *testing.T) {
		f := newFixture(t)
		alice := f.mustCreateUser(t, "alice", "alice@x.io", "Alice")

		updated, err := f.users.UpdateUser(ctx, alice.ID, &domain.User{
			Username: "alice", Email: "alice@x.io", FirstName: "Alicia", LastName: "Tester",
		})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, updated.ID)
		assert.Equal(t, "Alicia", updated.FirstName)
		assert.Equal(t, alice.CreatedAt, updated.CreatedAt)
		assert.False(t, updated.UpdatedAt.Before(alice.UpdatedAt))
	})

	t.Run("email held by another user", func(t *testing.T) {
		f := newFixture(t)
		alice := f.mustCreateUser(t, "alice", "alice@x.io", "Alice")
		f.mustCreateUser(t, "bob", "bob@x.io", "Bob")

		_, err := f.users.UpdateUser(ctx, alice.ID, &domain.User{
			Username: "alice", Email: "BOB@x.io", FirstName: "Alice", LastName: "Tester",
		})
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("username held by another user", func(t *testing.T) {
		f := newFixture(t)
		alice := f.mustCreateUser(t, "alice", "alice@x.io", "Alice")
		f.mustCreateUser(t, "bob", "bob@x.io", "Bob")

		_, err := f.users.UpdateUser(ctx, alice.ID, &domain.User{
			Username: "bob", Email: "alice@x.io", FirstName: "Alice", LastName: "Tester",
		})
		assert.ErrorIs(t, err, store.ErrUsernameExists)
	})

	t.Run("missing user", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.UpdateUser(ctx, 8, &domain.User{
			Username: "nobody", Email: "n@x.io", FirstName: "N", LastName: "B",
		})
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("invalid candidate", func(t *testing.T) {
		f := newFixture(t)
		alice := f.mustCreateUser(t, "alice", "alice@x.io", "Alice")
		_, err := f.users.UpdateUser(ctx, alice.ID, &domain.User{
			Username: "alice", Email: "not-an-email", FirstName: "A", LastName: "L",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestUserService_DeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.mustCreateUser(t, "alice", "alice@x.io", "Alice")
	bob := f.mustCreateUser(t, "bob", "bob@x.io", "Bob")
	f.mustCreateTask(t, alice.ID, "one", "")
	f.mustCreateTask(t, alice.ID, "two", domain.PriorityHigh)
	bobs := f.mustCreateTask(t, bob.ID, "three", "")

	result, err := f.users.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, &service.UserDeletion{UserID: alice.ID, Deleted: true, DeletedTaskCount: 2}, result)

	_, err = f.users.GetUserByID(ctx, alice.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	remaining, err := f.tasks.GetAllTasks(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, bobs.ID, remaining[0].ID)

	assert.Contains(t, f.events.Types(), events.OwnerTasksDeleted)
	assert.Contains(t, f.events.Types(), events.UserDeleted)
	assert.NotContains(t, f.events.Types(), events.CascadeDiscrepancy)
}

func TestUserService_DeleteUserMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.DeleteUser(context.Background(), 3)

	var nf *service.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "user", nf.Entity)
	assert.Empty(t, f.events.Types())
}

func TestUserService_DeleteUserReportsDiscrepancy(t *testing.T) {
	ctx := context.Background()
	log, buf := logger.NewTestLogger(t)

	users := new(mocks.UserStore)
	users.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.User{ID: 1, Username: "alice"}, nil)
	users.On("Delete", mock.Anything, int64(1)).Return(nil)

	recorder := &mocks.EventRecorder{}
	svc, err := service.NewUserService(users, stubCascader{count: 3, deleted: 2},
		service.NewOwnerLocks(), recorder, log)
	require.NoError(t, err)

	result, err := svc.DeleteUser(ctx, 1)
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.Equal(t, 2, result.DeletedTaskCount)

	assert.Equal(t, []string{events.CascadeDiscrepancy, events.UserDeleted}, recorder.Types())

	var payload events.DiscrepancyPayload
	require.NoError(t, recorder.Events()[0].UnmarshalPayload(&payload))
	assert.Equal(t, events.DiscrepancyPayload{UserID: 1, Expected: 3, Deleted: 2}, payload)

	logger.AssertLogContains(t, buf, "task cascade removed a different number of tasks than counted")
	users.AssertExpectations(t)
}

func TestUserService_DeleteUserVanishedBeforeRemoval(t *testing.T) {
	users := new(mocks.UserStore)
	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)
	users.On("Delete", mock.Anything, int64(1)).Return(store.ErrUserNotFound)

	svc, err := service.NewUserService(users, stubCascader{}, service.NewOwnerLocks(), nil, nil)
	require.NoError(t, err)

	result, err := svc.DeleteUser(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, result.Deleted)
}

func TestUserService_SearchUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustCreateUser(t, "alice", "alice@x.io", "Alice")
	f.mustCreateUser(t, "bob", "bob@x.io", "Bob")

	tests := []struct {
		name     string
		criteria service.UserSearch
		want     []string
		label    string
	}{
		{name: "username wins", criteria: service.UserSearch{Username: "bob", Email: "alice@x.io"},
			want: []string{"bob"}, label: "username: bob"},
		{name: "email", criteria: service.UserSearch{Email: "ALICE@x.io"},
			want: []string{"alice"}, label: "email: ALICE@x.io"},
		{name: "first name", criteria: service.UserSearch{FirstName: "o"},
			want: []string{"bob"}, label: "firstName: o"},
		{name: "unknown username is empty", criteria: service.UserSearch{Username: "ghost"},
			want: []string{}, label: "username: ghost"},
		{name: "blank criteria lists all", criteria: service.UserSearch{Username: " "},
			want: []string{"alice", "bob"}, label: "all users"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.users.SearchUsers(ctx, tc.criteria)
			require.NoError(t, err)

			names := make([]string, 0, len(res.Users))
			for _, u := range res.Users {
				names = append(names, u.Username)
			}
			assert.Equal(t, tc.want, names)
			assert.Equal(t, tc.label, res.Criteria)
		})
	}
}

// stubCascader is a fixed TaskCascader.
type stubCascader struct {
	count   int
	deleted int
}

func (s stubCascader) GetTaskCountByUserID(context.Context, int64) (int, error) {
	return s.count, nil
}

func (s stubCascader) DeleteAllTasksByUserID(context.Context, int64) (int, error) {
	return s.deleted, nil
}
