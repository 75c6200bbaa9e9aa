package service_test

import (
	"context"
	"testing"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/platform/memory"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/stretchr/testify/require"
)

// fixture wires both services over fresh in-memory stores.
type fixture struct {
	users    service.UserService
	tasks    service.TaskService
	events   *mocks.EventRecorder
	logs     *logger.TestLogBuffer
	taskRepo *memory.TaskStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, buf := logger.NewTestLogger(t)
	recorder := &mocks.EventRecorder{}
	locks := service.NewOwnerLocks()

	userRepo := memory.NewUserStore(log)
	taskRepo := memory.NewTaskStore(log)

	tasks, err := service.NewTaskService(taskRepo, userRepo, locks, recorder, log)
	require.NoError(t, err)
	users, err := service.NewUserService(userRepo, tasks, locks, recorder, log)
	require.NoError(t, err)

	return &fixture{users: users, tasks: tasks, events: recorder, logs: buf, taskRepo: taskRepo}
}

func (f *fixture) mustCreateUser(t *testing.T, username, email, firstName string) *domain.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), &domain.User{
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  "Tester",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) mustCreateTask(t *testing.T, ownerID int64, title string, priority domain.Priority) *domain.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), &domain.Task{
		Title:       title,
		Description: title + " details",
		UserID:      ownerID,
		Priority:    priority,
	})
	require.NoError(t, err)
	return task
}
