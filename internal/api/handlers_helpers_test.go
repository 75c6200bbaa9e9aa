package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/platform/memory"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/stretchr/testify/require"
)

// testAPI serves the user, task and health handlers over real services
// backed by fresh in-memory stores.
type testAPI struct {
	t       *testing.T
	handler http.Handler
	events  *mocks.EventRecorder
	logs    *logger.TestLogBuffer
}

func newTestAPI(t *testing.T) *testAPI {
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

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/users", NewUserHandler(users, log).Routes)
		r.Route("/tasks", NewTaskHandler(tasks, log).Routes)
	})
	r.Get("/health", NewHealthHandler(users, tasks, log).Health)

	return &testAPI{t: t, handler: r, events: recorder, logs: buf}
}

func (a *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func (a *testAPI) createUser(username, email, firstName string) UserResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/users", UserRequest{
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  "Tester",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[UserResponse](a.t, rec)
}

func (a *testAPI) createTask(userID int64, title, status, priority string) TaskResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/tasks", TaskRequest{
		Title:       title,
		Description: fmt.Sprintf("%s details", title),
		Status:      status,
		Priority:    priority,
		UserID:      userID,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[TaskResponse](a.t, rec)
}
