package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/service"
)

// HealthHandler reports liveness together with the current entity counts.
type HealthHandler struct {
	users  service.UserService
	tasks  service.TaskService
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(users service.UserService, tasks service.TaskService, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HealthHandler")
	}
	return &HealthHandler{
		users:  users,
		tasks:  tasks,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetUserCount(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Health check failed")
		return
	}
	tasks, err := h.tasks.GetTotalTaskCount(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Health check failed")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Users: users, Tasks: tasks})
}
