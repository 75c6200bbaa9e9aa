package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/taskquery"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Routes mounts the task endpoints on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateTask)
	r.Get("/", h.ListTasks)
	r.Get("/search", h.SearchTasksByTitle)
	r.Get("/stats", h.GetTaskStats)
	r.Get("/sorted/created-date", h.GetTasksSortedByCreatedDate)
	r.Get("/user/{userId}", h.GetTasksByUserID)
	r.Get("/user/{userId}/sorted/priority", h.GetTasksByUserIDSortedByPriority)
	r.Delete("/user/{userId}", h.DeleteAllTasksByUserID)
	r.Get("/{id}", h.GetTaskByID)
	r.Put("/{id}", h.UpdateTask)
	r.Patch("/{id}/status", h.UpdateTaskStatus)
	r.Patch("/{id}/priority", h.UpdateTaskPriority)
	r.Delete("/{id}", h.DeleteTask)
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	candidate, err := req.ToDomain()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), candidate)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	h.log(r).Info("task created via API",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", task.UserID))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /tasks?status=&priority=&userId=
// The set parameters are combined; none lists every task.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.FilterTasks(r.Context(), criteria)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	h.log(r).Debug("tasks listed", slog.Int("count", len(tasks)))
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

func parseCriteria(r *http.Request) (taskquery.Criteria, error) {
	var criteria taskquery.Criteria
	q := r.URL.Query()

	userID, err := getOptionalQueryID(r, "userId")
	if err != nil {
		return criteria, err
	}
	criteria.UserID = userID

	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			return criteria, err
		}
		criteria.Status = &status
	}
	if raw := q.Get("priority"); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return criteria, err
		}
		criteria.Priority = &priority
	}
	return criteria, nil
}

// GetTaskByID handles GET /tasks/{id}
func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	task, err := h.tasks.GetTaskByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	candidate, err := req.ToDomain()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), id, candidate)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTaskStatus handles PATCH /tasks/{id}/status
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	var req StatusUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	status, err := domain.ParseTaskStatus(req.Status)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.UpdateTaskStatus(r.Context(), id, status)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTaskPriority handles PATCH /tasks/{id}/priority
func (h *TaskHandler) UpdateTaskPriority(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	var req PriorityUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.UpdateTaskPriority(r.Context(), id, priority)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task priority")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTasksByUserID handles GET /tasks/user/{userId}?filter=completed|pending|high-priority
// An unknown or missing filter returns all of the user's tasks.
func (h *TaskHandler) GetTasksByUserID(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathID(w, r, "userId", h.log(r))
	if !ok {
		return
	}

	var (
		tasks []*domain.Task
		err   error
	)
	switch strings.ToLower(r.URL.Query().Get("filter")) {
	case "completed":
		tasks, err = h.tasks.GetCompletedTasksByUserID(r.Context(), userID)
	case "pending":
		tasks, err = h.tasks.GetPendingTasksByUserID(r.Context(), userID)
	case "high-priority":
		tasks, err = h.tasks.GetHighPriorityTasksByUserID(r.Context(), userID)
	default:
		tasks, err = h.tasks.GetTasksByUserID(r.Context(), userID)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// SearchTasksByTitle handles GET /tasks/search?title=
func (h *TaskHandler) SearchTasksByTitle(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.SearchTasksByTitle(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTasksSortedByCreatedDate handles GET /tasks/sorted/created-date
func (h *TaskHandler) GetTasksSortedByCreatedDate(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.GetAllTasksSortedByCreatedDate(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTasksByUserIDSortedByPriority handles GET /tasks/user/{userId}/sorted/priority
func (h *TaskHandler) GetTasksByUserIDSortedByPriority(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathID(w, r, "userId", h.log(r))
	if !ok {
		return
	}

	tasks, err := h.tasks.GetTasksByUserIDSortedByPriority(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTaskStats handles GET /tasks/stats?userId=
func (h *TaskHandler) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	userID, err := getOptionalQueryID(r, "userId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	stats, err := h.tasks.GetTaskStats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskStatsResponse{
		UserID:          stats.UserID,
		TotalTasks:      stats.Total,
		TodoCount:       stats.Todo,
		InProgressCount: stats.InProgress,
		CompletedCount:  stats.Completed,
	})
}

// DeleteAllTasksByUserID handles DELETE /tasks/user/{userId}
func (h *TaskHandler) DeleteAllTasksByUserID(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathID(w, r, "userId", h.log(r))
	if !ok {
		return
	}

	n, err := h.tasks.DeleteAllTasksByUserID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskDeletionResponse{
		UserID:       userID,
		DeletedCount: n,
		Message:      fmt.Sprintf("Deleted %d tasks for user %d", n, userID),
	})
}

func (h *TaskHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}
