package api

import (
	"time"

	"github.com/phrazzld/taskhub/internal/domain"
)

// UserRequest is the payload of POST /users and PUT /users/{id}.
// Only the shape is checked here; the domain rules are applied by the service.
type UserRequest struct {
	Username  string `json:"username"   validate:"required,max=50"`
	Email     string `json:"email"      validate:"required,max=254"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
}

// ToDomain converts the request into a user candidate.
func (r UserRequest) ToDomain() *domain.User {
	return &domain.User{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

// TaskRequest is the payload of POST /tasks and PUT /tasks/{id}.
// Status and priority are optional and matched case-insensitively.
type TaskRequest struct {
	Title       string `json:"title"              validate:"required"`
	Description string `json:"description"        validate:"required"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	UserID      int64  `json:"user_id"            validate:"required,gt=0"`
}

// ToDomain converts the request into a task candidate.
func (r TaskRequest) ToDomain() (*domain.Task, error) {
	task := &domain.Task{
		Title:       r.Title,
		Description: r.Description,
		UserID:      r.UserID,
	}
	if r.Status != "" {
		status, err := domain.ParseTaskStatus(r.Status)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}
	if r.Priority != "" {
		priority, err := domain.ParsePriority(r.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	return task, nil
}

// StatusUpdateRequest is the payload of PATCH /tasks/{id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// PriorityUpdateRequest is the payload of PATCH /tasks/{id}/priority.
type PriorityUpdateRequest struct {
	Priority string `json:"priority" validate:"required"`
}

// UserResponse represents the response data for a user
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserDeletionResponse is returned by DELETE /users/{id}.
type UserDeletionResponse struct {
	UserID           int64  `json:"user_id"`
	Deleted          bool   `json:"deleted"`
	DeletedTaskCount int    `json:"deleted_task_count"`
	Message          string `json:"message"`
}

// UserExistenceResponse is returned by GET /users/{id}/exists.
type UserExistenceResponse struct {
	UserID  int64  `json:"user_id"`
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}

// UserStatsResponse is returned by GET /users/stats.
type UserStatsResponse struct {
	TotalUsers int    `json:"total_users"`
	Message    string `json:"message"`
}

// UserSearchResponse is returned by GET /users/search.
type UserSearchResponse struct {
	Users          []UserResponse `json:"users"`
	SearchCriteria string         `json:"search_criteria"`
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
}

// TaskStatsResponse is returned by GET /tasks/stats.
type TaskStatsResponse struct {
	UserID          *int64 `json:"user_id,omitempty"`
	TotalTasks      int    `json:"total_tasks"`
	TodoCount       int    `json:"todo_count"`
	InProgressCount int    `json:"in_progress_count"`
	CompletedCount  int    `json:"completed_count"`
}

// TaskDeletionResponse is returned by DELETE /tasks/user/{userId}.
type TaskDeletionResponse struct {
	UserID       int64  `json:"user_id"`
	DeletedCount int    `json:"deleted_count"`
	Message      string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Users  int    `json:"users"`
	Tasks  int    `json:"tasks"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func usersToResponse(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	return out
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}
