package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field length limits for tasks, counted in characters.
const (
	TaskTitleMaxLength       = 100
	TaskDescriptionMaxLength = 500
)

// TaskStatus represents the progress state of a task.
// Any status may be replaced by any other; there is no workflow guard.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// TaskStatuses lists every known status in workflow order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// DisplayName returns the human readable name of the status.
func (s TaskStatus) DisplayName() string {
	switch s {
	case TaskStatusTodo:
		return "To Do"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Pending reports whether the task still has work left (TODO or IN_PROGRESS).
func (s TaskStatus) Pending() bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress
}

// ValidateStatus returns a ValidationError unless status is a known value.
func ValidateStatus(status TaskStatus) error {
	if !status.Valid() {
		return NewValidationError("status", "must be one of TODO, IN_PROGRESS, COMPLETED", ErrInvalidStatus)
	}
	return nil
}

// ParseTaskStatus converts s (case-insensitive) into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if err := ValidateStatus(status); err != nil {
		return "", err
	}
	return status, nil
}

// Priority represents how urgent a task is.
type Priority string

// Possible priority values. There are exactly three levels.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities for sorting: HIGH=3, MEDIUM=2, LOW=1, anything else 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// DisplayName returns the human readable name of the priority.
func (p Priority) DisplayName() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

// ValidatePriority returns a ValidationError unless priority is a known value.
func ValidatePriority(priority Priority) error {
	if !priority.Valid() {
		return NewValidationError("priority", "must be one of LOW, MEDIUM, HIGH", ErrInvalidPriority)
	}
	return nil
}

// ParsePriority converts s (case-insensitive) into a Priority.
func ParsePriority(s string) (Priority, error) {
	priority := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if err := ValidatePriority(priority); err != nil {
		return "", err
	}
	return priority, nil
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks the caller-supplied fields of the Task.
// An empty Status or Priority is accepted; ApplyDefaults fills them in.
func (t *Task) Validate() error {
	if t == nil {
		return NewValidationError("task", "cannot be nil", ErrEmptyContent)
	}

	if isBlank(t.Title) {
		return NewValidationError("title", "cannot be empty", ErrEmptyContent)
	}
	if utf8.RuneCountInString(t.Title) > TaskTitleMaxLength {
		return NewValidationError("title", "must not exceed 100 characters", ErrInvalidLength)
	}

	if isBlank(t.Description) {
		return NewValidationError("description", "cannot be empty", ErrEmptyContent)
	}
	if utf8.RuneCountInString(t.Description) > TaskDescriptionMaxLength {
		return NewValidationError("description", "must not exceed 500 characters", ErrInvalidLength)
	}

	if err := ValidateID("user_id", t.UserID); err != nil {
		return err
	}

	if t.Status != "" {
		if err := ValidateStatus(t.Status); err != nil {
			return err
		}
	}
	if t.Priority != "" {
		return ValidatePriority(t.Priority)
	}

	return nil
}

// ApplyDefaults sets status TODO and priority MEDIUM when they are absent.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// GetID returns the task's ID.
func (t *Task) GetID() int64 { return t.ID }

// SetID assigns the task's ID.
func (t *Task) SetID(id int64) { t.ID = id }

// GetCreatedAt returns when the task was first stored.
func (t *Task) GetCreatedAt() time.Time { return t.CreatedAt }

// MarkCreated stamps both timestamps with at.
func (t *Task) MarkCreated(at time.Time) {
	t.CreatedAt = at
	t.UpdatedAt = at
}

// MarkUpdated refreshes the update timestamp.
func (t *Task) MarkUpdated(at time.Time) { t.UpdatedAt = at }

// Clone returns a copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}
