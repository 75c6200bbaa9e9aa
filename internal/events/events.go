package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	UserCreated        = "user.created"
	UserUpdated        = "user.updated"
	UserDeleted        = "user.deleted"
	TaskCreated        = "task.created"
	TaskUpdated        = "task.updated"
	TaskDeleted        = "task.deleted"
	OwnerTasksDeleted  = "tasks.owner_deleted"
	CascadeDiscrepancy = "cascade.discrepancy"
)

// Event records a single state change in the core.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the constants above, e.g. "task.created"
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UserPayload accompanies the user.* events.
type UserPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// TaskPayload accompanies the task.* events.
type TaskPayload struct {
	TaskID   int64  `json:"task_id"`
	UserID   int64  `json:"user_id"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// OwnerTasksPayload accompanies tasks.owner_deleted.
type OwnerTasksPayload struct {
	UserID  int64 `json:"user_id"`
	Deleted int   `json:"deleted"`
}

// DiscrepancyPayload accompanies cascade.discrepancy: the number of tasks
// counted before a cascade differs from the number actually removed.
type DiscrepancyPayload struct {
	UserID   int64 `json:"user_id"`
	Expected int   `json:"expected"`
	Deleted  int   `json:"deleted"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts an ordinary function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
