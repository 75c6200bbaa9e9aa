package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskhub/internal/events"
)

// EventRecorder is an events.EventEmitter and events.EventHandler that keeps
// every event it receives. Err, if set, is returned from each call.
type EventRecorder struct {
	mu     sync.Mutex
	events []*events.Event
	Err    error
}

// EmitEvent records event.
func (r *EventRecorder) EmitEvent(_ context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// HandleEvent records event.
func (r *EventRecorder) HandleEvent(ctx context.Context, event *events.Event) error {
	return r.EmitEvent(ctx, event)
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []*events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
