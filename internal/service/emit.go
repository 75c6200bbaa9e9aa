package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/platform/logger"
)

// emit publishes a domain event after a successful mutation. Failures are
// logged and never undo or fail the mutation.
func emit(ctx context.Context, base *slog.Logger, emitter events.EventEmitter, eventType string, payload any) {
	log := logger.FromContextOrDefault(ctx, base)

	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}

	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
