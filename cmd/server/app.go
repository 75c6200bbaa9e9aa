package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskhub/internal/config"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/platform/memory"
	"github.com/phrazzld/taskhub/internal/platform/metrics"
	"github.com/phrazzld/taskhub/internal/service"
)

// application holds all the shared application dependencies.
type application struct {
	// Configuration
	config *config.Config

	logger *slog.Logger

	// nil when metrics are disabled
	metrics *metrics.Metrics

	// Stores
	userStore *memory.UserStore
	taskStore *memory.TaskStore

	// Service interfaces
	userService service.UserService
	taskService service.TaskService

	// Event system
	eventEmitter *events.InMemoryEventEmitter
}

// newApplication creates a new application instance with all dependencies
// initialized. Both stores start empty.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	app.userStore = memory.NewUserStore(logger)
	app.taskStore = memory.NewTaskStore(logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	if cfg.Events.LogEvents {
		app.eventEmitter.RegisterHandler(events.NewLogHandler(logger))
	}

	if cfg.Metrics.Enabled {
		app.metrics = metrics.New()
		app.metrics.RegisterEntityGauges(
			func() int { return app.count(app.userStore.Count) },
			func() int { return app.count(app.taskStore.Count) },
		)
		app.eventEmitter.RegisterHandler(app.metrics)
		logger.Info("Prometheus metrics enabled", "path", cfg.Metrics.Path)
	}

	// Task creation and user deletion serialize on the same owner locks.
	locks := service.NewOwnerLocks()

	var err error
	app.taskService, err = service.NewTaskService(app.taskStore, app.userStore, locks, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.userService, err = service.NewUserService(app.userStore, app.taskService, locks, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) count(fn func(context.Context) (int, error)) int {
	n, err := fn(context.Background())
	if err != nil {
		app.logger.Error("failed to count entities for metrics", "error", err)
		return 0
	}
	return n
}

// cleanup runs once the HTTP server has stopped.
func (app *application) cleanup() {
	users := app.count(app.userStore.Count)
	tasks := app.count(app.taskStore.Count)
	app.logger.Info("Application shutdown completed",
		"users", users,
		"tasks", tasks)
}
