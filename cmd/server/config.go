package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskhub/internal/config"
)

// loadAppConfig loads the application configuration from .env, config.yaml
// and TASKHUB_* environment variables.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)
	slog.Debug("Optional features",
		"metrics_enabled", cfg.Metrics.Enabled,
		"metrics_path", cfg.Metrics.Path,
		"log_events", cfg.Events.LogEvents)

	return cfg, nil
}
