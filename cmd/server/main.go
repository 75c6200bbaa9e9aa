// Package main implements the entry point for the taskhub API server, which
// manages users and the tasks they own.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// main is the entry point for the taskhub server.
// It loads configuration, sets up logging, wires the in-memory stores and
// services, and serves HTTP until SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		log.Fatalf("taskhub: %v", err)
	}
}

func run() error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}
