// Package main implements the entry point for the vocab API server, the
// backend of a spaced-repetition vocabulary trainer with AI-assisted
// content enrichment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/vocab-srs/vocab-api/internal/config"
	"github.com/vocab-srs/vocab-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run migrations (up|down|status) and exit")
	flag.Parse()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" {
		if err := runMigrations(cfg, *migrateCmd); err != nil {
			appLogger.Error("Migration failed", "command", *migrateCmd, "error", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		appLogger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		appLogger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"time_zone", cfg.Schedule.TimeZone,
		"llm_configured", cfg.LLM.GeminiAPIKey != "")

	return cfg, appLogger, nil
}
