package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vocab-srs/vocab-api/internal/config"
	"github.com/vocab-srs/vocab-api/internal/domain/srs"
	"github.com/vocab-srs/vocab-api/internal/events"
	"github.com/vocab-srs/vocab-api/internal/generation"
	"github.com/vocab-srs/vocab-api/internal/platform/gemini"
	"github.com/vocab-srs/vocab-api/internal/platform/postgres"
	"github.com/vocab-srs/vocab-api/internal/service"
	"github.com/vocab-srs/vocab-api/internal/service/aicache"
	"github.com/vocab-srs/vocab-api/internal/service/review"
	"github.com/vocab-srs/vocab-api/internal/service/session"
	"github.com/vocab-srs/vocab-api/internal/service/syncmerge"
	"github.com/vocab-srs/vocab-api/internal/store"
	"github.com/vocab-srs/vocab-api/internal/task"
	"github.com/vocab-srs/vocab-api/internal/timeutil"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	vocabStore  store.VocabStore
	reviewStore store.ReviewLogStore
	eventStore  store.EventStore
	cacheStore  store.AICacheStore

	scheduler *srs.Scheduler

	remoteProvider   generation.Provider
	fallbackProvider generation.Provider

	cacheService    *aicache.Service
	vocabService    *service.VocabService
	reviewService   *review.Service
	sessionComposer *session.Composer
	syncEngine      *syncmerge.Engine

	eventEmitter events.EventEmitter
	taskQueue    *task.TaskQueue
	workerPool   *task.WorkerPool
}

// newApplication wires all dependencies. It accepts the core dependencies
// that must be established before the rest of the graph can be built.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.vocabStore = postgres.NewPostgresVocabStore(db, logger)
	app.reviewStore = postgres.NewPostgresReviewLogStore(db, logger)
	app.eventStore = postgres.NewPostgresEventStore(db, logger)
	app.cacheStore = postgres.NewPostgresAICacheStore(db, logger)

	app.scheduler = srs.Default()

	// The remote provider is optional; without an API key the service runs
	// on the deterministic fallback alone.
	app.fallbackProvider = generation.NewFallbackProvider()
	if cfg.LLM.GeminiAPIKey != "" {
		remote, err := gemini.NewProvider(ctx, logger.With("component", "gemini_provider"), cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize content provider: %w", err)
		}
		app.remoteProvider = remote
		logger.Info("Remote content provider initialized", "model", cfg.LLM.ModelName)
	} else {
		logger.Info("No LLM API key configured, using fallback provider only")
	}

	app.cacheService = aicache.NewService(app.cacheStore, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	entryGuard := generation.NewEntryGuard(app.remoteProvider, app.fallbackProvider, logger)
	app.vocabService = service.NewVocabService(
		app.vocabStore,
		app.eventStore,
		app.scheduler,
		app.eventEmitter,
		entryGuard,
		logger,
	)

	app.reviewService = review.NewService(
		db,
		app.vocabStore,
		app.reviewStore,
		app.scheduler,
		logger,
	)

	zone := timeutil.LoadZone(cfg.Schedule.TimeZone)
	app.sessionComposer = session.NewComposer(app.vocabStore, app.reviewStore, zone, logger)

	app.syncEngine = syncmerge.NewEngine(
		db,
		app.vocabStore,
		app.reviewStore,
		app.eventStore,
		logger,
	)

	if err := app.setupEnrichmentPipeline(); err != nil {
		return nil, err
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupEnrichmentPipeline builds the background enrichment chain: vocab
// creation emits an event, the handler enqueues a task, the worker pool
// runs it against the providers and writes the result to the cache.
func (app *application) setupEnrichmentPipeline() error {
	app.taskQueue = task.NewTaskQueue(app.config.Task.QueueSize, app.logger)

	handler := task.NewEnrichmentEventHandler(
		app.taskQueue,
		app.remoteProvider,
		app.fallbackProvider,
		app.cacheService,
		app.logger,
	)

	emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter)
	if !ok {
		return fmt.Errorf("unexpected event emitter type, cannot register enrichment handler")
	}
	emitter.RegisterHandler(handler)

	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: app.config.Task.WorkerCount,
	}, app.logger)
	app.workerPool.Start()

	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		app.workerPool.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
