package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillback/loglearn/internal/analysis"
	"github.com/quillback/loglearn/internal/config"
	"github.com/quillback/loglearn/internal/events"
	"github.com/quillback/loglearn/internal/pipeline"
	"github.com/quillback/loglearn/internal/platform/gemini"
	"github.com/quillback/loglearn/internal/platform/metrics"
	"github.com/quillback/loglearn/internal/platform/postgres"
	"github.com/quillback/loglearn/internal/service"
	"github.com/quillback/loglearn/internal/service/auth"
	"github.com/quillback/loglearn/internal/store"
	"github.com/quillback/loglearn/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Storage
	runStore store.RunStore

	// Authentication
	jwtService     auth.JWTService
	apiKeyVerifier auth.APIKeyVerifier

	// Task processing
	registry *task.Registry
	pool     *task.Pool
	pipeline *pipeline.Pipeline

	// Service layer
	analysisService service.AnalysisService
	eventEmitter    events.EventEmitter

	metricsShutdown metrics.ShutdownFunc
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger,
// and database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.apiKeyVerifier = auth.NewBcryptVerifier()

	// Topic classification falls back to the keyword heuristic when no
	// Gemini API key is configured.
	var registryCfg analysis.Config
	if cfg.LLM.GeminiAPIKey != "" {
		classifier, err := gemini.NewClassifier(
			ctx,
			logger.With("component", "topic_classifier"),
			cfg.LLM,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize topic classifier: %w", err)
		}
		registryCfg.Classifier = classifier
		logger.Info("gemini topic classifier initialized", "model", cfg.LLM.Model)
	} else {
		logger.Info("no gemini API key configured, topic classification uses the keyword heuristic")
	}

	app.registry, err = analysis.NewRegistry(registryCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build task registry: %w", err)
	}
	logger.Info("task registry initialized", "task_types", app.registry.Len())

	recorder, metricsShutdown, err := metrics.Setup(cfg.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}
	app.metricsShutdown = metricsShutdown

	app.pool, err = task.NewPool(app.registry, task.PoolConfig{
		PoolSize:       cfg.Pool.Size,
		MaxQueueDepth:  cfg.Pool.MaxQueueDepth,
		OverflowPolicy: task.OverflowPolicy(cfg.Pool.OverflowPolicy),
		RestartDelay:   cfg.Pool.RestartDelay,
		RetryCrashed:   cfg.Pool.RetryCrashed,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start task pool: %w", err)
	}
	if recorder != nil {
		app.pool.SetMetricsRecorder(recorder)
	}

	app.pipeline, err = pipeline.New(app.pool, pipeline.Config{
		BatchSize: cfg.Pipeline.BatchSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	// Run history store and the event handler that persists terminal
	// run state.
	app.runStore = postgres.NewPostgresRunStore(db, logger)
	runRepo := service.NewRunRepositoryAdapter(app.runStore, db)

	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	runRecorder, err := service.NewRunRecorder(runRepo, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create run recorder: %w", err)
	}
	emitter.RegisterHandler(runRecorder)

	app.analysisService, err = service.NewAnalysisService(
		app.pool,
		app.pipeline,
		runRepo,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources. The pool
// drains in-flight tasks before the database connection closes so the
// run recorder can still persist outcomes.
func (app *application) cleanup() {
	if app.pool != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := app.pool.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("error shutting down task pool", "error", err)
		}
		cancel()
	}

	if app.metricsShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.metricsShutdown(shutdownCtx); err != nil {
			app.logger.Error("error shutting down metrics exporter", "error", err)
		}
		cancel()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
