package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/quillback/loglearn/internal/api"
	apimiddleware "github.com/quillback/loglearn/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	// Trace IDs tag every request log line and error response.
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.jwtService,
		app.apiKeyVerifier,
		&app.config.Auth,
		app.logger,
	)
	taskHandler := api.NewTaskHandler(app.analysisService, app.registry, app.logger)
	runHandler := api.NewRunHandler(app.analysisService, app.registry, app.logger)
	statsHandler := api.NewStatsHandler(app.analysisService, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	// Public endpoints
	r.Post("/auth/token", authHandler.Token)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	// Protected endpoints
	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/tasks", taskHandler.SubmitTask)
		r.Post("/batches", taskHandler.SubmitBatch)

		r.Post("/runs/lines", runHandler.StartLineRun)
		r.Post("/runs/records", runHandler.StartRecordsRun)
		r.Get("/runs", runHandler.ListRuns)
		r.Get("/runs/{id}", runHandler.GetRun)

		r.Get("/pool/stats", statsHandler.GetPoolStats)
	})

	return r
}
