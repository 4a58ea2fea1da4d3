package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vocab-srs/vocab-api/internal/api"
	apiMiddleware "github.com/vocab-srs/vocab-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	vocabHandler := api.NewVocabHandler(app.vocabService)
	reviewHandler := api.NewReviewHandler(app.reviewService)
	sessionHandler := api.NewSessionHandler(app.sessionComposer)
	syncHandler := api.NewSyncHandler(app.syncEngine)
	aiHandler := api.NewAIHandler(
		app.vocabStore,
		app.cacheService,
		app.remoteProvider,
		app.fallbackProvider,
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Post("/vocab", vocabHandler.CreateVocab)
		r.Post("/review", reviewHandler.SubmitReview)
		r.Get("/session/today", sessionHandler.GetTodaySession)

		r.Get("/sync/export", syncHandler.ExportSync)
		r.Post("/sync/import", syncHandler.ImportSync)

		r.Post("/ai/enrich", aiHandler.EnrichVocab)
		r.Post("/ai/judge", aiHandler.JudgeEquivalence)
		r.Post("/practice/speaking", aiHandler.SpeakingFeedback)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
