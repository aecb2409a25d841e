// Package ui is the surrounding application's HTTP surface. It calls the
// core through the session API and owns nothing of the data-preparation
// semantics itself.
package ui

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chartlab/domain/core"
	"chartlab/internal"
	apperrors "chartlab/internal/errors"
	"chartlab/internal/session"
	"chartlab/ports"
)

// App represents the UI application
type App struct {
	router    *chi.Mux
	session   *session.Session
	plotter   ports.Plotter
	snapshots ports.SnapshotRepository // nil when no store is configured
	log       *internal.Logger
	uploadDir string
}

// Config holds UI application configuration
type Config struct {
	UploadDir string
}

// NewApp wires the session and collaborators into an HTTP application.
// The snapshot repository may be nil; snapshot routes then report 503.
func NewApp(cfg Config, sess *session.Session, plotter ports.Plotter, snapshots ports.SnapshotRepository) *App {
	app := &App{
		router:    chi.NewRouter(),
		session:   sess,
		plotter:   plotter,
		snapshots: snapshots,
		log:       internal.DefaultLogger,
		uploadDir: cfg.UploadDir,
	}

	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// Router exposes the handler for the HTTP server
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
}

func (a *App) setupRoutes() {
	a.router.Route("/api", func(r chi.Router) {
		r.Get("/session", a.handleSessionInfo)
		r.Post("/datasets", a.handleLoadDataset)
		r.Delete("/datasets", a.handleResetSession)

		r.Get("/rows", a.handleGetPage)
		r.Put("/view", a.handleUpdateView)

		r.Post("/clean", a.handleClean)
		r.Delete("/clean", a.handleDiscardCleaning)

		r.Get("/recommend", a.handleRecommend)
		r.Get("/counts", a.handleValueCounts)
		r.Post("/render", a.handleRender)

		r.Post("/snapshots", a.handleSaveSnapshot)
		r.Get("/snapshots", a.handleListSnapshots)
		r.Post("/snapshots/{id}/restore", a.handleRestoreSnapshot)
	})

	a.router.Get("/report", a.handleReportPage)
}

// writeJSON renders a JSON response
func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			a.log.Error("[UI] failed to encode response: %v", err)
		}
	}
}

// errorBody is the JSON error envelope
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps domain errors to HTTP statuses
func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotLoadedError(err):
		status = http.StatusConflict
	case core.IsSchemaError(err),
		core.IsInvalidFilterError(err),
		core.IsUnsupportedCleaningError(err),
		errors.Is(err, core.ErrColumnNotFound),
		errors.Is(err, core.ErrNonNumericColumn):
		status = http.StatusBadRequest
	case apperrors.GetCode(err) == apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.GetCode(err) == apperrors.CodeInvalidInput,
		apperrors.GetCode(err) == apperrors.CodeIngestFailed:
		status = http.StatusBadRequest
	}

	a.log.Warn("[UI] request failed (%d): %v", status, err)
	a.writeJSON(w, status, errorBody{Error: err.Error(), Code: apperrors.GetCode(err)})
}
