package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/galleytrack/galleytrack/internal/batches"
	"github.com/galleytrack/galleytrack/internal/drawers"
	"github.com/galleytrack/galleytrack/internal/employees"
	"github.com/galleytrack/galleytrack/internal/evaluation"
	"github.com/galleytrack/galleytrack/internal/history"
	"github.com/galleytrack/galleytrack/internal/observability"
	"github.com/galleytrack/galleytrack/internal/tracking"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	BatchHandler      *batches.Handler
	DrawerHandler     *drawers.Handler
	EmployeeHandler   *employees.Handler
	TrackingHandler   *tracking.Handler
	HistoryHandler    *history.Handler
	EvaluationHandler *evaluation.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with the API routes mounted.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.BatchHandler != nil {
			r.Route("/items", params.BatchHandler.MountRoutes)
		}
		if params.DrawerHandler != nil {
			r.Route("/drawers", params.DrawerHandler.MountRoutes)
		}
		if params.EmployeeHandler != nil {
			r.Route("/employees", params.EmployeeHandler.MountRoutes)
		}
		if params.TrackingHandler != nil {
			r.Route("/drawer-status", params.TrackingHandler.MountRoutes)
		}
		r.Route("/restock-history", func(r chi.Router) {
			// Evaluation routes mount first so /leaderboard and
			// /performance stay ahead of the /{id} wildcard.
			if params.EvaluationHandler != nil {
				params.EvaluationHandler.MountRoutes(r)
			}
			if params.HistoryHandler != nil {
				params.HistoryHandler.MountRoutes(r)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
