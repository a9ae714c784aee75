package evaluation

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/galleytrack/galleytrack/internal/platform/httpx"
	"github.com/galleytrack/galleytrack/internal/shared"
)

// Handler exposes the evaluation endpoints alongside the restock
// history routes.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/performance/{employeeID}", h.handlePerformance)
	r.Get("/leaderboard", h.handleLeaderboard)
}

func (h *Handler) handlePerformance(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "employeeID")
	if _, err := uuid.Parse(raw); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("invalid UUID format for %s", "employeeID"))
		return
	}
	perf, err := h.service.PerformanceFor(r.Context(), raw)
	if err != nil {
		h.respondError(w, "employee performance", err)
		return
	}
	httpx.Success(w, http.StatusOK, perf)
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	metric := Metric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = MetricAccuracy
	}
	if !ValidMetric(metric) {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Metric must be accuracy_score or efficiency_score")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	board, err := h.service.Leaderboard(r.Context(), metric, limit)
	if err != nil {
		h.respondError(w, "leaderboard", err)
		return
	}
	httpx.Success(w, http.StatusOK, board)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
