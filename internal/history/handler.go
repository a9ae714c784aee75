package history

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/galleytrack/galleytrack/internal/platform/httpx"
	"github.com/galleytrack/galleytrack/internal/shared"
)

// Handler exposes the audit trail under /api/restock-history. The trail
// is append-only: there are no update or delete endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Get("/warnings", h.handleListWarnings)
	r.Get("/employee/{employeeID}", h.handleListByEmployee)
	r.Get("/{id}", h.handleGet)
}

type createRequest struct {
	EmployeeID            *string  `json:"employee_id" validate:"omitempty,uuid4"`
	DrawerID              *string  `json:"drawer_id" validate:"omitempty,uuid4"`
	BatchID               *string  `json:"batch_id" validate:"omitempty,uuid4"`
	ActionType            string   `json:"action_type" validate:"required,oneof=restock removal adjustment"`
	QuantityChanged       int      `json:"quantity_changed" validate:"required"`
	CompletionTimeSeconds *int     `json:"completion_time_seconds" validate:"omitempty,gte=0"`
	AccuracyScore         *float64 `json:"accuracy_score" validate:"omitempty,gte=0,lte=999.99"`
	EfficiencyScore       *float64 `json:"efficiency_score" validate:"omitempty,gte=0,lte=999.99"`
	Notes                 *string  `json:"notes"`
	BatchWarningTriggered bool     `json:"batch_warning_triggered"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	record, err := h.service.Create(r.Context(), CreateInput{
		EmployeeID:            req.EmployeeID,
		DrawerID:              req.DrawerID,
		BatchID:               req.BatchID,
		ActionType:            ActionType(req.ActionType),
		QuantityChanged:       req.QuantityChanged,
		CompletionTimeSeconds: req.CompletionTimeSeconds,
		AccuracyScore:         req.AccuracyScore,
		EfficiencyScore:       req.EfficiencyScore,
		Notes:                 req.Notes,
		BatchWarningTriggered: req.BatchWarningTriggered,
	})
	if err != nil {
		h.respondError(w, "create restock record", err)
		return
	}
	httpx.Success(w, http.StatusCreated, record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params := shared.PageParamsFromRequest(r)
	records, total, err := h.service.List(r.Context(), params)
	if err != nil {
		h.respondError(w, "list restock records", err)
		return
	}
	httpx.Paginated(w, records, shared.NewPagination(params, total))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get restock record", err)
		return
	}
	httpx.Success(w, http.StatusOK, record)
}

func (h *Handler) handleListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.uuidParam(w, r, "employeeID")
	if !ok {
		return
	}
	records, err := h.service.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		h.respondError(w, "list restock records by employee", err)
		return
	}
	httpx.Success(w, http.StatusOK, records)
}

func (h *Handler) handleListWarnings(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListWarnings(r.Context())
	if err != nil {
		h.respondError(w, "list warning records", err)
		return
	}
	httpx.Success(w, http.StatusOK, records)
}

func (h *Handler) uuidParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("invalid UUID format for %s", name))
		return "", false
	}
	return raw, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
