package tracking

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

// Handler wires HTTP endpoints for drawer status and the batch ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the tracking handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers tracking routes under /api/drawer-status.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleRecord)
	r.Get("/", h.handleListSnapshots)
	r.Get("/drawer/{drawerID}", h.handleSnapshotByDrawer)
	r.Put("/{id}", h.handleUpdateStatus)
	r.Post("/{id}/deplete-batch", h.handleDeplete)
	r.Get("/{id}/batches", h.handleListBatches)
	r.Get("/{id}/non-depleted-batches", h.handleListNonDepleted)
}

type recordRequest struct {
	DrawerID   string  `json:"drawer_id" validate:"required,uuid4"`
	BatchID    string  `json:"batch_id" validate:"required,uuid4"`
	Quantity   int     `json:"quantity" validate:"required,gt=0"`
	Status     string  `json:"status" validate:"required,oneof=empty partial full needs_restock"`
	EmployeeID *string `json:"employee_id" validate:"omitempty,uuid4"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	snapshot, warning, err := h.service.Record(r.Context(), RecordInput{
		DrawerID:   req.DrawerID,
		BatchID:    req.BatchID,
		Quantity:   req.Quantity,
		Status:     DrawerState(req.Status),
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		h.respondError(w, "record load action", err)
		return
	}

	if warning != nil {
		httpx.SuccessWithWarning(w, snapshot, warning)
		return
	}
	httpx.Success(w, http.StatusCreated, snapshot)
}

func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.service.ListSnapshots(r.Context())
	if err != nil {
		h.respondError(w, "list drawer statuses", err)
		return
	}
	httpx.Success(w, http.StatusOK, snaps)
}

func (h *Handler) handleSnapshotByDrawer(w http.ResponseWriter, r *http.Request) {
	drawerID, ok := h.uuidParam(w, r, "drawerID")
	if !ok {
		return
	}
	snap, err := h.service.SnapshotFor(r.Context(), drawerID)
	if err != nil {
		h.respondError(w, "get drawer status", err)
		return
	}
	httpx.Success(w, http.StatusOK, snap)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=empty partial full needs_restock"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	snap, err := h.service.UpdateStatus(r.Context(), id, DrawerState(req.Status))
	if err != nil {
		h.respondError(w, "update drawer status", err)
		return
	}
	httpx.Success(w, http.StatusOK, snap)
}

type depleteRequest struct {
	BatchTrackingID string `json:"batch_tracking_id" validate:"required,uuid4"`
}

func (h *Handler) handleDeplete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.uuidParam(w, r, "id"); !ok {
		return
	}
	var req depleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	entry, err := h.service.Deplete(r.Context(), req.BatchTrackingID)
	if err != nil {
		h.respondError(w, "deplete batch", err)
		return
	}
	httpx.Success(w, http.StatusOK, entry)
}

func (h *Handler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	snap, err := h.service.SnapshotByID(r.Context(), id)
	if err != nil {
		h.respondError(w, "resolve drawer status", err)
		return
	}
	entries, err := h.service.EntriesFor(r.Context(), snap.DrawerID)
	if err != nil {
		h.respondError(w, "list ledger entries", err)
		return
	}
	httpx.Success(w, http.StatusOK, entries)
}

func (h *Handler) handleListNonDepleted(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	snap, err := h.service.SnapshotByID(r.Context(), id)
	if err != nil {
		h.respondError(w, "resolve drawer status", err)
		return
	}
	entries, err := h.service.NonDepletedEntriesFor(r.Context(), snap.DrawerID)
	if err != nil {
		h.respondError(w, "list non-depleted entries", err)
		return
	}
	httpx.Success(w, http.StatusOK, entries)
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
