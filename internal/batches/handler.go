package batches

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/galleytrack/galleytrack/internal/platform/httpx"
	"github.com/galleytrack/galleytrack/internal/shared"
)

// Handler exposes item batch CRUD under /api/items.
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
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Get("/status/{status}", h.handleListByStatus)
}

type createRequest struct {
	ItemType     string  `json:"item_type" validate:"required,max=100"`
	BatchNumber  string  `json:"batch_number" validate:"required,max=50"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	ExpiryDate   string  `json:"expiry_date" validate:"required"`
	ReceivedDate *string `json:"received_date"`
	Status       string  `json:"status" validate:"omitempty,oneof=available in_use depleted"`
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
	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "expiry_date must be an ISO 8601 date")
		return
	}
	input := CreateInput{
		ItemType:    req.ItemType,
		BatchNumber: req.BatchNumber,
		Quantity:    req.Quantity,
		ExpiryDate:  expiry,
		Status:      BatchStatus(req.Status),
	}
	if req.ReceivedDate != nil {
		received, err := time.Parse(time.RFC3339, *req.ReceivedDate)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "received_date must be an ISO 8601 timestamp")
			return
		}
		input.ReceivedDate = &received
	}

	batch, err := h.service.Create(r.Context(), input)
	if errors.Is(err, shared.ErrDuplicate) {
		httpx.Error(w, http.StatusConflict, "DUPLICATE_BATCH", fmt.Sprintf("Batch number %s already exists", req.BatchNumber))
		return
	}
	if err != nil {
		h.respondError(w, "create item batch", err)
		return
	}
	httpx.Success(w, http.StatusCreated, batch)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params := shared.PageParamsFromRequest(r)
	filters := ListFilters{ItemType: r.URL.Query().Get("item_type")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := BatchStatus(raw)
		filters.Status = &status
	}
	items, total, err := h.service.List(r.Context(), filters, params)
	if err != nil {
		h.respondError(w, "list item batches", err)
		return
	}
	httpx.Paginated(w, items, shared.NewPagination(params, total))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	batch, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get item batch", err)
		return
	}
	httpx.Success(w, http.StatusOK, batch)
}

type updateRequest struct {
	ItemType   *string `json:"item_type" validate:"omitempty,max=100"`
	Quantity   *int    `json:"quantity" validate:"omitempty,gt=0"`
	ExpiryDate *string `json:"expiry_date"`
	Status     *string `json:"status" validate:"omitempty,oneof=available in_use depleted"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	input := UpdateInput{ItemType: req.ItemType, Quantity: req.Quantity}
	if req.ExpiryDate != nil {
		expiry, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "expiry_date must be an ISO 8601 date")
			return
		}
		input.ExpiryDate = &expiry
	}
	if req.Status != nil {
		status := BatchStatus(*req.Status)
		input.Status = &status
	}
	batch, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, "update item batch", err)
		return
	}
	httpx.Success(w, http.StatusOK, batch)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete item batch", err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]string{"message": "Item batch marked as depleted"})
}

func (h *Handler) handleListByStatus(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListByStatus(r.Context(), BatchStatus(chi.URLParam(r, "status")))
	if err != nil {
		h.respondError(w, "list item batches by status", err)
		return
	}
	httpx.Success(w, http.StatusOK, items)
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
