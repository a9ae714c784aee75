package drawers

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

// Handler exposes drawer CRUD under /api/drawers.
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
}

type createRequest struct {
	DrawerCode string `json:"drawer_code" validate:"required,max=50"`
	TrolleyID  string `json:"trolley_id" validate:"required,max=50"`
	Position   int    `json:"position" validate:"gte=0"`
	Capacity   int    `json:"capacity" validate:"required,gt=0"`
	DrawerType string `json:"drawer_type" validate:"required,max=50"`
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
	drawer, err := h.service.Create(r.Context(), CreateInput{
		DrawerCode: req.DrawerCode,
		TrolleyID:  req.TrolleyID,
		Position:   req.Position,
		Capacity:   req.Capacity,
		DrawerType: req.DrawerType,
	})
	if errors.Is(err, shared.ErrDuplicate) {
		httpx.Error(w, http.StatusConflict, "DUPLICATE_DRAWER", fmt.Sprintf("Drawer code %s already exists", req.DrawerCode))
		return
	}
	if err != nil {
		h.respondError(w, "create drawer", err)
		return
	}
	httpx.Success(w, http.StatusCreated, drawer)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("trolley_id"))
	if err != nil {
		h.respondError(w, "list drawers", err)
		return
	}
	httpx.Success(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	drawer, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get drawer", err)
		return
	}
	httpx.Success(w, http.StatusOK, drawer)
}

type updateRequest struct {
	TrolleyID  *string `json:"trolley_id" validate:"omitempty,max=50"`
	Position   *int    `json:"position" validate:"omitempty,gte=0"`
	Capacity   *int    `json:"capacity" validate:"omitempty,gt=0"`
	DrawerType *string `json:"drawer_type" validate:"omitempty,max=50"`
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
	drawer, err := h.service.Update(r.Context(), id, UpdateInput{
		TrolleyID:  req.TrolleyID,
		Position:   req.Position,
		Capacity:   req.Capacity,
		DrawerType: req.DrawerType,
	})
	if err != nil {
		h.respondError(w, "update drawer", err)
		return
	}
	httpx.Success(w, http.StatusOK, drawer)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete drawer", err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]string{"message": "Drawer deleted successfully"})
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
