package employees

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

// Handler exposes employee CRUD under /api/employees.
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
	EmployeeID string `json:"employee_id" validate:"required,max=50"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Role       string `json:"role" validate:"required,max=50"`
	Status     string `json:"status" validate:"omitempty,oneof=active inactive"`
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
	employee, err := h.service.Create(r.Context(), CreateInput{
		EmployeeID: req.EmployeeID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       req.Role,
		Status:     Status(req.Status),
	})
	if errors.Is(err, shared.ErrDuplicate) {
		httpx.Error(w, http.StatusConflict, "DUPLICATE_EMPLOYEE", fmt.Sprintf("Employee ID %s already exists", req.EmployeeID))
		return
	}
	if err != nil {
		h.respondError(w, "create employee", err)
		return
	}
	httpx.Success(w, http.StatusCreated, employee)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var status *Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := Status(raw)
		status = &s
	}
	list, err := h.service.List(r.Context(), status)
	if err != nil {
		h.respondError(w, "list employees", err)
		return
	}
	httpx.Success(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	employee, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get employee", err)
		return
	}
	httpx.Success(w, http.StatusOK, employee)
}

type updateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Role      *string `json:"role" validate:"omitempty,max=50"`
	Status    *string `json:"status" validate:"omitempty,oneof=active inactive"`
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
	input := UpdateInput{FirstName: req.FirstName, LastName: req.LastName, Role: req.Role}
	if req.Status != nil {
		status := Status(*req.Status)
		input.Status = &status
	}
	employee, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, "update employee", err)
		return
	}
	httpx.Success(w, http.StatusOK, employee)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete employee", err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]string{"message": "Employee marked as inactive"})
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
