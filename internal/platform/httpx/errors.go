package httpx

import (
	"errors"
	"net/http"

	"github.com/galleytrack/galleytrack/internal/shared"
)

// RespondError maps domain errors to the error envelope. Unrecognised
// errors become opaque SERVER_ERROR responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Error(w, http.StatusConflict, "DUPLICATE_CONFLICT", err.Error())
	default:
		Error(w, http.StatusInternalServerError, "SERVER_ERROR", "internal server error")
	}
}
