// Package httpx provides JSON response envelopes shared by all API handlers.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/galleytrack/galleytrack/internal/shared"
)

type successEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type warningEnvelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data"`
	Warning any    `json:"warning"`
}

type paginatedEnvelope struct {
	Status     string            `json:"status"`
	Data       any               `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON sends an arbitrary JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Success wraps data in the standard success envelope.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, successEnvelope{Status: "success", Data: data})
}

// SuccessWithWarning sends a 207 Multi-Status response carrying an advisory warning.
func SuccessWithWarning(w http.ResponseWriter, data, warning any) {
	JSON(w, http.StatusMultiStatus, warningEnvelope{Status: "success_with_warning", Data: data, Warning: warning})
}

// Paginated wraps a list response with pagination metadata.
func Paginated(w http.ResponseWriter, data any, pagination shared.Pagination) {
	JSON(w, http.StatusOK, paginatedEnvelope{Status: "success", Data: data, Pagination: pagination})
}

// Error sends an error envelope with an explicit code.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
