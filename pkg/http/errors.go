package http

import (
	"net/http"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error   string      `json:"error"`             // Machine-readable error code
	Message string      `json:"message"`           // Human-readable message
	Details interface{} `json:"details,omitempty"` // Optional additional context
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorWithDetails(w, statusCode, errorCode, message, nil)
}

// WriteErrorWithDetails writes a JSON error response with additional details
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, errorCode, message string, details interface{}) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
		Details: details,
	})
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

// WriteValidationError lists every failed rule under details.
func WriteValidationError(w http.ResponseWriter, errs []string) {
	WriteErrorWithDetails(w, http.StatusBadRequest, "validation_error", "Validation failed", errs)
}

func WriteInvalidID(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "invalid_id", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

// WriteConflict reports a uniqueness or slot clash. Clients of this API
// expect 400 rather than 409.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "conflict", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}
