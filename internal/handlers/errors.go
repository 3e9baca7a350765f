package handlers

import (
	"errors"
	"net/http"

	"github.com/BradenHooton/citywalk/internal/models"
	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
)

// writeServiceError maps a service error to its HTTP status. Only the error
// kind is inspected, never the message text.
func writeServiceError(w http.ResponseWriter, err error, notFoundMsg string) {
	var validationErr *models.ValidationError
	var conflictErr *models.ConflictError

	switch {
	case errors.As(err, &validationErr):
		pkghttp.WriteValidationError(w, validationErr.Errors)
	case errors.As(err, &conflictErr):
		pkghttp.WriteConflict(w, conflictErr.Reason)
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrInvalidID):
		pkghttp.WriteInvalidID(w, "Invalid ID format")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrAccountInactive):
		pkghttp.WriteUnauthorized(w, "Account is not active")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Invalid credentials")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, notFoundMsg)
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// decodeBody reads and validates the JSON request body into dst. It writes
// the 400 response itself and reports whether the handler may continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := pkghttp.DecodeJSON(w, r, dst); err != nil {
		if errors.Is(err, pkghttp.ErrEmptyBody) {
			pkghttp.WriteBadRequest(w, "Request body is required")
			return false
		}
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}
