// Package httpx provides HTTP response utilities and the shared error taxonomy.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Every failure a handler can surface
// wraps exactly one of these; RespondError translates them into stable codes.
var (
	ErrInvalidID        = errors.New("invalid identifier")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("resource not found")
	ErrDuplicate        = errors.New("duplicate key")
	ErrForeignKey       = errors.New("referenced resource not found")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrUnauthorized     = errors.New("permission denied")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Machine-readable error codes carried in the response body.
const (
	CodeInvalidID        = "invalid_id"
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeDuplicateKey     = "duplicate_key"
	CodeForeignKey       = "foreign_key_violation"
	CodeUnauthenticated  = "unauthenticated"
	CodeUnauthorized     = "unauthorized"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_error"
)

// ErrorBody is the JSON failure envelope.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RespondError maps a domain error to its HTTP status and coded body. Only
// internal errors hide the underlying message from the caller; everything
// else carries a stable code plus the wrapped human-readable text.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidID):
		respondError(w, http.StatusBadRequest, CodeInvalidID, err)
	case errors.Is(err, ErrValidation):
		respondError(w, http.StatusBadRequest, CodeValidation, err)
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, ErrDuplicate):
		respondError(w, http.StatusBadRequest, CodeDuplicateKey, err)
	case errors.Is(err, ErrForeignKey):
		respondError(w, http.StatusBadRequest, CodeForeignKey, err)
	case errors.Is(err, ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, CodeUnauthenticated, err)
	case errors.Is(err, ErrUnauthorized):
		respondError(w, http.StatusForbidden, CodeUnauthorized, err)
	case errors.Is(err, ErrMethodNotAllowed):
		respondError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, err)
	default:
		JSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal error", Code: CodeInternal})
	}
}

func respondError(w http.ResponseWriter, status int, code string, err error) {
	JSON(w, status, ErrorBody{Error: err.Error(), Code: code})
}

// StatusFor returns the HTTP status RespondError would emit for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicate), errors.Is(err, ErrForeignKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
