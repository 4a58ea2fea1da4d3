package api

import (
	"errors"
	"net/http"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Unprocessable input
	case errors.Is(err, domain.ErrEmptyTerm),
		errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrImplausibleEntry):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidReviewMode),
		errors.Is(err, domain.ErrInvalidQuestionType),
		errors.Is(err, domain.ErrUnsupportedVersion),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrVocabNotFound):
		return "Vocab not found"

	case store.IsNotFoundError(err):
		return "Not found"

	case store.IsDuplicateError(err):
		return "Duplicate entry"

	case errors.Is(err, domain.ErrEmptyTerm):
		return "Term is empty after normalization"

	case errors.Is(err, domain.ErrInvalidGrade):
		return "Grade must be between 0 and 5"

	case errors.Is(err, domain.ErrImplausibleEntry):
		return "Term or meanings look implausible"

	case errors.Is(err, domain.ErrInvalidReviewMode):
		return "Invalid review mode"

	case errors.Is(err, domain.ErrInvalidQuestionType):
		return "Invalid question type"

	case errors.Is(err, domain.ErrUnsupportedVersion):
		return "Unsupported schemaVersion"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// mapError is the common error exit for handlers: status and message both
// derive from the error type.
func mapError(err error) (int, string) {
	return MapErrorToStatusCode(err), GetSafeErrorMessage(err)
}
