package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidGrade is returned when a review grade is outside the 0..5 range.
	ErrInvalidGrade = errors.New("grade must be in range 0..5")

	// ErrEmptyTerm is returned when a term is empty after normalization.
	ErrEmptyTerm = errors.New("term is empty after normalization")

	// ErrImplausibleEntry is returned when entry validation rejects a new
	// term or its meanings before storage.
	ErrImplausibleEntry = errors.New("entry failed plausibility check")

	// ErrInvalidReviewMode is returned when a review mode is not one of
	// flip, mcq, or typing.
	ErrInvalidReviewMode = errors.New("invalid review mode")

	// ErrInvalidQuestionType is returned when a question type is not one of
	// term_to_meaning or meaning_to_term.
	ErrInvalidQuestionType = errors.New("invalid question type")

	// ErrUnsupportedVersion is returned when a sync payload declares a schema
	// version this service cannot merge.
	ErrUnsupportedVersion = errors.New("unsupported schema version")
)
