package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when content generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate vocabulary content")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during content generation")

	// ErrInvalidConfig is returned when the provider configuration is invalid
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrEmptyTerm is returned when a provider call is made with an empty term
	ErrEmptyTerm = errors.New("term cannot be empty")
)
