package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of a
	// unique entity (e.g. a vocab with the same normalized term).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update matched no row, typically
	// because the entity is gone or the expected version no longer holds.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrVocabNotFound indicates that the requested vocab does not exist.
	ErrVocabNotFound = fmt.Errorf("%w: vocab", ErrNotFound)

	// ErrCacheEntryNotFound indicates that the requested AI cache entry does
	// not exist.
	ErrCacheEntryNotFound = fmt.Errorf("%w: ai cache entry", ErrNotFound)

	// ErrTermExists indicates that a vocab with the same normalized term
	// already exists. Callers convert this into the re-add path.
	ErrTermExists = fmt.Errorf("%w: term", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
