package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vocab-srs/vocab-api/internal/domain"
)

// ReviewLogStore defines the interface for review log persistence.
// Logs are append-only; there is no update or delete surface.
type ReviewLogStore interface {
	// Create appends a single review log.
	Create(ctx context.Context, log *domain.ReviewLog) error

	// CreateMultiple appends a batch of review logs. Run it inside a
	// transaction when the batch must land atomically.
	CreateMultiple(ctx context.Context, logs []*domain.ReviewLog) error

	// ListAll returns every log ordered by createdAt ascending.
	ListAll(ctx context.Context) ([]*domain.ReviewLog, error)

	// ListVocabIDsWithLowGrade returns the distinct vocab IDs that received a
	// grade below maxGrade in [from, to).
	ListVocabIDsWithLowGrade(ctx context.Context, from, to time.Time, maxGrade int) ([]uuid.UUID, error)

	// WithTx returns a ReviewLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}

// EventStore defines the interface for audit event persistence.
// Events are write-only from the core's perspective; ListAll exists solely to
// include them in sync exports.
type EventStore interface {
	// Append writes a single audit event.
	Append(ctx context.Context, event *domain.Event) error

	// AppendMultiple writes a batch of audit events.
	AppendMultiple(ctx context.Context, events []*domain.Event) error

	// ListAll returns every event ordered by createdAt ascending.
	ListAll(ctx context.Context) ([]*domain.Event, error)

	// WithTx returns an EventStore bound to the given transaction.
	WithTx(tx *sql.Tx) EventStore
}

// AICacheStore defines the interface for AI content cache persistence.
type AICacheStore interface {
	// GetByKey retrieves a cache entry.
	// Returns ErrCacheEntryNotFound if the key has never been written.
	GetByKey(ctx context.Context, key string) (*domain.AICacheEntry, error)

	// Upsert writes a cache entry by key. CreatedAt is preserved on existing
	// entries; UpdatedAt always moves forward.
	Upsert(ctx context.Context, entry *domain.AICacheEntry) error
}
