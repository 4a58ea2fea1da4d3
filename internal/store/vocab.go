package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vocab-srs/vocab-api/internal/domain"
)

// VocabStore defines the interface for vocab persistence.
type VocabStore interface {
	// Create saves a new vocab. Returns ErrTermExists if another vocab with
	// the same normalized term already exists; callers convert that into the
	// re-add path rather than failing the request.
	Create(ctx context.Context, vocab *domain.Vocab) error

	// GetByID retrieves a vocab by its unique ID.
	// Returns ErrVocabNotFound if the vocab does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vocab, error)

	// GetByTermNormalized retrieves a vocab by its normalized term, the true
	// identity key used for duplicate detection and sync merging.
	// Returns ErrVocabNotFound if no vocab has that term.
	GetByTermNormalized(ctx context.Context, termNormalized string) (*domain.Vocab, error)

	// Update overwrites an existing vocab.
	// Returns ErrUpdateFailed if the vocab no longer exists.
	Update(ctx context.Context, vocab *domain.Vocab) error

	// UpdateIfUnchanged overwrites an existing vocab only when its stored
	// updatedAt still equals expectedUpdatedAt. Returns ErrUpdateFailed when
	// the row is gone or another writer got there first; callers re-read and
	// retry so a concurrent review cannot lose a grade.
	UpdateIfUnchanged(ctx context.Context, vocab *domain.Vocab, expectedUpdatedAt time.Time) error

	// Delete removes a vocab. Review logs cascade at the schema level.
	// Returns ErrVocabNotFound if the vocab does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListAll returns every vocab ordered by normalized term, then createdAt.
	// This is the deterministic order the sync exporter relies on.
	ListAll(ctx context.Context) ([]*domain.Vocab, error)

	// ListCreatedBetween returns vocabs created in [from, to),
	// ordered by createdAt ascending.
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.Vocab, error)

	// ListDueBefore returns up to limit vocabs with dueAt <= cutoff,
	// ordered by dueAt ascending.
	ListDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Vocab, error)

	// ListReviewedNotMastered returns up to limit vocabs whose lastReviewedAt
	// falls in [from, to) and that still look unmastered: their ID is in
	// lowGradeIDs, or they have been re-added, or they carry lapses and were
	// also updated inside the window. Ordered by lastReviewedAt ascending.
	ListReviewedNotMastered(
		ctx context.Context,
		from, to time.Time,
		lowGradeIDs []uuid.UUID,
		limit int,
	) ([]*domain.Vocab, error)

	// ListStruggling returns up to limit vocabs with readdCount > 0, ordered
	// by readdCount descending then dueAt ascending.
	ListStruggling(ctx context.Context, limit int) ([]*domain.Vocab, error)

	// WithTx returns a VocabStore bound to the given transaction.
	WithTx(tx *sql.Tx) VocabStore
}
