package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/platform/logger"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// vocabColumns is the column list every vocab query selects, in scan order.
const vocabColumns = `id, term, term_normalized, meanings, ipa, example_en, example_vi,
	mnemonic, tags, collocations, phrases, word_family, topics, cefr_level, ielts_band,
	ease_factor, interval_days, repetitions, lapses, due_at, last_reviewed_at,
	readd_count, last_readd_at, created_at, updated_at`

// PostgresVocabStore implements the store.VocabStore interface
// using a PostgreSQL database as the storage backend.
type PostgresVocabStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabStore creates a new PostgreSQL implementation of the
// VocabStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresVocabStore(db store.DBTX, logger *slog.Logger) *PostgresVocabStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVocabStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocab_store")),
	}
}

// Ensure PostgresVocabStore implements store.VocabStore interface
var _ store.VocabStore = (*PostgresVocabStore)(nil)

// WithTx implements store.VocabStore.WithTx
func (s *PostgresVocabStore) WithTx(tx *sql.Tx) store.VocabStore {
	return &PostgresVocabStore{db: tx, logger: s.logger}
}

// Create implements store.VocabStore.Create
// Returns store.ErrTermExists when the normalized term is already taken.
func (s *PostgresVocabStore) Create(ctx context.Context, vocab *domain.Vocab) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := vocab.Validate(); err != nil {
		log.Warn("vocab validation failed during create",
			slog.String("error", err.Error()),
			slog.String("vocab_id", vocab.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO vocabs (` + vocabColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	args, err := vocabArgs(vocab)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsUniqueViolation(err) {
			log.Debug("duplicate normalized term on vocab create",
				slog.String("term_normalized", vocab.TermNormalized))
			return fmt.Errorf("%w: %s", store.ErrTermExists, vocab.TermNormalized)
		}
		log.Error("failed to create vocab",
			slog.String("error", err.Error()),
			slog.String("vocab_id", vocab.ID.String()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.VocabStore.GetByID
func (s *PostgresVocabStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vocab, error) {
	query := `SELECT ` + vocabColumns + ` FROM vocabs WHERE id = $1`
	vocab, err := scanVocab(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrVocabNotFound
		}
		return nil, MapError(err)
	}
	return vocab, nil
}

// GetByTermNormalized implements store.VocabStore.GetByTermNormalized
func (s *PostgresVocabStore) GetByTermNormalized(ctx context.Context, termNormalized string) (*domain.Vocab, error) {
	query := `SELECT ` + vocabColumns + ` FROM vocabs WHERE term_normalized = $1`
	vocab, err := scanVocab(s.db.QueryRowContext(ctx, query, termNormalized))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrVocabNotFound
		}
		return nil, MapError(err)
	}
	return vocab, nil
}

// Update implements store.VocabStore.Update
func (s *PostgresVocabStore) Update(ctx context.Context, vocab *domain.Vocab) error {
	return s.update(ctx, vocab, nil)
}

// UpdateIfUnchanged implements store.VocabStore.UpdateIfUnchanged
func (s *PostgresVocabStore) UpdateIfUnchanged(ctx context.Context, vocab *domain.Vocab, expectedUpdatedAt time.Time) error {
	return s.update(ctx, vocab, &expectedUpdatedAt)
}

func (s *PostgresVocabStore) update(ctx context.Context, vocab *domain.Vocab, expectedUpdatedAt *time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := vocab.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE vocabs SET
			term = $2, term_normalized = $3, meanings = $4, ipa = $5,
			example_en = $6, example_vi = $7, mnemonic = $8, tags = $9,
			collocations = $10, phrases = $11, word_family = $12, topics = $13,
			cefr_level = $14, ielts_band = $15, ease_factor = $16,
			interval_days = $17, repetitions = $18, lapses = $19, due_at = $20,
			last_reviewed_at = $21, readd_count = $22, last_readd_at = $23,
			created_at = $24, updated_at = $25
		WHERE id = $1
	`
	args, err := vocabArgs(vocab)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if expectedUpdatedAt != nil {
		query += ` AND updated_at = $26`
		args = append(args, *expectedUpdatedAt)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update vocab",
			slog.String("error", err.Error()),
			slog.String("vocab_id", vocab.ID.String()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		log.Debug("vocab update matched no row",
			slog.String("vocab_id", vocab.ID.String()),
			slog.Bool("versioned", expectedUpdatedAt != nil))
		return store.ErrUpdateFailed
	}

	return nil
}

// Delete implements store.VocabStore.Delete
// Review logs cascade at the schema level (ON DELETE CASCADE).
func (s *PostgresVocabStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vocabs WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return store.ErrVocabNotFound
	}
	return nil
}

// ListAll implements store.VocabStore.ListAll
func (s *PostgresVocabStore) ListAll(ctx context.Context) ([]*domain.Vocab, error) {
	query := `SELECT ` + vocabColumns + ` FROM vocabs ORDER BY term_normalized ASC, created_at ASC`
	return s.queryVocabs(ctx, query)
}

// ListCreatedBetween implements store.VocabStore.ListCreatedBetween
func (s *PostgresVocabStore) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.Vocab, error) {
	query := `
		SELECT ` + vocabColumns + ` FROM vocabs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`
	return s.queryVocabs(ctx, query, from, to)
}

// ListDueBefore implements store.VocabStore.ListDueBefore
func (s *PostgresVocabStore) ListDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Vocab, error) {
	query := `
		SELECT ` + vocabColumns + ` FROM vocabs
		WHERE due_at <= $1
		ORDER BY due_at ASC
		LIMIT $2
	`
	return s.queryVocabs(ctx, query, cutoff, limit)
}

// ListReviewedNotMastered implements store.VocabStore.ListReviewedNotMastered
func (s *PostgresVocabStore) ListReviewedNotMastered(
	ctx context.Context,
	from, to time.Time,
	lowGradeIDs []uuid.UUID,
	limit int,
) ([]*domain.Vocab, error) {
	ids := make([]string, len(lowGradeIDs))
	for i, id := range lowGradeIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT ` + vocabColumns + ` FROM vocabs
		WHERE last_reviewed_at >= $1 AND last_reviewed_at < $2
		  AND (
			id::text = ANY($3)
			OR readd_count > 0
			OR (lapses > 0 AND updated_at >= $1 AND updated_at < $2)
		  )
		ORDER BY last_reviewed_at ASC
		LIMIT $4
	`
	return s.queryVocabs(ctx, query, from, to, ids, limit)
}

// ListStruggling implements store.VocabStore.ListStruggling
func (s *PostgresVocabStore) ListStruggling(ctx context.Context, limit int) ([]*domain.Vocab, error) {
	query := `
		SELECT ` + vocabColumns + ` FROM vocabs
		WHERE readd_count > 0
		ORDER BY readd_count DESC, due_at ASC
		LIMIT $1
	`
	return s.queryVocabs(ctx, query, limit)
}

func (s *PostgresVocabStore) queryVocabs(ctx context.Context, query string, args ...any) ([]*domain.Vocab, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var vocabs []*domain.Vocab
	for rows.Next() {
		vocab, err := scanVocab(rows)
		if err != nil {
			return nil, MapError(err)
		}
		vocabs = append(vocabs, vocab)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return vocabs, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVocab(row rowScanner) (*domain.Vocab, error) {
	var (
		vocab        domain.Vocab
		meanings     []byte
		tags         []byte
		collocations []byte
		phrases      []byte
		wordFamily   []byte
		topics       []byte
		ieltsBand    sql.NullFloat64
		lastReviewed sql.NullTime
		lastReadd    sql.NullTime
	)

	err := row.Scan(
		&vocab.ID,
		&vocab.Term,
		&vocab.TermNormalized,
		&meanings,
		&vocab.IPA,
		&vocab.ExampleEn,
		&vocab.ExampleVi,
		&vocab.Mnemonic,
		&tags,
		&collocations,
		&phrases,
		&wordFamily,
		&topics,
		&vocab.CEFRLevel,
		&ieltsBand,
		&vocab.EaseFactor,
		&vocab.IntervalDays,
		&vocab.Repetitions,
		&vocab.Lapses,
		&vocab.DueAt,
		&lastReviewed,
		&vocab.ReaddCount,
		&lastReadd,
		&vocab.CreatedAt,
		&vocab.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		raw  []byte
		dest any
	}{
		{meanings, &vocab.Meanings},
		{tags, &vocab.Tags},
		{collocations, &vocab.Collocations},
		{phrases, &vocab.Phrases},
		{wordFamily, &vocab.WordFamily},
		{topics, &vocab.Topics},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("malformed json column: %w", err)
		}
	}

	if ieltsBand.Valid {
		vocab.IELTSBand = &ieltsBand.Float64
	}
	if lastReviewed.Valid {
		t := lastReviewed.Time
		vocab.LastReviewedAt = &t
	}
	if lastReadd.Valid {
		t := lastReadd.Time
		vocab.LastReaddAt = &t
	}

	return &vocab, nil
}

func vocabArgs(vocab *domain.Vocab) ([]any, error) {
	meanings, err := json.Marshal(emptyIfNil(vocab.Meanings))
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(emptyIfNil(vocab.Tags))
	if err != nil {
		return nil, err
	}
	collocations, err := json.Marshal(emptyIfNil(vocab.Collocations))
	if err != nil {
		return nil, err
	}
	phrases, err := json.Marshal(emptyIfNil(vocab.Phrases))
	if err != nil {
		return nil, err
	}
	family := vocab.WordFamily
	if family == nil {
		family = map[string][]string{}
	}
	wordFamily, err := json.Marshal(family)
	if err != nil {
		return nil, err
	}
	topics, err := json.Marshal(emptyIfNil(vocab.Topics))
	if err != nil {
		return nil, err
	}

	var ieltsBand any
	if vocab.IELTSBand != nil {
		ieltsBand = *vocab.IELTSBand
	}
	var lastReviewed any
	if vocab.LastReviewedAt != nil {
		lastReviewed = *vocab.LastReviewedAt
	}
	var lastReadd any
	if vocab.LastReaddAt != nil {
		lastReadd = *vocab.LastReaddAt
	}

	return []any{
		vocab.ID,
		vocab.Term,
		vocab.TermNormalized,
		meanings,
		vocab.IPA,
		vocab.ExampleEn,
		vocab.ExampleVi,
		vocab.Mnemonic,
		tags,
		collocations,
		phrases,
		wordFamily,
		topics,
		vocab.CEFRLevel,
		ieltsBand,
		vocab.EaseFactor,
		vocab.IntervalDays,
		vocab.Repetitions,
		vocab.Lapses,
		vocab.DueAt,
		lastReviewed,
		vocab.ReaddCount,
		lastReadd,
		vocab.CreatedAt,
		vocab.UpdatedAt,
	}, nil
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
