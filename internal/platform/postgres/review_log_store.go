package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/platform/logger"
	"github.com/vocab-srs/vocab-api/internal/store"
)

const reviewLogColumns = `id, vocab_id, mode, question_type, grade, user_answer, is_near_correct, created_at`

// PostgresReviewLogStore implements the store.ReviewLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgreSQL implementation of the
// ReviewLogStore interface. If logger is nil, a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure PostgresReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// WithTx implements store.ReviewLogStore.WithTx
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{db: tx, logger: s.logger}
}

// Create implements store.ReviewLogStore.Create
func (s *PostgresReviewLogStore) Create(ctx context.Context, log *domain.ReviewLog) error {
	return s.CreateMultiple(ctx, []*domain.ReviewLog{log})
}

// CreateMultiple implements store.ReviewLogStore.CreateMultiple
func (s *PostgresReviewLogStore) CreateMultiple(ctx context.Context, logs []*domain.ReviewLog) error {
	lg := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO review_logs (` + reviewLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, log := range logs {
		if err := log.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		if _, err := s.db.ExecContext(ctx, query,
			log.ID,
			log.VocabID,
			log.Mode,
			log.QuestionType,
			log.Grade,
			nullString(log.UserAnswer),
			nullBool(log.IsNearCorrect),
			log.CreatedAt,
		); err != nil {
			lg.Error("failed to insert review log",
				slog.String("error", err.Error()),
				slog.String("log_id", log.ID.String()),
				slog.String("vocab_id", log.VocabID.String()))
			return MapError(err)
		}
	}

	return nil
}

// ListAll implements store.ReviewLogStore.ListAll
func (s *PostgresReviewLogStore) ListAll(ctx context.Context) ([]*domain.ReviewLog, error) {
	query := `SELECT ` + reviewLogColumns + ` FROM review_logs ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var logs []*domain.ReviewLog
	for rows.Next() {
		var (
			log         domain.ReviewLog
			answer      sql.NullString
			nearCorrect sql.NullBool
		)
		if err := rows.Scan(
			&log.ID,
			&log.VocabID,
			&log.Mode,
			&log.QuestionType,
			&log.Grade,
			&answer,
			&nearCorrect,
			&log.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		if answer.Valid {
			a := answer.String
			log.UserAnswer = &a
		}
		if nearCorrect.Valid {
			n := nearCorrect.Bool
			log.IsNearCorrect = &n
		}
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return logs, nil
}

// nullString converts an optional string into its typed SQL value. Absent
// stays NULL; the near-correct flag and the answer are both tri-state in the
// schema, matching the wire format where the fields may simply be missing.
func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

// ListVocabIDsWithLowGrade implements store.ReviewLogStore.ListVocabIDsWithLowGrade
func (s *PostgresReviewLogStore) ListVocabIDsWithLowGrade(
	ctx context.Context,
	from, to time.Time,
	maxGrade int,
) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT vocab_id FROM review_logs
		WHERE created_at >= $1 AND created_at < $2 AND grade < $3
	`
	rows, err := s.db.QueryContext(ctx, query, from, to, maxGrade)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}
