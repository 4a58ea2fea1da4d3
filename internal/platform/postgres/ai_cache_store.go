package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/platform/logger"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// PostgresAICacheStore implements the store.AICacheStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAICacheStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAICacheStore creates a new PostgreSQL implementation of the
// AICacheStore interface. If logger is nil, a default logger will be used.
func NewPostgresAICacheStore(db store.DBTX, logger *slog.Logger) *PostgresAICacheStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAICacheStore{
		db:     db,
		logger: logger.With(slog.String("component", "ai_cache_store")),
	}
}

// Ensure PostgresAICacheStore implements store.AICacheStore interface
var _ store.AICacheStore = (*PostgresAICacheStore)(nil)

// GetByKey implements store.AICacheStore.GetByKey
func (s *PostgresAICacheStore) GetByKey(ctx context.Context, key string) (*domain.AICacheEntry, error) {
	query := `
		SELECT key, term_normalized, version, provider, data, created_at, updated_at
		FROM ai_cache
		WHERE key = $1
	`

	var (
		entry domain.AICacheEntry
		data  []byte
	)
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&entry.Key,
		&entry.TermNormalized,
		&entry.Version,
		&entry.Provider,
		&data,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCacheEntryNotFound
		}
		return nil, MapError(err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &entry.Data); err != nil {
			return nil, fmt.Errorf("malformed cache data: %w", err)
		}
	}
	return &entry, nil
}

// Upsert implements store.AICacheStore.Upsert
// CreatedAt is only written on insert; UpdatedAt always moves forward.
func (s *PostgresAICacheStore) Upsert(ctx context.Context, entry *domain.AICacheEntry) error {
	lg := logger.FromContextOrDefault(ctx, s.logger)

	data, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO ai_cache (key, term_normalized, version, provider, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (key) DO UPDATE SET
			term_normalized = EXCLUDED.term_normalized,
			version = EXCLUDED.version,
			provider = EXCLUDED.provider,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		entry.Key,
		entry.TermNormalized,
		entry.Version,
		entry.Provider,
		data,
		entry.UpdatedAt,
	); err != nil {
		lg.Error("failed to upsert ai cache entry",
			slog.String("error", err.Error()),
			slog.String("key", entry.Key))
		return MapError(err)
	}

	return nil
}
