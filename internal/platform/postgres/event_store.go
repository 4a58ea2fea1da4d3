package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/platform/logger"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// PostgresEventStore implements the store.EventStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the
// EventStore interface. If logger is nil, a default logger will be used.
func NewPostgresEventStore(db store.DBTX, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

// WithTx implements store.EventStore.WithTx
func (s *PostgresEventStore) WithTx(tx *sql.Tx) store.EventStore {
	return &PostgresEventStore{db: tx, logger: s.logger}
}

// Append implements store.EventStore.Append
func (s *PostgresEventStore) Append(ctx context.Context, event *domain.Event) error {
	return s.AppendMultiple(ctx, []*domain.Event{event})
}

// AppendMultiple implements store.EventStore.AppendMultiple
func (s *PostgresEventStore) AppendMultiple(ctx context.Context, events []*domain.Event) error {
	lg := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO events (id, type, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	for _, event := range events {
		payload, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		if _, err := s.db.ExecContext(ctx, query,
			event.ID,
			event.Type,
			payload,
			event.CreatedAt,
		); err != nil {
			lg.Error("failed to append event",
				slog.String("error", err.Error()),
				slog.String("event_type", string(event.Type)))
			return MapError(err)
		}
	}

	return nil
}

// ListAll implements store.EventStore.ListAll
func (s *PostgresEventStore) ListAll(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT id, type, payload, created_at FROM events ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var events []*domain.Event
	for rows.Next() {
		var (
			event   domain.Event
			payload []byte
		)
		if err := rows.Scan(&event.ID, &event.Type, &payload, &event.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Payload); err != nil {
				return nil, fmt.Errorf("malformed event payload: %w", err)
			}
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return events, nil
}
