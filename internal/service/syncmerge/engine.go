package syncmerge

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/fingerprint"
	"github.com/vocab-srs/vocab-api/internal/platform/logger"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// Report summarizes an import run.
type Report struct {
	AddedVocabs   int `json:"addedVocabs"`
	UpdatedVocabs int `json:"updatedVocabs"`
	AddedLogs     int `json:"addedLogs"`
	Conflicts     int `json:"conflicts"`
}

// txRunner opens the transaction an import runs in. The default is
// store.RunInTransaction; tests substitute a runner over their fakes.
type txRunner func(ctx context.Context, db *sql.DB, fn store.TxFn) error

// Engine exports and imports sync payloads against the local stores.
type Engine struct {
	db          *sql.DB
	vocabStore  store.VocabStore
	reviewStore store.ReviewLogStore
	eventStore  store.EventStore
	logger      *slog.Logger
	now         func() time.Time
	runTx       txRunner
}

// NewEngine creates a sync engine. If logger is nil, a default logger will
// be used.
func NewEngine(
	db *sql.DB,
	vocabStore store.VocabStore,
	reviewStore store.ReviewLogStore,
	eventStore store.EventStore,
	logger *slog.Logger,
) *Engine {
	if db == nil {
		panic("db cannot be nil")
	}
	if vocabStore == nil {
		panic("vocabStore cannot be nil")
	}
	if reviewStore == nil {
		panic("reviewStore cannot be nil")
	}
	if eventStore == nil {
		panic("eventStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		db:          db,
		vocabStore:  vocabStore,
		reviewStore: reviewStore,
		eventStore:  eventStore,
		logger:      logger.With(slog.String("component", "sync_engine")),
		now:         time.Now,
		runTx:       store.RunInTransaction,
	}
}

// WithClock overrides the time source. Intended for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Export appends an EXPORT event and returns a full snapshot of the local
// collections. The event lands before the reads, so the snapshot records its
// own export.
func (e *Engine) Export(ctx context.Context) (*Payload, error) {
	lg := logger.FromContextOrDefault(ctx, e.logger)
	now := e.now()

	event := domain.NewEvent(domain.EventExport, map[string]any{
		"schemaVersion": SchemaVersion,
	}, now)
	if err := e.eventStore.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append export event: %w", err)
	}

	vocabs, err := e.vocabStore.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vocabs: %w", err)
	}
	logs, err := e.reviewStore.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list review logs: %w", err)
	}
	eventsList, err := e.eventStore.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	payload := &Payload{
		SchemaVersion: SchemaVersion,
		ExportedAt:    NewFlexTime(now),
		Vocabs:        make([]WireVocab, 0, len(vocabs)),
		ReviewLogs:    make([]WireLog, 0, len(logs)),
		Events:        make([]WireEvent, 0, len(eventsList)),
	}
	for _, v := range vocabs {
		payload.Vocabs = append(payload.Vocabs, wireFromVocab(v))
	}
	for _, l := range logs {
		payload.ReviewLogs = append(payload.ReviewLogs, wireFromLog(l))
	}
	for _, ev := range eventsList {
		payload.Events = append(payload.Events, wireFromEvent(ev))
	}

	lg.InfoContext(ctx, "sync export built",
		slog.Int("vocabs", len(payload.Vocabs)),
		slog.Int("review_logs", len(payload.ReviewLogs)),
		slog.Int("events", len(payload.Events)))
	return payload, nil
}

// Import merges a foreign export into local state inside one transaction.
// Payloads with any schema version other than SchemaVersion are rejected
// before anything is written. Re-running the same import is a no-op: vocabs
// match by normalized term, logs deduplicate by fingerprint, and every field
// merge is monotonic.
func (e *Engine) Import(ctx context.Context, payload *Payload) (*Report, error) {
	lg := logger.FromContextOrDefault(ctx, e.logger)

	if payload == nil {
		return nil, fmt.Errorf("%w: missing payload", domain.ErrValidation)
	}
	if payload.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedVersion, payload.SchemaVersion)
	}

	now := e.now()
	report := &Report{}

	err := e.runTx(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		vocabStore := e.vocabStore.WithTx(tx)
		reviewStore := e.reviewStore.WithTx(tx)
		eventStore := e.eventStore.WithTx(tx)

		idMap, err := e.importVocabs(ctx, vocabStore, payload.Vocabs, now, report)
		if err != nil {
			return err
		}
		if err := e.importLogs(ctx, vocabStore, reviewStore, payload.ReviewLogs, idMap, now, report); err != nil {
			return err
		}
		if err := e.importEvents(ctx, eventStore, payload.Events, now); err != nil {
			return err
		}

		final := domain.NewEvent(domain.EventImport, map[string]any{
			"addedVocabs":         report.AddedVocabs,
			"updatedVocabs":       report.UpdatedVocabs,
			"addedLogs":           report.AddedLogs,
			"conflicts":           report.Conflicts,
			"sourceSchemaVersion": payload.SchemaVersion,
		}, now)
		return eventStore.Append(ctx, final)
	})
	if err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}

	lg.InfoContext(ctx, "sync import finished",
		slog.Int("added_vocabs", report.AddedVocabs),
		slog.Int("updated_vocabs", report.UpdatedVocabs),
		slog.Int("added_logs", report.AddedLogs),
		slog.Int("conflicts", report.Conflicts))
	return report, nil
}

// importVocabs walks incoming vocabs in normalized-term order and inserts or
// merges each one. The returned map resolves source vocab IDs to local IDs
// for log attribution.
func (e *Engine) importVocabs(
	ctx context.Context,
	vocabStore store.VocabStore,
	incoming []WireVocab,
	now time.Time,
	report *Report,
) (map[string]uuid.UUID, error) {
	sorted := make([]WireVocab, len(incoming))
	copy(sorted, incoming)
	sort.SliceStable(sorted, func(i, j int) bool {
		return normalizedTermOf(sorted[i]) < normalizedTermOf(sorted[j])
	})

	idMap := make(map[string]uuid.UUID, len(sorted))
	for _, wire := range sorted {
		termNorm := normalizedTermOf(wire)
		if termNorm == "" {
			continue
		}

		candidate := vocabFromWire(wire, termNorm, now)

		existing, err := vocabStore.GetByTermNormalized(ctx, termNorm)
		if err != nil {
			if !store.IsNotFoundError(err) {
				return nil, fmt.Errorf("failed to look up vocab %q: %w", termNorm, err)
			}

			candidate.ID = uuid.New()
			if err := vocabStore.Create(ctx, candidate); err != nil {
				return nil, fmt.Errorf("failed to insert vocab %q: %w", termNorm, err)
			}
			if wire.ID != "" {
				idMap[wire.ID] = candidate.ID
			}
			report.AddedVocabs++
			continue
		}

		if wire.ID != "" {
			idMap[wire.ID] = existing.ID
		}

		before := vocabFingerprint(existing)
		conflicts := mergeVocab(existing, candidate, now)
		report.Conflicts += conflicts

		if vocabFingerprint(existing) == before {
			continue
		}
		if err := vocabStore.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update vocab %q: %w", termNorm, err)
		}
		report.UpdatedVocabs++
	}
	return idMap, nil
}

// importLogs resolves, deduplicates, and inserts incoming review logs.
// Logs whose vocab cannot be resolved are dropped silently.
func (e *Engine) importLogs(
	ctx context.Context,
	vocabStore store.VocabStore,
	reviewStore store.ReviewLogStore,
	incoming []WireLog,
	idMap map[string]uuid.UUID,
	now time.Time,
	report *Report,
) error {
	existing, err := reviewStore.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list review logs: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, log := range existing {
		seen[logFingerprint(log.VocabID, log.CreatedAt, log.Grade, string(log.Mode), string(log.QuestionType))] = struct{}{}
	}

	sorted := make([]WireLog, len(incoming))
	copy(sorted, incoming)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Or(now).Before(sorted[j].CreatedAt.Or(now))
	})

	var accepted []*domain.ReviewLog
	for _, wire := range sorted {
		localID, ok := idMap[wire.VocabID]
		if !ok {
			// The log may reference a vocab this instance already owns.
			parsed, err := uuid.Parse(wire.VocabID)
			if err != nil {
				continue
			}
			if _, err := vocabStore.GetByID(ctx, parsed); err != nil {
				if store.IsNotFoundError(err) {
					continue
				}
				return fmt.Errorf("failed to resolve log vocab: %w", err)
			}
			localID = parsed
		}

		log := logFromWire(wire, localID, now)
		key := logFingerprint(log.VocabID, log.CreatedAt, log.Grade, string(log.Mode), string(log.QuestionType))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		accepted = append(accepted, log)
	}

	if len(accepted) == 0 {
		return nil
	}
	if err := reviewStore.CreateMultiple(ctx, accepted); err != nil {
		return fmt.Errorf("failed to insert review logs: %w", err)
	}
	report.AddedLogs = len(accepted)
	return nil
}

// importEvents appends incoming events verbatim, recovering missing fields.
func (e *Engine) importEvents(
	ctx context.Context,
	eventStore store.EventStore,
	incoming []WireEvent,
	now time.Time,
) error {
	if len(incoming) == 0 {
		return nil
	}

	appended := make([]*domain.Event, 0, len(incoming))
	for _, wire := range incoming {
		eventType := domain.EventType(wire.Type)
		if wire.Type == "" {
			eventType = domain.EventImport
		}
		payload := wire.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		appended = append(appended, &domain.Event{
			ID:        uuid.New(),
			Type:      eventType,
			Payload:   payload,
			CreatedAt: wire.CreatedAt.Or(now),
		})
	}
	if err := eventStore.AppendMultiple(ctx, appended); err != nil {
		return fmt.Errorf("failed to append events: %w", err)
	}
	return nil
}

// logFingerprint identifies a review log for dedup purposes. Identity covers
// the fields a foreign export preserves; local-only IDs are excluded.
func logFingerprint(vocabID uuid.UUID, createdAt time.Time, grade int, mode, questionType string) string {
	return fingerprint.Hash(map[string]any{
		"vocabId":      vocabID.String(),
		"createdAt":    fingerprint.Timestamp(createdAt),
		"grade":        grade,
		"mode":         mode,
		"questionType": questionType,
	})
}
