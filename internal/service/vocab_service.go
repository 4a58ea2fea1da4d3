package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/domain/srs"
	"github.com/vocab-srs/vocab-api/internal/events"
	"github.com/vocab-srs/vocab-api/internal/generation"
	"github.com/vocab-srs/vocab-api/internal/platform/logger"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// CreateVocabInput carries a new entry from the client. List fields are
// deduplicated before storage.
type CreateVocabInput struct {
	Term         string
	Meanings     []string
	IPA          string
	ExampleEn    string
	ExampleVi    string
	Mnemonic     string
	Tags         []string
	Collocations []string
	Phrases      []string
	WordFamily   map[string][]string
	Topics       []string
	CEFRLevel    string
	IELTSBand    *float64
}

// CreateVocabResult is the outcome of a create call. ReAdded is true when the
// term already existed and the entry was merged instead of inserted.
type CreateVocabResult struct {
	Vocab   *domain.Vocab
	ReAdded bool
}

// EntryValidator checks a new entry for plausibility before it is stored.
// *generation.EntryGuard is the production implementation.
type EntryValidator interface {
	ValidateEntry(ctx context.Context, term string, meanings []string) (*generation.EntryValidation, error)
}

// VocabService creates vocab entries and handles the duplicate re-add path.
type VocabService struct {
	vocabStore store.VocabStore
	eventStore store.EventStore
	scheduler  *srs.Scheduler
	emitter    events.EventEmitter
	guard      EntryValidator
	logger     *slog.Logger
	now        func() time.Time
}

// NewVocabService creates a vocab service. The emitter may be nil, in which
// case no enrichment events are published. The guard may be nil, in which
// case entries are stored without a plausibility check. If logger is nil, a
// default logger will be used.
func NewVocabService(
	vocabStore store.VocabStore,
	eventStore store.EventStore,
	scheduler *srs.Scheduler,
	emitter events.EventEmitter,
	guard EntryValidator,
	logger *slog.Logger,
) *VocabService {
	if vocabStore == nil {
		panic("vocabStore cannot be nil")
	}
	if eventStore == nil {
		panic("eventStore cannot be nil")
	}
	if scheduler == nil {
		scheduler = srs.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &VocabService{
		vocabStore: vocabStore,
		eventStore: eventStore,
		scheduler:  scheduler,
		emitter:    emitter,
		guard:      guard,
		logger:     logger.With(slog.String("component", "vocab_service")),
		now:        time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *VocabService) WithClock(now func() time.Time) *VocabService {
	s.now = now
	return s
}

// Create inserts a new vocab entry with fresh scheduling state. When the
// normalized term already exists, the entry is re-added instead: list fields
// are merged into the existing record, the scheduling state takes the re-add
// penalty, and a RE_ADD event is appended.
func (s *VocabService) Create(ctx context.Context, input CreateVocabInput) (*CreateVocabResult, error) {
	lg := logger.FromContextOrDefault(ctx, s.logger)

	termNormalized := domain.NormalizeTerm(input.Term)
	if termNormalized == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrEmptyTerm, input.Term)
	}
	if err := s.validateEntry(ctx, input.Term, input.Meanings); err != nil {
		return nil, err
	}

	now := s.now()
	vocab := s.buildVocab(input, termNormalized, now)

	err := s.vocabStore.Create(ctx, vocab)
	if err == nil {
		lg.InfoContext(ctx, "vocab created",
			slog.String("vocab_id", vocab.ID.String()),
			slog.String("term_normalized", termNormalized))
		s.requestEnrichment(ctx, vocab)
		return &CreateVocabResult{Vocab: vocab}, nil
	}
	if !store.IsDuplicateError(err) {
		return nil, fmt.Errorf("failed to create vocab: %w", err)
	}

	merged, err := s.reAdd(ctx, input, termNormalized, now)
	if err != nil {
		return nil, err
	}

	lg.InfoContext(ctx, "vocab re-added",
		slog.String("vocab_id", merged.ID.String()),
		slog.String("term_normalized", termNormalized),
		slog.Int("readd_count", merged.ReaddCount))
	s.requestEnrichment(ctx, merged)
	return &CreateVocabResult{Vocab: merged, ReAdded: true}, nil
}

// validateEntry asks the guard whether the entry looks plausible. A guard
// outage is logged and treated as a pass; a rejection blocks the insert.
func (s *VocabService) validateEntry(ctx context.Context, term string, meanings []string) error {
	if s.guard == nil {
		return nil
	}
	validation, err := s.guard.ValidateEntry(ctx, term, meanings)
	if err != nil {
		s.logger.WarnContext(ctx, "entry validation unavailable, allowing entry",
			slog.String("error", err.Error()))
		return nil
	}
	if validation == nil || (validation.IsTermValid && validation.IsMeaningPlausible) {
		return nil
	}
	reason := validation.ReasonShort
	if reason == "" {
		reason = "rejected by entry validation"
	}
	return fmt.Errorf("%w: %s", domain.ErrImplausibleEntry, reason)
}

// buildVocab assembles a fresh entry from client input.
func (s *VocabService) buildVocab(input CreateVocabInput, termNormalized string, now time.Time) *domain.Vocab {
	vocab := &domain.Vocab{
		ID:             uuid.New(),
		Term:           strings.TrimSpace(input.Term),
		TermNormalized: termNormalized,
		Meanings:       domain.UniqueStrings(input.Meanings),
		IPA:            strings.TrimSpace(input.IPA),
		ExampleEn:      input.ExampleEn,
		ExampleVi:      input.ExampleVi,
		Mnemonic:       input.Mnemonic,
		Tags:           domain.UniqueStrings(input.Tags),
		Collocations:   domain.UniqueStrings(input.Collocations),
		Phrases:        domain.UniqueStrings(input.Phrases),
		WordFamily:     domain.NormalizeWordFamily(input.WordFamily),
		Topics:         domain.UniqueStrings(input.Topics),
		CEFRLevel:      input.CEFRLevel,
		IELTSBand:      input.IELTSBand,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.scheduler.InitialState(now).ApplyTo(vocab)
	return vocab
}

// reAdd merges client input into the existing entry for the same term and
// applies the re-add scheduling penalty.
func (s *VocabService) reAdd(
	ctx context.Context,
	input CreateVocabInput,
	termNormalized string,
	now time.Time,
) (*domain.Vocab, error) {
	existing, err := s.vocabStore.GetByTermNormalized(ctx, termNormalized)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing vocab for re-add: %w", err)
	}

	existing.Meanings = domain.MergeUniqueStrings(existing.Meanings, input.Meanings)
	existing.Collocations = domain.MergeUniqueStrings(existing.Collocations, input.Collocations)
	existing.Phrases = domain.MergeUniqueStrings(existing.Phrases, input.Phrases)
	existing.Topics = domain.MergeUniqueStrings(existing.Topics, input.Topics)
	existing.WordFamily = domain.MergeWordFamily(existing.WordFamily, input.WordFamily)
	if input.CEFRLevel != "" {
		existing.CEFRLevel = input.CEFRLevel
	}
	if input.IELTSBand != nil {
		existing.IELTSBand = input.IELTSBand
	}
	if ipa := strings.TrimSpace(input.IPA); ipa != "" {
		existing.IPA = ipa
	}

	s.scheduler.ApplyReaddPenalty(srs.StateOf(existing), now).ApplyTo(existing)
	existing.ReaddCount++
	existing.LastReaddAt = &now
	existing.UpdatedAt = now

	if err := s.vocabStore.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update vocab for re-add: %w", err)
	}

	event := domain.NewEvent(domain.EventReAdd, map[string]any{
		"vocabId":        existing.ID.String(),
		"termNormalized": termNormalized,
	}, now)
	if err := s.eventStore.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append re-add event: %w", err)
	}

	return existing, nil
}

// requestEnrichment publishes a background enrichment request. Emit failures
// are logged and swallowed; enrichment is best effort.
func (s *VocabService) requestEnrichment(ctx context.Context, vocab *domain.Vocab) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewTaskRequestEvent(events.TaskTypeEnrichVocab, events.EnrichVocabPayload{
		Term:           vocab.Term,
		TermNormalized: vocab.TermNormalized,
		Meanings:       vocab.Meanings,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build enrichment event",
			slog.String("error", err.Error()),
			slog.String("vocab_id", vocab.ID.String()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit enrichment event",
			slog.String("error", err.Error()),
			slog.String("vocab_id", vocab.ID.String()))
	}
}
