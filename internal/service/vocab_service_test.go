package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/events"
	"github.com/vocab-srs/vocab-api/internal/generation"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// memVocabStore is an in-memory store.VocabStore for service tests.
type memVocabStore struct {
	store.VocabStore

	byID   map[uuid.UUID]*domain.Vocab
	byTerm map[string]uuid.UUID
}

func newMemVocabStore() *memVocabStore {
	return &memVocabStore{
		byID:   make(map[uuid.UUID]*domain.Vocab),
		byTerm: make(map[string]uuid.UUID),
	}
}

func (s *memVocabStore) Create(_ context.Context, vocab *domain.Vocab) error {
	if _, exists := s.byTerm[vocab.TermNormalized]; exists {
		return store.ErrTermExists
	}
	copied := *vocab
	s.byID[vocab.ID] = &copied
	s.byTerm[vocab.TermNormalized] = vocab.ID
	return nil
}

func (s *memVocabStore) GetByTermNormalized(_ context.Context, termNormalized string) (*domain.Vocab, error) {
	id, ok := s.byTerm[termNormalized]
	if !ok {
		return nil, store.ErrVocabNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *memVocabStore) Update(_ context.Context, vocab *domain.Vocab) error {
	if _, ok := s.byID[vocab.ID]; !ok {
		return store.ErrUpdateFailed
	}
	copied := *vocab
	s.byID[vocab.ID] = &copied
	return nil
}

func (s *memVocabStore) WithTx(_ *sql.Tx) store.VocabStore { return s }

// memEventStore records appended events.
type memEventStore struct {
	store.EventStore

	events []*domain.Event
}

func (s *memEventStore) Append(_ context.Context, event *domain.Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *memEventStore) WithTx(_ *sql.Tx) store.EventStore { return s }

// captureEmitter records emitted task request events.
type captureEmitter struct {
	emitted []*events.TaskRequestEvent
}

func (e *captureEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	e.emitted = append(e.emitted, event)
	return nil
}

func newTestVocabService(vocabStore *memVocabStore, eventStore *memEventStore, emitter events.EventEmitter) *VocabService {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewVocabService(vocabStore, eventStore, nil, emitter, nil, quiet)
}

func TestCreateVocab(t *testing.T) {
	t.Parallel()

	vocabStore := newMemVocabStore()
	eventStore := &memEventStore{}
	emitter := &captureEmitter{}
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	service := newTestVocabService(vocabStore, eventStore, emitter).
		WithClock(func() time.Time { return now })

	result, err := service.Create(context.Background(), CreateVocabInput{
		Term:     "  Resilient ",
		Meanings: []string{"kiên cường", "kiên cường", ""},
		Tags:     []string{"ielts"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.False(t, result.ReAdded)
	vocab := result.Vocab
	assert.Equal(t, "Resilient", vocab.Term)
	assert.Equal(t, "resilient", vocab.TermNormalized)
	assert.Equal(t, []string{"kiên cường"}, vocab.Meanings)
	assert.Equal(t, 2.5, vocab.EaseFactor)
	assert.Equal(t, 0, vocab.Repetitions)
	assert.Equal(t, now, vocab.DueAt, "new cards are due immediately")
	assert.Equal(t, now, vocab.CreatedAt)

	require.Len(t, emitter.emitted, 1, "creation requests enrichment")
	assert.Equal(t, events.TaskTypeEnrichVocab, emitter.emitted[0].Type)
	assert.Empty(t, eventStore.events, "plain creation appends no audit event")
}

func TestCreateVocabEmptyTerm(t *testing.T) {
	t.Parallel()

	service := newTestVocabService(newMemVocabStore(), &memEventStore{}, nil)

	for _, term := range []string{"", "   ", "?!"} {
		_, err := service.Create(context.Background(), CreateVocabInput{Term: term})
		assert.ErrorIs(t, err, domain.ErrEmptyTerm, "term %q", term)
	}
}

func TestCreateVocabReAdd(t *testing.T) {
	t.Parallel()

	vocabStore := newMemVocabStore()
	eventStore := &memEventStore{}
	emitter := &captureEmitter{}
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := created
	service := newTestVocabService(vocabStore, eventStore, emitter).
		WithClock(func() time.Time { return clock })
	ctx := context.Background()

	first, err := service.Create(ctx, CreateVocabInput{
		Term:     "resilient",
		Meanings: []string{"kiên cường"},
		Tags:     []string{"ielts"},
	})
	require.NoError(t, err)

	// Simulate review progress so the penalty is visible.
	stored := vocabStore.byID[first.Vocab.ID]
	stored.EaseFactor = 2.6
	stored.IntervalDays = 6
	stored.Repetitions = 2

	clock = created.AddDate(0, 0, 30)
	second, err := service.Create(ctx, CreateVocabInput{
		Term:      " RESILIENT ",
		Meanings:  []string{"bền bỉ"},
		Tags:      []string{"new tag"},
		CEFRLevel: "C1",
	})
	require.NoError(t, err)

	assert.True(t, second.ReAdded)
	vocab := second.Vocab
	assert.Equal(t, first.Vocab.ID, vocab.ID, "the existing entry is kept")
	assert.Equal(t, []string{"kiên cường", "bền bỉ"}, vocab.Meanings)
	assert.Equal(t, []string{"ielts"}, vocab.Tags, "tags are not merged on re-add")
	assert.Equal(t, "C1", vocab.CEFRLevel)

	assert.InDelta(t, 2.4, vocab.EaseFactor, 0.001, "re-add costs ease")
	assert.Equal(t, 0, vocab.IntervalDays)
	assert.Equal(t, 0, vocab.Repetitions)
	assert.Equal(t, 1, vocab.ReaddCount)
	require.NotNil(t, vocab.LastReaddAt)
	assert.Equal(t, clock, *vocab.LastReaddAt)
	assert.Equal(t, clock, vocab.DueAt, "re-added cards are due immediately")

	require.Len(t, eventStore.events, 1)
	assert.Equal(t, domain.EventReAdd, eventStore.events[0].Type)
	assert.Equal(t, vocab.ID.String(), eventStore.events[0].Payload["vocabId"])

	assert.Len(t, emitter.emitted, 2, "re-add also requests enrichment")
}

// stubGuard returns a canned validation outcome.
type stubGuard struct {
	validation *generation.EntryValidation
	err        error
	calls      int
}

func (g *stubGuard) ValidateEntry(_ context.Context, _ string, _ []string) (*generation.EntryValidation, error) {
	g.calls++
	return g.validation, g.err
}

func TestCreateVocabGuardRejectsImplausibleEntry(t *testing.T) {
	t.Parallel()

	vocabStore := newMemVocabStore()
	emitter := &captureEmitter{}
	guard := &stubGuard{validation: &generation.EntryValidation{
		IsTermValid:        false,
		IsMeaningPlausible: true,
		ReasonShort:        "term looks like a typo",
	}}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewVocabService(vocabStore, &memEventStore{}, nil, emitter, guard, quiet)

	_, err := service.Create(context.Background(), CreateVocabInput{
		Term:     "asdfgh1",
		Meanings: []string{"?"},
	})
	require.ErrorIs(t, err, domain.ErrImplausibleEntry)
	assert.Contains(t, err.Error(), "term looks like a typo")
	assert.Equal(t, 1, guard.calls)
	assert.Empty(t, vocabStore.byID, "rejected entries are never stored")
	assert.Empty(t, emitter.emitted, "rejected entries request no enrichment")
}

func TestCreateVocabGuardOutageAllowsEntry(t *testing.T) {
	t.Parallel()

	guard := &stubGuard{err: context.DeadlineExceeded}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewVocabService(newMemVocabStore(), &memEventStore{}, nil, nil, guard, quiet)

	result, err := service.Create(context.Background(), CreateVocabInput{Term: "resilient"})
	require.NoError(t, err, "validation is advisory when the guard is down")
	assert.NotNil(t, result.Vocab)
	assert.Equal(t, 1, guard.calls)
}

func TestCreateVocabGuardAcceptsPlausibleEntry(t *testing.T) {
	t.Parallel()

	guard := &stubGuard{validation: &generation.EntryValidation{
		IsTermValid:        true,
		IsMeaningPlausible: true,
	}}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewVocabService(newMemVocabStore(), &memEventStore{}, nil, nil, guard, quiet)

	result, err := service.Create(context.Background(), CreateVocabInput{
		Term:     "resilient",
		Meanings: []string{"kiên cường"},
	})
	require.NoError(t, err)
	assert.False(t, result.ReAdded)
	assert.Equal(t, 1, guard.calls)
}

func TestCreateVocabNilEmitter(t *testing.T) {
	t.Parallel()

	service := newTestVocabService(newMemVocabStore(), &memEventStore{}, nil)

	result, err := service.Create(context.Background(), CreateVocabInput{Term: "stoic"})
	require.NoError(t, err)
	assert.NotNil(t, result.Vocab)
}
