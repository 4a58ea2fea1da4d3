package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/domain/srs"
	"github.com/vocab-srs/vocab-api/internal/store"
)

type stubVocabStore struct {
	store.VocabStore

	vocab *domain.Vocab
}

func (s *stubVocabStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Vocab, error) {
	if s.vocab == nil || s.vocab.ID != id {
		return nil, store.ErrVocabNotFound
	}
	copied := *s.vocab
	return &copied, nil
}

func (s *stubVocabStore) WithTx(_ *sql.Tx) store.VocabStore { return s }

func newTestService(vocabStore store.VocabStore) *Service {
	return &Service{
		vocabStore: vocabStore,
		scheduler:  srs.Default(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
}

func validRequest(vocabID uuid.UUID) Request {
	return Request{
		VocabID:      vocabID,
		Mode:         domain.ReviewModeFlip,
		QuestionType: domain.QuestionTermToMeaning,
		Grade:        4,
	}
}

func TestSubmitRejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	service := newTestService(&stubVocabStore{})
	ctx := context.Background()

	testCases := []struct {
		name     string
		mutate   func(*Request)
		expected error
	}{
		{name: "grade too high", mutate: func(r *Request) { r.Grade = 6 }, expected: domain.ErrInvalidGrade},
		{name: "grade negative", mutate: func(r *Request) { r.Grade = -1 }, expected: domain.ErrInvalidGrade},
		{name: "unknown mode", mutate: func(r *Request) { r.Mode = "swipe" }, expected: domain.ErrInvalidReviewMode},
		{name: "unknown question type", mutate: func(r *Request) { r.QuestionType = "cloze" }, expected: domain.ErrInvalidQuestionType},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := validRequest(uuid.New())
			tc.mutate(&req)

			_, err := service.Submit(ctx, req)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestSubmitUnknownVocab(t *testing.T) {
	t.Parallel()

	service := newTestService(&stubVocabStore{})

	_, err := service.Submit(context.Background(), validRequest(uuid.New()))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// The client sends cardId and expects the updated entry back under card; the
// response keys are part of the wire contract.
func TestResponseWireNames(t *testing.T) {
	t.Parallel()

	resp := Response{
		Vocab:        &domain.Vocab{ID: uuid.New(), Term: "take off"},
		NextDueAt:    time.Now(),
		IntervalDays: 6,
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "card")
	assert.Contains(t, decoded, "nextDueAt")
	assert.Contains(t, decoded, "intervalDays")
	assert.NotContains(t, decoded, "vocab")
}
