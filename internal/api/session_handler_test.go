package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/service/session"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// sessionVocabStore serves canned buckets for composer-backed handler tests.
type sessionVocabStore struct {
	store.VocabStore
	createdToday []*domain.Vocab
	due          []*domain.Vocab
}

func (s *sessionVocabStore) ListCreatedBetween(context.Context, time.Time, time.Time) ([]*domain.Vocab, error) {
	return s.createdToday, nil
}

func (s *sessionVocabStore) ListDueBefore(context.Context, time.Time, int) ([]*domain.Vocab, error) {
	return s.due, nil
}

func (s *sessionVocabStore) ListReviewedNotMastered(context.Context, time.Time, time.Time, []uuid.UUID, int) ([]*domain.Vocab, error) {
	return nil, nil
}

func (s *sessionVocabStore) ListStruggling(context.Context, int) ([]*domain.Vocab, error) {
	return nil, nil
}

type sessionReviewStore struct {
	store.ReviewLogStore
}

func (s *sessionReviewStore) ListVocabIDsWithLowGrade(context.Context, time.Time, time.Time, int) ([]uuid.UUID, error) {
	return nil, nil
}

func newTestSessionHandler(vocabStore *sessionVocabStore) *SessionHandler {
	composer := session.NewComposer(vocabStore, &sessionReviewStore{}, nil, discardLogger())
	return NewSessionHandler(composer)
}

func TestGetTodaySessionRejectsBadLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit string
	}{
		{name: "zero", limit: "0"},
		{name: "negative", limit: "-5"},
		{name: "above maximum", limit: "201"},
		{name: "not a number", limit: "thirty"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := NewSessionHandler(nil)
			req := httptest.NewRequest(http.MethodGet, "/api/session/today?limit="+tc.limit, nil)
			rec := httptest.NewRecorder()

			handler.GetTodaySession(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetTodaySessionReturnsBuckets(t *testing.T) {
	t.Parallel()

	now := time.Now()
	newCard := &domain.Vocab{ID: uuid.New(), Term: "serendipity", CreatedAt: now}
	dueCard := &domain.Vocab{ID: uuid.New(), Term: "ubiquitous", DueAt: now.Add(-time.Hour)}

	handler := newTestSessionHandler(&sessionVocabStore{
		createdToday: []*domain.Vocab{newCard},
		due:          []*domain.Vocab{dueCard},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/session/today", nil)
	rec := httptest.NewRecorder()
	handler.GetTodaySession(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got session.Session
	decodeBody(t, rec, &got)
	require.Len(t, got.TodayNew, 1)
	assert.Equal(t, newCard.ID, got.TodayNew[0].ID)
	require.Len(t, got.Review, 1)
	assert.Equal(t, dueCard.ID, got.Review[0].ID)
}

func TestGetTodaySessionAcceptsBoundaryLimits(t *testing.T) {
	t.Parallel()

	for _, limit := range []string{"1", "200"} {
		limit := limit
		t.Run("limit "+limit, func(t *testing.T) {
			t.Parallel()

			handler := newTestSessionHandler(&sessionVocabStore{})
			req := httptest.NewRequest(http.MethodGet, "/api/session/today?limit="+limit, nil)
			rec := httptest.NewRecorder()

			handler.GetTodaySession(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
