package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// jsonRequest builds a request with a JSON body for handler tests.
func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

// fakeVocabStore is an in-memory store.VocabStore covering the methods the
// handlers reach. Unimplemented methods panic through the embedded interface.
type fakeVocabStore struct {
	store.VocabStore
	byID    map[uuid.UUID]*domain.Vocab
	byTerm  map[string]*domain.Vocab
	updates int
}

func newFakeVocabStore() *fakeVocabStore {
	return &fakeVocabStore{
		byID:   make(map[uuid.UUID]*domain.Vocab),
		byTerm: make(map[string]*domain.Vocab),
	}
}

func (s *fakeVocabStore) put(vocab *domain.Vocab) {
	s.byID[vocab.ID] = vocab
	s.byTerm[vocab.TermNormalized] = vocab
}

func (s *fakeVocabStore) Create(_ context.Context, vocab *domain.Vocab) error {
	if _, exists := s.byTerm[vocab.TermNormalized]; exists {
		return store.ErrTermExists
	}
	s.put(vocab)
	return nil
}

func (s *fakeVocabStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Vocab, error) {
	vocab, ok := s.byID[id]
	if !ok {
		return nil, store.ErrVocabNotFound
	}
	return vocab, nil
}

func (s *fakeVocabStore) GetByTermNormalized(_ context.Context, termNormalized string) (*domain.Vocab, error) {
	vocab, ok := s.byTerm[termNormalized]
	if !ok {
		return nil, store.ErrVocabNotFound
	}
	return vocab, nil
}

func (s *fakeVocabStore) Update(_ context.Context, vocab *domain.Vocab) error {
	s.put(vocab)
	s.updates++
	return nil
}

// fakeEventStore records appended audit events.
type fakeEventStore struct {
	store.EventStore
	events []*domain.Event
}

func (s *fakeEventStore) Append(_ context.Context, event *domain.Event) error {
	s.events = append(s.events, event)
	return nil
}

// fakeCacheStore is an in-memory store.AICacheStore.
type fakeCacheStore struct {
	entries map[string]*domain.AICacheEntry
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{entries: make(map[string]*domain.AICacheEntry)}
}

func (s *fakeCacheStore) GetByKey(_ context.Context, key string) (*domain.AICacheEntry, error) {
	entry, ok := s.entries[key]
	if !ok {
		return nil, store.ErrCacheEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

func (s *fakeCacheStore) Upsert(_ context.Context, entry *domain.AICacheEntry) error {
	copied := *entry
	s.entries[entry.Key] = &copied
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}
