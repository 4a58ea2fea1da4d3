package aicache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// Service reads and writes AI cache entries with the merge policy applied.
type Service struct {
	cacheStore store.AICacheStore
	logger     *slog.Logger
}

// NewService creates a cache service. If logger is nil, a default logger
// will be used.
func NewService(cacheStore store.AICacheStore, logger *slog.Logger) *Service {
	if cacheStore == nil {
		panic("cacheStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cacheStore: cacheStore,
		logger:     logger.With(slog.String("component", "aicache_service")),
	}
}

// Get returns the cache entry for key, or nil (no error) on a miss.
func (s *Service) Get(ctx context.Context, key string) (*domain.AICacheEntry, error) {
	entry, err := s.cacheStore.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrCacheEntryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return entry, nil
}

// Upsert merges data into the entry under key and writes it back. The merged
// bundle is returned. CreatedAt is preserved on existing entries.
func (s *Service) Upsert(
	ctx context.Context,
	key, termNormalized, provider string,
	data map[string]any,
	now time.Time,
) (*domain.AICacheEntry, error) {
	existing, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var existingData map[string]any
	createdAt := now
	if existing != nil {
		existingData = existing.Data
		createdAt = existing.CreatedAt
	}

	entry := &domain.AICacheEntry{
		Key:            key,
		TermNormalized: termNormalized,
		Version:        CacheVersion,
		Provider:       provider,
		Data:           MergeContent(existingData, data),
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}
	if err := s.cacheStore.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to upsert cache entry: %w", err)
	}

	s.logger.DebugContext(ctx, "cache entry upserted",
		slog.String("key", key),
		slog.String("provider", provider))
	return entry, nil
}
