package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/platform/logger"
	"github.com/vocab-srs/vocab-api/internal/store"
	"github.com/vocab-srs/vocab-api/internal/timeutil"
)

const (
	// DefaultLimit is the review list size when the client does not ask for one.
	DefaultLimit = 30
	// MaxLimit caps the review list size.
	MaxLimit = 200

	// lowGradeCutoff is the first grade that counts as a pass. Logs below it
	// mark a card as not mastered.
	lowGradeCutoff = 3
)

// Session is one day's study plan. TodayNew is unbounded; Review holds at
// most the requested limit, deduplicated across buckets.
type Session struct {
	TodayNew []*domain.Vocab `json:"todayNew"`
	Review   []*domain.Vocab `json:"review"`
}

// Composer builds daily sessions from the vocab and review log stores.
type Composer struct {
	vocabStore  store.VocabStore
	reviewStore store.ReviewLogStore
	zone        *time.Location
	logger      *slog.Logger
}

// NewComposer creates a session composer for the given zone. If zone is nil
// the default zone is used; if logger is nil, a default logger will be used.
func NewComposer(
	vocabStore store.VocabStore,
	reviewStore store.ReviewLogStore,
	zone *time.Location,
	logger *slog.Logger,
) *Composer {
	if vocabStore == nil {
		panic("vocabStore cannot be nil")
	}
	if reviewStore == nil {
		panic("reviewStore cannot be nil")
	}
	if zone == nil {
		zone = timeutil.LoadZone(timeutil.DefaultZoneName)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Composer{
		vocabStore:  vocabStore,
		reviewStore: reviewStore,
		zone:        zone,
		logger:      logger.With(slog.String("component", "session_composer")),
	}
}

// BuildToday assembles the session for the day containing now. Cards created
// today never appear in the review list; the remaining buckets keep their
// priority order and the first occurrence of a card wins.
func (c *Composer) BuildToday(ctx context.Context, limit int, now time.Time) (*Session, error) {
	lg := logger.FromContextOrDefault(ctx, c.logger)

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	todayStart, todayEnd := timeutil.DayBounds(now, c.zone)
	yStart, yEnd := timeutil.YesterdayBounds(now, c.zone)

	todayNew, err := c.vocabStore.ListCreatedBetween(ctx, todayStart, todayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's new vocabs: %w", err)
	}
	todayIDs := make(map[uuid.UUID]struct{}, len(todayNew))
	for _, v := range todayNew {
		todayIDs[v.ID] = struct{}{}
	}

	// Buckets are fetched oversized by the size of the exclusion set, since
	// today's cards are filtered out here rather than in SQL.
	fetch := limit + len(todayIDs)

	due, err := c.vocabStore.ListDueBefore(ctx, now, fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to list due vocabs: %w", err)
	}

	lowGradeIDs, err := c.reviewStore.ListVocabIDsWithLowGrade(ctx, yStart, yEnd, lowGradeCutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list low-grade vocab ids: %w", err)
	}

	notMastered, err := c.vocabStore.ListReviewedNotMastered(ctx, yStart, yEnd, lowGradeIDs, fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to list yesterday's unmastered vocabs: %w", err)
	}

	struggling, err := c.vocabStore.ListStruggling(ctx, fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to list struggling vocabs: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, limit)
	review := make([]*domain.Vocab, 0, limit)
	for _, bucket := range [][]*domain.Vocab{due, notMastered, struggling} {
		for _, v := range bucket {
			if len(review) >= limit {
				break
			}
			if _, ok := todayIDs[v.ID]; ok {
				continue
			}
			if _, ok := seen[v.ID]; ok {
				continue
			}
			seen[v.ID] = struct{}{}
			review = append(review, v)
		}
	}

	lg.DebugContext(ctx, "session composed",
		slog.Int("today_new", len(todayNew)),
		slog.Int("review", len(review)),
		slog.Int("limit", limit))

	return &Session{TodayNew: todayNew, Review: review}, nil
}
