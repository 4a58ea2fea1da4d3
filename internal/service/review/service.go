package review

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/domain/srs"
	"github.com/vocab-srs/vocab-api/internal/platform/logger"
	"github.com/vocab-srs/vocab-api/internal/service/typing"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// Request carries one graded answer for a card.
type Request struct {
	VocabID      uuid.UUID
	Mode         domain.ReviewMode
	QuestionType domain.QuestionType
	Grade        int
	UserAnswer   *string
}

// Response is the outcome of a review: the updated card plus the scheduling
// fields the client shows immediately. The client calls the entry a card, so
// the wire name follows.
type Response struct {
	Vocab        *domain.Vocab `json:"card"`
	NextDueAt    time.Time     `json:"nextDueAt"`
	IntervalDays int           `json:"intervalDays"`
	EaseFactor   float64       `json:"easeFactor"`
	Repetitions  int           `json:"repetitions"`
	Lapses       int           `json:"lapses"`
}

// Service records reviews and advances card scheduling state.
type Service struct {
	db          *sql.DB
	vocabStore  store.VocabStore
	reviewStore store.ReviewLogStore
	scheduler   *srs.Scheduler
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a review service. If logger is nil, a default logger
// will be used.
func NewService(
	db *sql.DB,
	vocabStore store.VocabStore,
	reviewStore store.ReviewLogStore,
	scheduler *srs.Scheduler,
	logger *slog.Logger,
) *Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if vocabStore == nil {
		panic("vocabStore cannot be nil")
	}
	if reviewStore == nil {
		panic("reviewStore cannot be nil")
	}
	if scheduler == nil {
		scheduler = srs.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		db:          db,
		vocabStore:  vocabStore,
		reviewStore: reviewStore,
		scheduler:   scheduler,
		logger:      logger.With(slog.String("component", "review_service")),
		now:         time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit validates the request, records the review log, and applies the
// scheduling transition. Log insert and vocab update happen in one
// transaction; the vocab write carries a compare-and-swap on updatedAt so a
// concurrent writer fails the transaction instead of silently losing state.
func (s *Service) Submit(ctx context.Context, req Request) (*Response, error) {
	lg := logger.FromContextOrDefault(ctx, s.logger)

	if req.Grade < 0 || req.Grade > 5 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidGrade, req.Grade)
	}
	if !domain.ValidReviewMode(req.Mode) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidReviewMode, req.Mode)
	}
	if !domain.ValidQuestionType(req.QuestionType) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidQuestionType, req.QuestionType)
	}

	vocab, err := s.vocabStore.GetByID(ctx, req.VocabID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocab: %w", err)
	}

	var nearCorrect *bool
	if req.Mode == domain.ReviewModeTyping && req.UserAnswer != nil && *req.UserAnswer != "" {
		candidates := vocab.Meanings
		if req.QuestionType == domain.QuestionMeaningToTerm {
			candidates = []string{vocab.Term}
		}
		verdict := typing.IsNearCorrect(*req.UserAnswer, candidates)
		nearCorrect = &verdict
	}

	now := s.now()
	result, err := s.scheduler.ApplyReview(srs.StateOf(vocab), req.Grade, now)
	if err != nil {
		return nil, err
	}

	log := &domain.ReviewLog{
		ID:            uuid.New(),
		VocabID:       vocab.ID,
		Mode:          req.Mode,
		QuestionType:  req.QuestionType,
		Grade:         req.Grade,
		UserAnswer:    req.UserAnswer,
		IsNearCorrect: nearCorrect,
		CreatedAt:     now,
	}

	expectedUpdatedAt := vocab.UpdatedAt
	result.ApplyTo(vocab)
	vocab.UpdatedAt = now

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.reviewStore.WithTx(tx).Create(ctx, log); err != nil {
			return err
		}
		return s.vocabStore.WithTx(tx).UpdateIfUnchanged(ctx, vocab, expectedUpdatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record review: %w", err)
	}

	lg.InfoContext(ctx, "review recorded",
		slog.String("vocab_id", vocab.ID.String()),
		slog.Int("grade", req.Grade),
		slog.Int("interval_days", vocab.IntervalDays))

	return &Response{
		Vocab:        vocab,
		NextDueAt:    vocab.DueAt,
		IntervalDays: vocab.IntervalDays,
		EaseFactor:   vocab.EaseFactor,
		Repetitions:  vocab.Repetitions,
		Lapses:       vocab.Lapses,
	}, nil
}
