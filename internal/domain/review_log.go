package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewMode identifies how a card was presented during a review.
type ReviewMode string

// QuestionType identifies the direction a card was asked in.
type QuestionType string

const (
	ReviewModeFlip   ReviewMode = "flip"
	ReviewModeMCQ    ReviewMode = "mcq"
	ReviewModeTyping ReviewMode = "typing"

	QuestionTermToMeaning QuestionType = "term_to_meaning"
	QuestionMeaningToTerm QuestionType = "meaning_to_term"
)

// ValidReviewMode reports whether mode is one of the known review modes.
func ValidReviewMode(mode ReviewMode) bool {
	switch mode {
	case ReviewModeFlip, ReviewModeMCQ, ReviewModeTyping:
		return true
	default:
		return false
	}
}

// ValidQuestionType reports whether qt is one of the known question types.
func ValidQuestionType(qt QuestionType) bool {
	switch qt {
	case QuestionTermToMeaning, QuestionMeaningToTerm:
		return true
	default:
		return false
	}
}

// ReviewLog records a single grading event for a vocab. Logs are immutable
// once written and are owned by the vocab they reference.
type ReviewLog struct {
	ID            uuid.UUID    `json:"id"`
	VocabID       uuid.UUID    `json:"vocabId"`
	Mode          ReviewMode   `json:"mode"`
	QuestionType  QuestionType `json:"questionType"`
	Grade         int          `json:"grade"`
	UserAnswer    *string      `json:"userAnswer,omitempty"`
	IsNearCorrect *bool        `json:"isNearCorrect,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// Validate checks the log's fields against the review contract.
func (l *ReviewLog) Validate() error {
	if l.ID == uuid.Nil || l.VocabID == uuid.Nil {
		return ErrValidation
	}
	if l.Grade < 0 || l.Grade > 5 {
		return ErrInvalidGrade
	}
	if !ValidReviewMode(l.Mode) {
		return ErrInvalidReviewMode
	}
	if !ValidQuestionType(l.QuestionType) {
		return ErrInvalidQuestionType
	}
	return nil
}
