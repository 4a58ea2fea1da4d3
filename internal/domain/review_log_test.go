package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidReviewMode(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidReviewMode(ReviewModeFlip))
	assert.True(t, ValidReviewMode(ReviewModeMCQ))
	assert.True(t, ValidReviewMode(ReviewModeTyping))
	assert.False(t, ValidReviewMode("swipe"))
	assert.False(t, ValidReviewMode(""))
}

func TestValidQuestionType(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidQuestionType(QuestionTermToMeaning))
	assert.True(t, ValidQuestionType(QuestionMeaningToTerm))
	assert.False(t, ValidQuestionType("cloze"))
}

func TestReviewLogValidate(t *testing.T) {
	t.Parallel()

	valid := func() *ReviewLog {
		return &ReviewLog{
			ID:           uuid.New(),
			VocabID:      uuid.New(),
			Mode:         ReviewModeFlip,
			QuestionType: QuestionTermToMeaning,
			Grade:        4,
			CreatedAt:    time.Now(),
		}
	}

	assert.NoError(t, valid().Validate())

	testCases := []struct {
		name     string
		mutate   func(*ReviewLog)
		expected error
	}{
		{name: "nil id", mutate: func(l *ReviewLog) { l.ID = uuid.Nil }, expected: ErrValidation},
		{name: "nil vocab id", mutate: func(l *ReviewLog) { l.VocabID = uuid.Nil }, expected: ErrValidation},
		{name: "grade too high", mutate: func(l *ReviewLog) { l.Grade = 6 }, expected: ErrInvalidGrade},
		{name: "grade negative", mutate: func(l *ReviewLog) { l.Grade = -1 }, expected: ErrInvalidGrade},
		{name: "bad mode", mutate: func(l *ReviewLog) { l.Mode = "swipe" }, expected: ErrInvalidReviewMode},
		{name: "bad question type", mutate: func(l *ReviewLog) { l.QuestionType = "cloze" }, expected: ErrInvalidQuestionType},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			log := valid()
			tc.mutate(log)
			assert.ErrorIs(t, log.Validate(), tc.expected)
		})
	}
}
