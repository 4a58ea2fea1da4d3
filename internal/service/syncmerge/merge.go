package syncmerge

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/fingerprint"
)

func normalizedTermOf(wire WireVocab) string {
	source := wire.TermNormalized
	if source == "" {
		source = wire.Term
	}
	return domain.NormalizeTerm(source)
}

// vocabFromWire builds a typed vocab from a wire record. Missing or
// malformed timestamps fall back to now; scheduling fields are clamped into
// their domain ranges so a foreign export cannot smuggle invalid state.
func vocabFromWire(wire WireVocab, termNorm string, now time.Time) *domain.Vocab {
	term := strings.TrimSpace(wire.Term)
	if term == "" {
		term = termNorm
	}

	ease := 2.5
	if wire.EaseFactor != nil {
		ease = clampEase(*wire.EaseFactor)
	}

	return &domain.Vocab{
		Term:           term,
		TermNormalized: termNorm,
		Meanings:       domain.UniqueStrings(wire.Meanings),
		IPA:            strings.TrimSpace(wire.IPA),
		ExampleEn:      wire.ExampleEn,
		ExampleVi:      wire.ExampleVi,
		Mnemonic:       wire.Mnemonic,
		Tags:           domain.UniqueStrings(wire.Tags),
		Collocations:   domain.UniqueStrings(wire.Collocations),
		Phrases:        domain.UniqueStrings(wire.Phrases),
		WordFamily:     domain.NormalizeWordFamily(wire.WordFamily),
		Topics:         domain.UniqueStrings(wire.Topics),
		CEFRLevel:      wire.CEFRLevel,
		IELTSBand:      wire.IELTSBand,
		EaseFactor:     ease,
		IntervalDays:   clampNonNegative(wire.IntervalDays),
		Repetitions:    clampNonNegative(wire.Repetitions),
		Lapses:         clampNonNegative(wire.Lapses),
		DueAt:          wire.DueAt.Or(now),
		LastReviewedAt: wire.LastReviewedAt.Ptr(),
		ReaddCount:     clampNonNegative(wire.ReaddCount),
		LastReaddAt:    wire.LastReaddAt.Ptr(),
		CreatedAt:      wire.CreatedAt.Or(now),
		UpdatedAt:      wire.UpdatedAt.Or(now),
	}
}

// logFromWire builds a typed review log bound to a local vocab ID.
func logFromWire(wire WireLog, vocabID uuid.UUID, now time.Time) *domain.ReviewLog {
	mode := domain.ReviewMode(wire.Mode)
	if !domain.ValidReviewMode(mode) {
		mode = domain.ReviewModeFlip
	}
	questionType := domain.QuestionType(wire.QuestionType)
	if !domain.ValidQuestionType(questionType) {
		questionType = domain.QuestionTermToMeaning
	}
	grade := wire.Grade
	if grade < 0 {
		grade = 0
	}
	if grade > 5 {
		grade = 5
	}

	return &domain.ReviewLog{
		ID:            uuid.New(),
		VocabID:       vocabID,
		Mode:          mode,
		QuestionType:  questionType,
		Grade:         grade,
		UserAnswer:    wire.UserAnswer,
		IsNearCorrect: wire.IsNearCorrect,
		CreatedAt:     wire.CreatedAt.Or(now),
	}
}

// mergeVocab folds the incoming record into existing, returning the number
// of text conflicts observed. List fields union, text fields follow the
// fresher side, and scheduling collapses toward the less-mastered side.
func mergeVocab(existing, incoming *domain.Vocab, now time.Time) int {
	conflicts := 0

	existing.Meanings = domain.MergeUniqueStrings(existing.Meanings, incoming.Meanings)
	existing.Tags = domain.MergeUniqueStrings(existing.Tags, incoming.Tags)
	existing.Collocations = domain.MergeUniqueStrings(existing.Collocations, incoming.Collocations)
	existing.Phrases = domain.MergeUniqueStrings(existing.Phrases, incoming.Phrases)
	existing.Topics = domain.MergeUniqueStrings(existing.Topics, incoming.Topics)
	existing.WordFamily = domain.MergeWordFamily(existing.WordFamily, incoming.WordFamily)
	if incoming.CEFRLevel != "" {
		existing.CEFRLevel = incoming.CEFRLevel
	}
	if incoming.IELTSBand != nil {
		existing.IELTSBand = incoming.IELTSBand
	}

	// Text fields follow last-writer-wins on updatedAt. Ties go to the
	// incoming side so a re-import converges instead of oscillating.
	if !incoming.UpdatedAt.Before(existing.UpdatedAt) {
		conflicts += adoptText(&existing.Term, incoming.Term)
		conflicts += adoptText(&existing.IPA, incoming.IPA)
		conflicts += adoptText(&existing.ExampleEn, incoming.ExampleEn)
		conflicts += adoptText(&existing.ExampleVi, incoming.ExampleVi)
		conflicts += adoptText(&existing.Mnemonic, incoming.Mnemonic)
	}

	if incoming.CreatedAt.Before(existing.CreatedAt) {
		existing.CreatedAt = incoming.CreatedAt
	}
	if incoming.UpdatedAt.After(existing.UpdatedAt) {
		existing.UpdatedAt = incoming.UpdatedAt
	}

	existing.Repetitions = min(existing.Repetitions, incoming.Repetitions)
	existing.IntervalDays = min(existing.IntervalDays, incoming.IntervalDays)
	if incoming.EaseFactor < existing.EaseFactor {
		existing.EaseFactor = incoming.EaseFactor
	}
	existing.DueAt = safeMinTime(existing.DueAt, incoming.DueAt, now)
	existing.Lapses = max(existing.Lapses, incoming.Lapses)
	existing.ReaddCount = max(existing.ReaddCount, incoming.ReaddCount)
	existing.LastReviewedAt = maxTimePtr(existing.LastReviewedAt, incoming.LastReviewedAt)
	existing.LastReaddAt = maxTimePtr(existing.LastReaddAt, incoming.LastReaddAt)

	return conflicts
}

// adoptText overwrites dst with value when value is non-empty, reporting a
// conflict when both sides held different non-empty text.
func adoptText(dst *string, value string) int {
	conflict := 0
	if *dst != "" && value != "" && *dst != value {
		conflict = 1
	}
	if value != "" {
		*dst = value
	}
	return conflict
}

// vocabFingerprint hashes the content of a vocab, excluding its local ID, so
// merges that change nothing can skip the write.
func vocabFingerprint(v *domain.Vocab) string {
	return fingerprint.Hash(map[string]any{
		"term":           v.Term,
		"termNormalized": v.TermNormalized,
		"meanings":       v.Meanings,
		"ipa":            v.IPA,
		"exampleEn":      v.ExampleEn,
		"exampleVi":      v.ExampleVi,
		"mnemonic":       v.Mnemonic,
		"tags":           v.Tags,
		"collocations":   v.Collocations,
		"phrases":        v.Phrases,
		"wordFamily":     v.WordFamily,
		"topics":         v.Topics,
		"cefrLevel":      v.CEFRLevel,
		"ieltsBand":      v.IELTSBand,
		"easeFactor":     v.EaseFactor,
		"intervalDays":   v.IntervalDays,
		"repetitions":    v.Repetitions,
		"lapses":         v.Lapses,
		"dueAt":          fingerprint.Timestamp(v.DueAt),
		"lastReviewedAt": timestampPtr(v.LastReviewedAt),
		"readdCount":     v.ReaddCount,
		"lastReaddAt":    timestampPtr(v.LastReaddAt),
		"createdAt":      fingerprint.Timestamp(v.CreatedAt),
		"updatedAt":      fingerprint.Timestamp(v.UpdatedAt),
	})
}

func timestampPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fingerprint.Timestamp(*t)
}

func safeMinTime(left, right, fallback time.Time) time.Time {
	if left.IsZero() && right.IsZero() {
		return fallback
	}
	if left.IsZero() {
		return right
	}
	if right.IsZero() {
		return left
	}
	if right.Before(left) {
		return right
	}
	return left
}

func maxTimePtr(left, right *time.Time) *time.Time {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	if right.After(*left) {
		return right
	}
	return left
}

func clampEase(ease float64) float64 {
	if ease < 1.3 {
		return 1.3
	}
	if ease > 3.0 {
		return 3.0
	}
	return ease
}

func clampNonNegative(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
