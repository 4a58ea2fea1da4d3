package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	surroundingPunct = regexp.MustCompile(`^[\W_]+|[\W_]+$`)
	multiSpace       = regexp.MustCompile(`\s+`)
)

// NormalizeTerm produces the canonical form of a term: lowercased, surrounding
// punctuation trimmed, internal whitespace collapsed to single spaces. The
// normalized form is the identity key for duplicate detection and sync merging.
func NormalizeTerm(term string) string {
	normalized := multiSpace.ReplaceAllString(strings.ToLower(strings.TrimSpace(term)), " ")
	normalized = surroundingPunct.ReplaceAllString(normalized, "")
	return strings.TrimSpace(multiSpace.ReplaceAllString(normalized, " "))
}

// Vocab represents a learnable term together with its content and its
// spaced-repetition scheduling state.
//
// JSON tags use the sync wire names: a marshalled Vocab is exactly one record
// of the export payload's vocabs array.
type Vocab struct {
	ID             uuid.UUID           `json:"id"`
	Term           string              `json:"term"`
	TermNormalized string              `json:"termNormalized"`
	Meanings       []string            `json:"meanings"`
	IPA            string              `json:"ipa,omitempty"`
	ExampleEn      string              `json:"exampleEn,omitempty"`
	ExampleVi      string              `json:"exampleVi,omitempty"`
	Mnemonic       string              `json:"mnemonic,omitempty"`
	Tags           []string            `json:"tags"`
	Collocations   []string            `json:"collocations"`
	Phrases        []string            `json:"phrases"`
	WordFamily     map[string][]string `json:"wordFamily"`
	Topics         []string            `json:"topics"`
	CEFRLevel      string              `json:"cefrLevel,omitempty"`
	IELTSBand      *float64            `json:"ieltsBand,omitempty"`

	EaseFactor     float64    `json:"easeFactor"`
	IntervalDays   int        `json:"intervalDays"`
	Repetitions    int        `json:"repetitions"`
	Lapses         int        `json:"lapses"`
	DueAt          time.Time  `json:"dueAt"`
	LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`
	ReaddCount     int        `json:"readdCount"`
	LastReaddAt    *time.Time `json:"lastReaddAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the invariants every persisted Vocab must hold.
func (v *Vocab) Validate() error {
	if v.ID == uuid.Nil {
		return ErrValidation
	}
	if v.TermNormalized == "" {
		return ErrEmptyTerm
	}
	if v.EaseFactor < 1.3 || v.EaseFactor > 3.0 {
		return ErrValidation
	}
	if v.IntervalDays < 0 || v.Repetitions < 0 || v.Lapses < 0 || v.ReaddCount < 0 {
		return ErrValidation
	}
	if v.DueAt.IsZero() {
		return ErrValidation
	}
	return nil
}

// UniqueStrings trims each entry and drops empties and case-sensitive
// duplicates, preserving first-occurrence order.
func UniqueStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		text := strings.TrimSpace(item)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}

// MergeUniqueStrings unions two lists, existing order first, then new items.
func MergeUniqueStrings(left, right []string) []string {
	return UniqueStrings(append(append([]string{}, left...), right...))
}

// NormalizeWordFamily lowercases the role keys and deduplicates each role's
// word list. Empty roles are dropped.
func NormalizeWordFamily(family map[string][]string) map[string][]string {
	out := make(map[string][]string, len(family))
	for role, words := range family {
		key := strings.ToLower(strings.TrimSpace(role))
		if key == "" {
			continue
		}
		out[key] = UniqueStrings(words)
	}
	return out
}

// MergeWordFamily unions two word-family mappings role by role.
func MergeWordFamily(left, right map[string][]string) map[string][]string {
	merged := NormalizeWordFamily(left)
	for role, words := range NormalizeWordFamily(right) {
		merged[role] = MergeUniqueStrings(merged[role], words)
	}
	return merged
}
