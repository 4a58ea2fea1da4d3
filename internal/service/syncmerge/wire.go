package syncmerge

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/vocab-srs/vocab-api/internal/domain"
)

// SchemaVersion is the only payload version this engine reads or writes.
const SchemaVersion = "v1"

// Payload is the sync wire format. The same shape is produced by Export and
// accepted by Import, so two instances can exchange files directly.
type Payload struct {
	SchemaVersion string      `json:"schemaVersion"`
	ExportedAt    FlexTime    `json:"exportedAt"`
	Vocabs        []WireVocab `json:"vocabs"`
	ReviewLogs    []WireLog   `json:"review_logs"`
	Events        []WireEvent `json:"events"`
}

// WireVocab mirrors domain.Vocab with lenient timestamp decoding. Foreign
// exports may carry timestamps in slightly different shapes; decoding never
// fails on them, the engine substitutes the import time instead.
type WireVocab struct {
	ID             string              `json:"id"`
	Term           string              `json:"term"`
	TermNormalized string              `json:"termNormalized"`
	Meanings       []string            `json:"meanings"`
	IPA            string              `json:"ipa"`
	ExampleEn      string              `json:"exampleEn"`
	ExampleVi      string              `json:"exampleVi"`
	Mnemonic       string              `json:"mnemonic"`
	Tags           []string            `json:"tags"`
	Collocations   []string            `json:"collocations"`
	Phrases        []string            `json:"phrases"`
	WordFamily     map[string][]string `json:"wordFamily"`
	Topics         []string            `json:"topics"`
	CEFRLevel      string              `json:"cefrLevel"`
	IELTSBand      *float64            `json:"ieltsBand"`
	EaseFactor     *float64            `json:"easeFactor"`
	IntervalDays   int                 `json:"intervalDays"`
	Repetitions    int                 `json:"repetitions"`
	Lapses         int                 `json:"lapses"`
	DueAt          FlexTime            `json:"dueAt"`
	LastReviewedAt FlexTime            `json:"lastReviewedAt"`
	ReaddCount     int                 `json:"readdCount"`
	LastReaddAt    FlexTime            `json:"lastReaddAt"`
	CreatedAt      FlexTime            `json:"createdAt"`
	UpdatedAt      FlexTime            `json:"updatedAt"`
}

// WireLog mirrors domain.ReviewLog on the wire.
type WireLog struct {
	ID            string   `json:"id"`
	VocabID       string   `json:"vocabId"`
	Mode          string   `json:"mode"`
	QuestionType  string   `json:"questionType"`
	Grade         int      `json:"grade"`
	UserAnswer    *string  `json:"userAnswer"`
	IsNearCorrect *bool    `json:"isNearCorrect"`
	CreatedAt     FlexTime `json:"createdAt"`
}

// WireEvent mirrors domain.Event on the wire.
type WireEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt FlexTime       `json:"createdAt"`
}

// FlexTime is a timestamp that tolerates missing, null, and malformed
// values. Decoding never errors; Valid reports whether a usable instant was
// present.
type FlexTime struct {
	Time  time.Time
	Valid bool
}

// NewFlexTime wraps a concrete instant.
func NewFlexTime(t time.Time) FlexTime {
	return FlexTime{Time: t, Valid: true}
}

// flexTimeLayouts are tried in order when decoding.
var flexTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	*t = FlexTime{}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range flexTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			// Zone-less layouts are taken as UTC.
			t.Time = parsed.UTC()
			t.Valid = true
			return nil
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

// Or returns the wrapped instant, or fallback when none was present.
func (t FlexTime) Or(fallback time.Time) time.Time {
	if t.Valid {
		return t.Time
	}
	return fallback
}

// Ptr returns the wrapped instant as a pointer, or nil when none was present.
func (t FlexTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	instant := t.Time
	return &instant
}

func flexFromPtr(t *time.Time) FlexTime {
	if t == nil {
		return FlexTime{}
	}
	return NewFlexTime(*t)
}

// wireFromVocab converts a stored vocab to its wire form for export.
func wireFromVocab(v *domain.Vocab) WireVocab {
	ease := v.EaseFactor
	return WireVocab{
		ID:             v.ID.String(),
		Term:           v.Term,
		TermNormalized: v.TermNormalized,
		Meanings:       v.Meanings,
		IPA:            v.IPA,
		ExampleEn:      v.ExampleEn,
		ExampleVi:      v.ExampleVi,
		Mnemonic:       v.Mnemonic,
		Tags:           v.Tags,
		Collocations:   v.Collocations,
		Phrases:        v.Phrases,
		WordFamily:     v.WordFamily,
		Topics:         v.Topics,
		CEFRLevel:      v.CEFRLevel,
		IELTSBand:      v.IELTSBand,
		EaseFactor:     &ease,
		IntervalDays:   v.IntervalDays,
		Repetitions:    v.Repetitions,
		Lapses:         v.Lapses,
		DueAt:          NewFlexTime(v.DueAt),
		LastReviewedAt: flexFromPtr(v.LastReviewedAt),
		ReaddCount:     v.ReaddCount,
		LastReaddAt:    flexFromPtr(v.LastReaddAt),
		CreatedAt:      NewFlexTime(v.CreatedAt),
		UpdatedAt:      NewFlexTime(v.UpdatedAt),
	}
}

// wireFromLog converts a stored review log to its wire form for export.
func wireFromLog(l *domain.ReviewLog) WireLog {
	return WireLog{
		ID:            l.ID.String(),
		VocabID:       l.VocabID.String(),
		Mode:          string(l.Mode),
		QuestionType:  string(l.QuestionType),
		Grade:         l.Grade,
		UserAnswer:    l.UserAnswer,
		IsNearCorrect: l.IsNearCorrect,
		CreatedAt:     NewFlexTime(l.CreatedAt),
	}
}

// wireFromEvent converts a stored event to its wire form for export.
func wireFromEvent(e *domain.Event) WireEvent {
	return WireEvent{
		ID:        e.ID.String(),
		Type:      string(e.Type),
		Payload:   e.Payload,
		CreatedAt: NewFlexTime(e.CreatedAt),
	}
}
