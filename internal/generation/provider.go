package generation

import "context"

// EnrichMissing marks which enrichment fields the caller still needs. The
// provider only produces the requested fields, except ipa which is cheap and
// tracked separately.
type EnrichMissing struct {
	NeedExamples        bool
	NeedMnemonics       bool
	NeedMeaningVariants bool
	NeedIPA             bool
}

// Any reports whether at least one field is requested.
func (m EnrichMissing) Any() bool {
	return m.NeedExamples || m.NeedMnemonics || m.NeedMeaningVariants || m.NeedIPA
}

// Example is one bilingual usage example.
type Example struct {
	En string `json:"en"`
	Vi string `json:"vi"`
}

// EnrichResult carries provider-generated content for one term. Only the
// fields requested through EnrichMissing are populated.
type EnrichResult struct {
	Examples        []Example `json:"examples,omitempty"`
	Mnemonics       []string  `json:"mnemonics,omitempty"`
	MeaningVariants []string  `json:"meaningVariants,omitempty"`
	IPA             string    `json:"ipa,omitempty"`
}

// Judgement is the outcome of a semantic equivalence check.
type Judgement struct {
	IsEquivalent bool   `json:"isEquivalent"`
	ReasonShort  string `json:"reasonShort"`
}

// EntryValidation is the outcome of a plausibility check on a new entry.
type EntryValidation struct {
	IsTermValid        bool     `json:"isTermValid"`
	IsMeaningPlausible bool     `json:"isMeaningPlausible"`
	SuggestedTerm      string   `json:"suggestedTerm"`
	SuggestedMeanings  []string `json:"suggestedMeanings"`
	ReasonShort        string   `json:"reasonShort"`
}

// SpeakingFeedback grades a free-form spoken response against target words.
type SpeakingFeedback struct {
	EstimatedBand   float64  `json:"estimatedBand"`
	TargetCoverage  float64  `json:"targetCoverage"`
	UsedTargetWords []string `json:"usedTargetWords"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	ReasonShort     string   `json:"reasonShort"`
}

// Provider defines the interface for generating vocabulary content. This
// interface serves as a boundary between the application core and external
// AI/LLM services, following the hexagonal architecture pattern.
type Provider interface {
	// Name identifies the provider in cache entries and responses.
	Name() string

	// Enrich produces the requested missing content for a term.
	Enrich(ctx context.Context, term string, meanings []string, missing EnrichMissing) (*EnrichResult, error)

	// JudgeEquivalence decides whether a user answer matches any of the
	// reference meanings semantically.
	JudgeEquivalence(ctx context.Context, term, userAnswer string, meanings []string) (*Judgement, error)

	// ValidateEntry checks whether a term spelling and its meanings look
	// plausible before the entry is saved.
	ValidateEntry(ctx context.Context, term string, meanings []string) (*EntryValidation, error)

	// SpeakingFeedback evaluates a spoken-practice response against the
	// prompt and a set of target words.
	SpeakingFeedback(ctx context.Context, prompt, responseText string, targetWords []string) (*SpeakingFeedback, error)
}
