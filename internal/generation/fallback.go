package generation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// FallbackProvider is a deterministic Provider used when no remote provider is
// configured or when the remote call fails. Its output is intentionally bland
// but always well-formed, so callers never need a special no-provider path.
type FallbackProvider struct{}

// NewFallbackProvider returns the deterministic fallback provider.
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

var _ Provider = (*FallbackProvider)(nil)

// Name implements Provider.Name.
func (p *FallbackProvider) Name() string { return "fallback" }

// Enrich implements Provider.Enrich with template output.
func (p *FallbackProvider) Enrich(
	_ context.Context,
	term string,
	meanings []string,
	missing EnrichMissing,
) (*EnrichResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}

	result := &EnrichResult{}
	if missing.NeedExamples {
		result.Examples = []Example{{
			En: fmt.Sprintf("I used '%s' in a sentence today.", term),
			Vi: fmt.Sprintf("Hom nay toi da dung tu '%s' trong mot cau.", term),
		}}
	}
	if missing.NeedMnemonics {
		result.Mnemonics = []string{
			fmt.Sprintf("Think of '%s' as a keyword tied to a memorable scene.", term),
		}
	}
	if missing.NeedMeaningVariants {
		seed := term
		if len(meanings) > 0 {
			seed = meanings[0]
		}
		result.MeaningVariants = []string{seed, seed + " (alternate)"}
	}
	if missing.NeedIPA {
		result.IPA = "/" + strings.ToLower(term) + "/"
	}
	return result, nil
}

// JudgeEquivalence implements Provider.JudgeEquivalence with a substring
// check. Real semantic judging is the remote provider's job.
func (p *FallbackProvider) JudgeEquivalence(
	_ context.Context,
	term, userAnswer string,
	meanings []string,
) (*Judgement, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptyTerm
	}

	answer := strings.ToLower(strings.TrimSpace(userAnswer))
	equivalent := false
	if answer != "" {
		for _, meaning := range meanings {
			if meaning != "" && strings.Contains(strings.ToLower(meaning), answer) {
				equivalent = true
				break
			}
		}
	}
	return &Judgement{
		IsEquivalent: equivalent,
		ReasonShort:  "fallback lexical check",
	}, nil
}

// ValidateEntry implements Provider.ValidateEntry with shallow lexical checks.
func (p *FallbackProvider) ValidateEntry(
	_ context.Context,
	term string,
	meanings []string,
) (*EntryValidation, error) {
	rawTerm := strings.TrimSpace(term)
	hasDigits := strings.ContainsFunc(rawTerm, unicode.IsDigit)
	looksInvalidTerm := len(rawTerm) < 2 || hasDigits

	cleaned := make([]string, 0, len(meanings))
	plausible := true
	for _, meaning := range meanings {
		meaning = strings.TrimSpace(meaning)
		if meaning == "" {
			continue
		}
		if len(meaning) < 2 {
			plausible = false
		}
		cleaned = append(cleaned, meaning)
	}

	suggested := rawTerm
	if looksInvalidTerm {
		suggested = strings.ToLower(rawTerm)
	}
	return &EntryValidation{
		IsTermValid:        !looksInvalidTerm,
		IsMeaningPlausible: plausible,
		SuggestedTerm:      suggested,
		SuggestedMeanings:  cleaned,
		ReasonShort:        "fallback lexical check",
	}, nil
}

// SpeakingFeedback implements Provider.SpeakingFeedback with a lexical
// diversity heuristic.
func (p *FallbackProvider) SpeakingFeedback(
	_ context.Context,
	prompt, responseText string,
	targetWords []string,
) (*SpeakingFeedback, error) {
	words := strings.Fields(responseText)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}

	uniqueRatio := 0.0
	if len(words) > 0 {
		uniqueRatio = float64(len(unique)) / float64(len(words))
	}
	band := math.Round(math.Min(9.0, math.Max(3.0, 4.5+uniqueRatio*4.0))*10) / 10

	normalized := strings.ToLower(responseText)
	used := make([]string, 0, len(targetWords))
	for _, w := range targetWords {
		if w != "" && strings.Contains(normalized, strings.ToLower(w)) {
			used = append(used, w)
		}
	}

	coverage := 0.0
	if len(targetWords) > 0 {
		coverage = math.Round(float64(len(used))/float64(len(targetWords))*100) / 100
	}

	var strengths []string
	if len(words) > 0 {
		strengths = []string{"clear response"}
	}
	return &SpeakingFeedback{
		EstimatedBand:   band,
		TargetCoverage:  coverage,
		UsedTargetWords: used,
		Strengths:       strengths,
		Improvements: []string{
			"use more precise IELTS topic vocabulary",
			"add one collocation and one complex sentence",
		},
		ReasonShort: "fallback speaking feedback",
	}, nil
}
