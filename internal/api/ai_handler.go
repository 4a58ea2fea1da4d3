package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vocab-srs/vocab-api/internal/api/shared"
	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/generation"
	"github.com/vocab-srs/vocab-api/internal/service/aicache"
	"github.com/vocab-srs/vocab-api/internal/service/typing"
	"github.com/vocab-srs/vocab-api/internal/store"
)

// Content floor before the provider is asked for more.
const (
	minExamples    = 1
	minMnemonics   = 1
	targetMeanings = 2
)

// EnrichRequest represents the request body for enriching a term.
type EnrichRequest struct {
	Term             string   `json:"term" validate:"required,min=1"`
	MeaningsExisting []string `json:"meaningsExisting"`
}

// JudgeRequest represents the request body for judging answer equivalence.
type JudgeRequest struct {
	Term       string   `json:"term" validate:"required,min=1"`
	UserAnswer string   `json:"userAnswer" validate:"required,min=1"`
	Meanings   []string `json:"meanings"`
}

// SpeakingFeedbackRequest represents the request body for grading a
// spoken-practice response.
type SpeakingFeedbackRequest struct {
	Prompt       string   `json:"prompt"`
	ResponseText string   `json:"responseText" validate:"required,min=1"`
	TargetWords  []string `json:"targetWords"`
}

// EnrichResponse is the enrichment outcome plus provenance flags.
type EnrichResponse struct {
	TermNormalized string         `json:"termNormalized"`
	Provider       string         `json:"provider"`
	AICalled       bool           `json:"aiCalled"`
	FromCache      bool           `json:"fromCache"`
	Data           map[string]any `json:"data"`
	Vocab          *domain.Vocab  `json:"vocab"`
}

// JudgeResponse is the equivalence verdict plus provenance flags.
type JudgeResponse struct {
	IsEquivalent bool   `json:"isEquivalent"`
	ReasonShort  string `json:"reasonShort"`
	Provider     string `json:"provider"`
	Cached       bool   `json:"cached"`
}

// SpeakingFeedbackResponse is the speaking grade plus provenance.
type SpeakingFeedbackResponse struct {
	Feedback *generation.SpeakingFeedback `json:"feedback"`
	Provider string                       `json:"provider"`
}

// AIHandler handles AI content HTTP requests. It orchestrates the cache, the
// stored vocab entry, and the content providers: remote first, deterministic
// fallback on any remote failure.
type AIHandler struct {
	vocabStore store.VocabStore
	cache      *aicache.Service
	remote     generation.Provider
	fallback   generation.Provider
	logger     *slog.Logger
}

// NewAIHandler creates a new AIHandler. remote may be nil.
func NewAIHandler(
	vocabStore store.VocabStore,
	cache *aicache.Service,
	remote generation.Provider,
	fallback generation.Provider,
	logger *slog.Logger,
) *AIHandler {
	if fallback == nil {
		fallback = generation.NewFallbackProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AIHandler{
		vocabStore: vocabStore,
		cache:      cache,
		remote:     remote,
		fallback:   fallback,
		logger:     logger.With(slog.String("component", "ai_handler")),
	}
}

// EnrichVocab handles POST /api/ai/enrich requests. The provider is only
// called for content the cache and the stored entry do not already cover;
// repeated calls for a warm term are cache hits.
func (h *AIHandler) EnrichVocab(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: term is required")
		return
	}

	termNormalized := domain.NormalizeTerm(req.Term)
	if termNormalized == "" {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Term is empty after normalization")
		return
	}

	ctx := r.Context()
	now := time.Now()

	vocab, err := h.vocabStore.GetByTermNormalized(ctx, termNormalized)
	if err != nil && !store.IsNotFoundError(err) {
		status, message := mapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	cacheKey := aicache.EnrichKey(termNormalized)
	entry, err := h.cache.Get(ctx, cacheKey)
	if err != nil {
		status, message := mapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}
	var cacheData map[string]any
	providerUsed := "fallback"
	if entry != nil {
		cacheData = entry.Data
		providerUsed = entry.Provider
	}

	var vocabMeanings []string
	if vocab != nil {
		vocabMeanings = vocab.Meanings
	}
	allMeanings := domain.MergeUniqueStrings(vocabMeanings, req.MeaningsExisting)

	missing := h.missingContent(vocab, cacheData, allMeanings)
	aiCalled := false
	var generated map[string]any

	if missing.Any() {
		aiCalled = true
		result, name := h.enrich(ctx, strings.TrimSpace(req.Term), allMeanings, missing)
		providerUsed = name
		generated = enrichBundle(result)
	}

	mergedData := cacheData
	if entry == nil || len(generated) > 0 {
		updated, err := h.cache.Upsert(ctx, cacheKey, termNormalized, providerUsed, generated, now)
		if err != nil {
			status, message := mapError(err)
			shared.RespondWithErrorAndLog(w, r, status, message, err)
			return
		}
		mergedData = updated.Data
	}

	if vocab != nil {
		if err := h.backfillVocab(ctx, vocab, mergedData, now); err != nil {
			status, message := mapError(err)
			shared.RespondWithErrorAndLog(w, r, status, message, err)
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, EnrichResponse{
		TermNormalized: termNormalized,
		Provider:       providerUsed,
		AICalled:       aiCalled,
		FromCache:      entry != nil && !aiCalled,
		Data:           responseBundle(vocab, mergedData),
		Vocab:          vocab,
	})
}

// JudgeEquivalence handles POST /api/ai/judge requests. The cheap fuzzy
// check answers first; only semantic gray areas reach the provider, and
// those verdicts are cached by answer + meaning set.
func (h *AIHandler) JudgeEquivalence(w http.ResponseWriter, r *http.Request) {
	var req JudgeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: term and userAnswer are required")
		return
	}

	termNormalized := domain.NormalizeTerm(req.Term)
	if termNormalized == "" {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Term is empty after normalization")
		return
	}

	ctx := r.Context()
	now := time.Now()
	meanings := domain.UniqueStrings(req.Meanings)
	cacheKey := aicache.JudgeKey(termNormalized, req.UserAnswer, meanings)

	if typing.IsNearCorrect(req.UserAnswer, meanings) {
		judge := map[string]any{"isEquivalent": true, "reasonShort": "fuzzy match"}
		if _, err := h.cache.Upsert(ctx, cacheKey, termNormalized, "fuzzy",
			map[string]any{"judge": judge}, now); err != nil {
			h.logger.WarnContext(ctx, "failed to cache fuzzy judgement", "error", err)
		}
		h.learnEquivalentAnswer(ctx, termNormalized, req.UserAnswer, "fuzzy", now)
		shared.RespondWithJSON(w, r, http.StatusOK, JudgeResponse{
			IsEquivalent: true,
			ReasonShort:  "fuzzy match",
			Provider:     "fuzzy",
		})
		return
	}

	entry, err := h.cache.Get(ctx, cacheKey)
	if err != nil {
		status, message := mapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}
	if entry != nil {
		if judge, ok := entry.Data["judge"].(map[string]any); ok {
			equivalent, _ := judge["isEquivalent"].(bool)
			reason, _ := judge["reasonShort"].(string)
			if reason == "" {
				reason = "cached"
			}
			if equivalent {
				h.learnEquivalentAnswer(ctx, termNormalized, req.UserAnswer, entry.Provider, now)
			}
			shared.RespondWithJSON(w, r, http.StatusOK, JudgeResponse{
				IsEquivalent: equivalent,
				ReasonShort:  reason,
				Provider:     entry.Provider,
				Cached:       true,
			})
			return
		}
	}

	judgement, name := h.judge(ctx, strings.TrimSpace(req.Term), strings.TrimSpace(req.UserAnswer), meanings)
	judge := map[string]any{
		"isEquivalent": judgement.IsEquivalent,
		"reasonShort":  judgement.ReasonShort,
	}
	if _, err := h.cache.Upsert(ctx, cacheKey, termNormalized, name,
		map[string]any{"judge": judge}, now); err != nil {
		h.logger.WarnContext(ctx, "failed to cache judgement", "error", err)
	}
	if judgement.IsEquivalent {
		h.learnEquivalentAnswer(ctx, termNormalized, req.UserAnswer, name, now)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, JudgeResponse{
		IsEquivalent: judgement.IsEquivalent,
		ReasonShort:  judgement.ReasonShort,
		Provider:     name,
	})
}

// SpeakingFeedback handles POST /api/practice/speaking requests. Responses
// are graded fresh on every call; free-form practice answers are too varied
// to cache.
func (h *AIHandler) SpeakingFeedback(w http.ResponseWriter, r *http.Request) {
	var req SpeakingFeedbackRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: responseText is required")
		return
	}

	feedback, name := h.speakingFeedback(r.Context(),
		strings.TrimSpace(req.Prompt), req.ResponseText, domain.UniqueStrings(req.TargetWords))
	shared.RespondWithJSON(w, r, http.StatusOK, SpeakingFeedbackResponse{
		Feedback: feedback,
		Provider: name,
	})
}

// enrich calls the remote provider when configured, degrading to the
// fallback on any failure. The fallback never errors.
func (h *AIHandler) enrich(ctx context.Context, term string, meanings []string, missing generation.EnrichMissing) (*generation.EnrichResult, string) {
	if h.remote != nil {
		result, err := h.remote.Enrich(ctx, term, meanings, missing)
		if err == nil {
			return result, h.remote.Name()
		}
		h.logger.WarnContext(ctx, "remote enrichment failed, using fallback", "error", err)
	}
	result, err := h.fallback.Enrich(ctx, term, meanings, missing)
	if err != nil {
		return &generation.EnrichResult{}, h.fallback.Name()
	}
	return result, h.fallback.Name()
}

// speakingFeedback mirrors enrich for the speaking-practice capability.
func (h *AIHandler) speakingFeedback(ctx context.Context, prompt, responseText string, targetWords []string) (*generation.SpeakingFeedback, string) {
	if h.remote != nil {
		feedback, err := h.remote.SpeakingFeedback(ctx, prompt, responseText, targetWords)
		if err == nil {
			return feedback, h.remote.Name()
		}
		h.logger.WarnContext(ctx, "remote speaking feedback failed, using fallback", "error", err)
	}
	feedback, err := h.fallback.SpeakingFeedback(ctx, prompt, responseText, targetWords)
	if err != nil {
		return &generation.SpeakingFeedback{ReasonShort: "no feedback available"}, h.fallback.Name()
	}
	return feedback, h.fallback.Name()
}

// judge mirrors enrich for the equivalence capability.
func (h *AIHandler) judge(ctx context.Context, term, userAnswer string, meanings []string) (*generation.Judgement, string) {
	if h.remote != nil {
		judgement, err := h.remote.JudgeEquivalence(ctx, term, userAnswer, meanings)
		if err == nil {
			return judgement, h.remote.Name()
		}
		h.logger.WarnContext(ctx, "remote judgement failed, using fallback", "error", err)
	}
	judgement, err := h.fallback.JudgeEquivalence(ctx, term, userAnswer, meanings)
	if err != nil {
		return &generation.Judgement{ReasonShort: "no judgement available"}, h.fallback.Name()
	}
	return judgement, h.fallback.Name()
}

// missingContent decides which enrichment fields still need to be generated
// given what the stored vocab and the cache already hold.
func (h *AIHandler) missingContent(vocab *domain.Vocab, cacheData map[string]any, meanings []string) generation.EnrichMissing {
	cachedExamples := len(listAt(cacheData, "examples"))
	cachedMnemonics := len(listAt(cacheData, "mnemonics"))
	cachedVariants := len(listAt(cacheData, "meaningVariants"))
	cachedIPA, _ := cacheData["ipa"].(string)

	vocabExamples := 0
	vocabMnemonics := 0
	vocabIPA := ""
	if vocab != nil {
		if strings.TrimSpace(vocab.ExampleEn) != "" {
			vocabExamples = 1
		}
		if strings.TrimSpace(vocab.Mnemonic) != "" {
			vocabMnemonics = 1
		}
		vocabIPA = vocab.IPA
	}

	return generation.EnrichMissing{
		NeedExamples:        cachedExamples+vocabExamples < minExamples,
		NeedMnemonics:       cachedMnemonics+vocabMnemonics < minMnemonics,
		NeedMeaningVariants: len(meanings)+cachedVariants < targetMeanings,
		NeedIPA:             strings.TrimSpace(cachedIPA) == "" && strings.TrimSpace(vocabIPA) == "",
	}
}

// backfillVocab copies generated content into empty vocab fields and
// persists the entry when anything changed. Existing content is never
// overwritten.
func (h *AIHandler) backfillVocab(ctx context.Context, vocab *domain.Vocab, data map[string]any, now time.Time) error {
	changed := false

	if examples := listAt(data, "examples"); len(examples) > 0 {
		if first, ok := examples[0].(map[string]any); ok {
			if en, _ := first["en"].(string); strings.TrimSpace(vocab.ExampleEn) == "" && strings.TrimSpace(en) != "" {
				vocab.ExampleEn = strings.TrimSpace(en)
				changed = true
			}
			if vi, _ := first["vi"].(string); strings.TrimSpace(vocab.ExampleVi) == "" && strings.TrimSpace(vi) != "" {
				vocab.ExampleVi = strings.TrimSpace(vi)
				changed = true
			}
		}
	}
	if mnemonics := listAt(data, "mnemonics"); len(mnemonics) > 0 && strings.TrimSpace(vocab.Mnemonic) == "" {
		if m, ok := mnemonics[0].(string); ok && strings.TrimSpace(m) != "" {
			vocab.Mnemonic = strings.TrimSpace(m)
			changed = true
		}
	}
	if len(vocab.Meanings) < targetMeanings {
		variants := stringsAt(data, "meaningVariants")
		merged := domain.MergeUniqueStrings(vocab.Meanings, variants)
		if len(merged) > len(vocab.Meanings) {
			vocab.Meanings = merged
			changed = true
		}
	}
	if ipa, _ := data["ipa"].(string); strings.TrimSpace(vocab.IPA) == "" && strings.TrimSpace(ipa) != "" {
		vocab.IPA = strings.TrimSpace(ipa)
		changed = true
	}

	if !changed {
		return nil
	}
	vocab.UpdatedAt = now
	return h.vocabStore.Update(ctx, vocab)
}

// learnEquivalentAnswer records a judged-equivalent answer as an accepted
// meaning so future fuzzy checks succeed without a provider call. Failures
// only degrade future lookups, so they are logged and swallowed.
func (h *AIHandler) learnEquivalentAnswer(ctx context.Context, termNormalized, userAnswer, provider string, now time.Time) {
	answer := strings.TrimSpace(userAnswer)
	if answer == "" {
		return
	}
	normalized := domain.NormalizeTerm(answer)

	vocab, err := h.vocabStore.GetByTermNormalized(ctx, termNormalized)
	if err != nil {
		if !store.IsNotFoundError(err) {
			h.logger.WarnContext(ctx, "failed to load vocab for answer learning", "error", err)
		}
	} else {
		known := false
		for _, m := range vocab.Meanings {
			if domain.NormalizeTerm(m) == normalized {
				known = true
				break
			}
		}
		if !known {
			vocab.Meanings = append(vocab.Meanings, answer)
			vocab.UpdatedAt = now
			if err := h.vocabStore.Update(ctx, vocab); err != nil {
				h.logger.WarnContext(ctx, "failed to store learned meaning", "error", err)
			}
		}
	}

	if _, err := h.cache.Upsert(ctx, aicache.EnrichKey(termNormalized), termNormalized, provider,
		map[string]any{"meaningVariants": []any{answer}}, now); err != nil {
		h.logger.WarnContext(ctx, "failed to store learned meaning variant", "error", err)
	}
}

// enrichBundle converts a provider result into the cache data shape,
// keeping only the fields the provider actually produced.
func enrichBundle(result *generation.EnrichResult) map[string]any {
	bundle := map[string]any{}
	if result == nil {
		return bundle
	}
	if len(result.Examples) > 0 {
		examples := make([]any, 0, len(result.Examples))
		for _, ex := range result.Examples {
			examples = append(examples, map[string]any{"en": ex.En, "vi": ex.Vi})
		}
		bundle["examples"] = examples
	}
	if len(result.Mnemonics) > 0 {
		bundle["mnemonics"] = anyList(result.Mnemonics)
	}
	if len(result.MeaningVariants) > 0 {
		bundle["meaningVariants"] = anyList(result.MeaningVariants)
	}
	if strings.TrimSpace(result.IPA) != "" {
		bundle["ipa"] = strings.TrimSpace(result.IPA)
	}
	return bundle
}

// responseBundle folds stored vocab content into the cached data so the
// response always reflects everything known about the term.
func responseBundle(vocab *domain.Vocab, data map[string]any) map[string]any {
	out := map[string]any{}
	for key, value := range data {
		out[key] = value
	}
	if vocab == nil {
		return out
	}
	if len(listAt(out, "examples")) == 0 && strings.TrimSpace(vocab.ExampleEn) != "" {
		out["examples"] = []any{map[string]any{"en": vocab.ExampleEn, "vi": vocab.ExampleVi}}
	}
	if len(listAt(out, "mnemonics")) == 0 && strings.TrimSpace(vocab.Mnemonic) != "" {
		out["mnemonics"] = []any{vocab.Mnemonic}
	}
	if ipa, _ := out["ipa"].(string); strings.TrimSpace(ipa) == "" && strings.TrimSpace(vocab.IPA) != "" {
		out["ipa"] = vocab.IPA
	}
	return out
}

func listAt(data map[string]any, key string) []any {
	if data == nil {
		return nil
	}
	list, _ := data[key].([]any)
	return list
}

func stringsAt(data map[string]any, key string) []string {
	items := listAt(data, key)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func anyList(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
