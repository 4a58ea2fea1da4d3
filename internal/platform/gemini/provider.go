package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/vocab-srs/vocab-api/internal/config"
	"github.com/vocab-srs/vocab-api/internal/generation"
)

// Provider implements the generation.Provider interface using Google's
// Gemini API to generate vocabulary content.
type Provider struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// NewProvider creates a new Gemini-backed provider. It validates the LLM
// configuration and initializes the API client.
func NewProvider(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Provider{
		logger: logger.With(slog.String("component", "gemini_provider")),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

var _ generation.Provider = (*Provider)(nil)

// Name implements generation.Provider.Name.
func (p *Provider) Name() string { return "gemini" }

// Enrich implements generation.Provider.Enrich.
func (p *Provider) Enrich(
	ctx context.Context,
	term string,
	meanings []string,
	missing generation.EnrichMissing,
) (*generation.EnrichResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, generation.ErrEmptyTerm
	}

	prompt := fmt.Sprintf(
		"Return JSON only. Do not include markdown. "+
			"term=%s; meanings=%s; "+
			"need_examples=%t; need_mnemonics=%t; need_meaning_variants=%t; need_ipa=%t. "+
			"Allowed keys: examples, mnemonics, meaningVariants, ipa. "+
			"examples is array of {en,vi}; mnemonics is array of strings; "+
			"meaningVariants is array of strings; ipa is string.",
		term, strings.Join(meanings, ", "),
		missing.NeedExamples, missing.NeedMnemonics,
		missing.NeedMeaningVariants, missing.NeedIPA,
	)

	var parsed generation.EnrichResult
	if err := p.callWithRetry(ctx, prompt, &parsed); err != nil {
		return nil, err
	}

	// Drop fields the caller did not ask for. The model occasionally
	// volunteers extras and they would clobber cached content.
	result := &generation.EnrichResult{}
	if missing.NeedExamples {
		for _, ex := range parsed.Examples {
			ex.En = strings.TrimSpace(ex.En)
			ex.Vi = strings.TrimSpace(ex.Vi)
			if ex.En != "" && ex.Vi != "" {
				result.Examples = append(result.Examples, ex)
			}
		}
	}
	if missing.NeedMnemonics {
		result.Mnemonics = trimNonEmpty(parsed.Mnemonics)
	}
	if missing.NeedMeaningVariants {
		result.MeaningVariants = trimNonEmpty(parsed.MeaningVariants)
	}
	if missing.NeedIPA {
		result.IPA = strings.TrimSpace(parsed.IPA)
	}
	return result, nil
}

// JudgeEquivalence implements generation.Provider.JudgeEquivalence.
func (p *Provider) JudgeEquivalence(
	ctx context.Context,
	term, userAnswer string,
	meanings []string,
) (*generation.Judgement, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, generation.ErrEmptyTerm
	}

	prompt := fmt.Sprintf(
		"Return JSON only in format {isEquivalent:boolean, reasonShort:string}. "+
			"term=%s; userAnswer=%s; referenceMeanings=%s.",
		term, strings.TrimSpace(userAnswer), strings.Join(meanings, ", "),
	)

	var parsed generation.Judgement
	if err := p.callWithRetry(ctx, prompt, &parsed); err != nil {
		return nil, err
	}
	if parsed.ReasonShort == "" {
		parsed.ReasonShort = "gemini semantic check"
	}
	return &parsed, nil
}

// ValidateEntry implements generation.Provider.ValidateEntry.
func (p *Provider) ValidateEntry(
	ctx context.Context,
	term string,
	meanings []string,
) (*generation.EntryValidation, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, generation.ErrEmptyTerm
	}

	prompt := fmt.Sprintf(
		"Return JSON only in this exact format: "+
			"{isTermValid:boolean,isMeaningPlausible:boolean,suggestedTerm:string,"+
			"suggestedMeanings:string[],reasonShort:string}. "+
			"Input term=%s; meanings=%s. "+
			"Check if term spelling looks valid English and meanings are plausible for this term.",
		term, strings.Join(meanings, ", "),
	)

	var parsed generation.EntryValidation
	if err := p.callWithRetry(ctx, prompt, &parsed); err != nil {
		return nil, err
	}
	if strings.TrimSpace(parsed.SuggestedTerm) == "" {
		parsed.SuggestedTerm = term
	}
	if parsed.ReasonShort == "" {
		parsed.ReasonShort = "gemini vocab validation"
	}
	return &parsed, nil
}

// SpeakingFeedback implements generation.Provider.SpeakingFeedback.
func (p *Provider) SpeakingFeedback(
	ctx context.Context,
	prompt, responseText string,
	targetWords []string,
) (*generation.SpeakingFeedback, error) {
	if strings.TrimSpace(responseText) == "" {
		return nil, fmt.Errorf("%w: response text cannot be empty", generation.ErrInvalidConfig)
	}

	request := fmt.Sprintf(
		"Return JSON only in this exact format: "+
			"{estimatedBand:number,targetCoverage:number,usedTargetWords:string[],"+
			"strengths:string[],improvements:string[],reasonShort:string}. "+
			"Act as an IELTS speaking examiner. prompt=%s; response=%s; targetWords=%s.",
		strings.TrimSpace(prompt), strings.TrimSpace(responseText),
		strings.Join(targetWords, ", "),
	)

	var parsed generation.SpeakingFeedback
	if err := p.callWithRetry(ctx, request, &parsed); err != nil {
		return nil, err
	}
	if parsed.ReasonShort == "" {
		parsed.ReasonShort = "gemini speaking feedback"
	}
	return &parsed, nil
}

// callWithRetry makes a call to the Gemini API with exponential backoff retry
// logic, decoding the JSON response into out.
//
// It attempts the call up to MaxRetries+1 times, using exponential backoff
// with jitter between retries for transient errors. Permanent errors (like
// content being blocked by safety filters or an unparseable response) are
// returned immediately without retrying.
func (p *Provider) callWithRetry(ctx context.Context, prompt string, out any) error {
	maxRetries := p.config.MaxRetries
	if maxRetries < 0 {
		p.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 2)
		maxRetries = 2
	}
	baseDelaySeconds := p.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		p.logger.InfoContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		err, transient := p.callOnce(ctx, prompt, out)
		if err == nil {
			return nil
		}

		p.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !transient {
			return err
		}
		if attempt >= maxRetries {
			return fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		p.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single API call. The second return value reports
// whether a failure is worth retrying.
func (p *Provider) callOnce(ctx context.Context, prompt string, out any) (error, bool) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err), true
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse), false
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked), false
	}
	if candidate.Content == nil {
		return fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse), false
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse), false
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err), false
	}
	return nil, false
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
