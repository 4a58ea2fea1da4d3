package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vocab-srs/vocab-api/internal/generation"
	"github.com/vocab-srs/vocab-api/internal/service/aicache"
)

// VocabEnrichmentTask warms the AI content cache for one term. It asks the
// remote provider for whatever the cached bundle is still missing and merges
// the answer in; when the remote call fails it degrades to the fallback
// provider rather than failing the task.
type VocabEnrichmentTask struct {
	id             uuid.UUID
	term           string
	termNormalized string
	meanings       []string

	remote   generation.Provider
	fallback generation.Provider
	cache    *aicache.Service
	logger   *slog.Logger
}

// NewVocabEnrichmentTask creates an enrichment task for the given term.
// remote may be nil; the fallback provider is then used directly.
func NewVocabEnrichmentTask(
	term, termNormalized string,
	meanings []string,
	remote generation.Provider,
	fallback generation.Provider,
	cache *aicache.Service,
	logger *slog.Logger,
) (*VocabEnrichmentTask, error) {
	if termNormalized == "" {
		return nil, fmt.Errorf("termNormalized cannot be empty")
	}
	if fallback == nil {
		return nil, fmt.Errorf("fallback provider cannot be nil")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &VocabEnrichmentTask{
		id:             uuid.New(),
		term:           term,
		termNormalized: termNormalized,
		meanings:       meanings,
		remote:         remote,
		fallback:       fallback,
		cache:          cache,
		logger:         logger.With("component", "vocab_enrichment_task"),
	}, nil
}

// ID implements Task.ID
func (t *VocabEnrichmentTask) ID() uuid.UUID { return t.id }

// Type implements Task.Type
func (t *VocabEnrichmentTask) Type() string { return TaskTypeVocabEnrichment }

// Execute implements Task.Execute
func (t *VocabEnrichmentTask) Execute(ctx context.Context) error {
	key := aicache.EnrichKey(t.termNormalized)

	entry, err := t.cache.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read cache for %q: %w", t.termNormalized, err)
	}
	var cached map[string]any
	if entry != nil {
		cached = entry.Data
	}

	missing := missingContent(cached, t.meanings)
	if !missing.Any() {
		t.logger.DebugContext(ctx, "cache already warm",
			"term_normalized", t.termNormalized)
		return nil
	}

	result, providerName, err := t.enrich(ctx, missing)
	if err != nil {
		return fmt.Errorf("enrichment failed for %q: %w", t.termNormalized, err)
	}

	data, err := bundleOf(result)
	if err != nil {
		return fmt.Errorf("failed to encode enrichment result: %w", err)
	}
	if _, err := t.cache.Upsert(ctx, key, t.termNormalized, providerName, data, time.Now()); err != nil {
		return fmt.Errorf("failed to store enrichment for %q: %w", t.termNormalized, err)
	}

	t.logger.InfoContext(ctx, "cache warmed",
		"term_normalized", t.termNormalized,
		"provider", providerName)
	return nil
}

// enrich tries the remote provider first and falls back on any failure.
func (t *VocabEnrichmentTask) enrich(
	ctx context.Context,
	missing generation.EnrichMissing,
) (*generation.EnrichResult, string, error) {
	if t.remote != nil {
		result, err := t.remote.Enrich(ctx, t.term, t.meanings, missing)
		if err == nil {
			return result, t.remote.Name(), nil
		}
		t.logger.WarnContext(ctx, "remote enrichment failed, using fallback",
			"error", err,
			"term_normalized", t.termNormalized)
	}

	result, err := t.fallback.Enrich(ctx, t.term, t.meanings, missing)
	if err != nil {
		return nil, "", err
	}
	return result, t.fallback.Name(), nil
}

// missingContent inspects a cached bundle and decides what still needs to be
// generated.
func missingContent(cached map[string]any, meanings []string) generation.EnrichMissing {
	ipa, _ := cached["ipa"].(string)
	return generation.EnrichMissing{
		NeedExamples:        listLen(cached["examples"]) == 0,
		NeedMnemonics:       listLen(cached["mnemonics"]) == 0,
		NeedMeaningVariants: len(meanings)+listLen(cached["meaningVariants"]) < 2,
		NeedIPA:             ipa == "",
	}
}

func listLen(v any) int {
	list, _ := v.([]any)
	return len(list)
}

// bundleOf converts an EnrichResult into the generic map shape the cache
// merge operates on.
func bundleOf(result *generation.EnrichResult) (map[string]any, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var bundle map[string]any
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}
