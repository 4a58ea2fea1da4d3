package aicache

import (
	"fmt"
	"sort"

	"github.com/vocab-srs/vocab-api/internal/domain"
	"github.com/vocab-srs/vocab-api/internal/fingerprint"
)

// CacheVersion tags cache keys so a format change can invalidate old entries
// without touching stored rows.
const CacheVersion = "v1"

// EnrichKey returns the cache key for enrichment content of a term.
func EnrichKey(termNormalized string) string {
	return fmt.Sprintf("enrich:%s:%s", CacheVersion, termNormalized)
}

// JudgeKey returns the cache key for an equivalence judgement. The key binds
// the normalized answer and the normalized, sorted meaning set so different
// questions about the same term never collide.
func JudgeKey(termNormalized, userAnswer string, meanings []string) string {
	normalized := make([]string, 0, len(meanings))
	for _, meaning := range meanings {
		normalized = append(normalized, domain.NormalizeTerm(meaning))
	}
	sort.Strings(normalized)

	contentHash := fingerprint.Hash(map[string]any{
		"userAnswer": domain.NormalizeTerm(userAnswer),
		"meanings":   normalized,
	})
	return fmt.Sprintf("judge:%s:%s:%s", CacheVersion, termNormalized, contentHash)
}
