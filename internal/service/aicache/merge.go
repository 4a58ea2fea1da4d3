package aicache

import (
	"strings"

	"github.com/vocab-srs/vocab-api/internal/fingerprint"
)

// listKeys are the bundle fields merged as append-only sets.
var listKeys = []string{"examples", "mnemonics", "meaningVariants", "synonymGroups", "distractors"}

// MergeContent combines a cached content bundle with newly generated data.
// List fields are unioned, deduplicated by element fingerprint, with existing
// elements first. The judge verdict is replaced wholesale. The ipa field is
// replaced only when the incoming value is a non-empty string. Neither input
// is mutated.
func MergeContent(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}

	for _, key := range listKeys {
		if _, ok := incoming[key]; !ok {
			continue
		}
		merged[key] = mergeListUnique(asList(existing[key]), asList(incoming[key]))
	}

	if judge, ok := incoming["judge"]; ok {
		merged["judge"] = judge
	}
	if ipa, ok := incoming["ipa"].(string); ok {
		if trimmed := strings.TrimSpace(ipa); trimmed != "" {
			merged["ipa"] = trimmed
		}
	}
	return merged
}

// mergeListUnique unions two lists, keeping first occurrence order and
// dropping elements whose fingerprint was already seen.
func mergeListUnique(a, b []any) []any {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]any, 0, len(a)+len(b))
	for _, item := range append(append([]any{}, a...), b...) {
		key := fingerprint.Hash(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, item)
	}
	return merged
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}
