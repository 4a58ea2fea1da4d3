package domain

import "time"

// AICacheEntry stores one AI-generated content bundle, addressed by a key
// combining the logical operation, a version tag, and the normalized term or a
// content hash. Entries carry no scheduling state.
type AICacheEntry struct {
	Key            string         `json:"key"`
	TermNormalized string         `json:"termNormalized"`
	Version        string         `json:"version"`
	Provider       string         `json:"provider"`
	Data           map[string]any `json:"data"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
