// Package aicache manages the AI content cache: deterministic cache keys,
// the merge policy for generated content bundles, and persistence through
// the store layer. Merging never discards previously generated list content.
package aicache
