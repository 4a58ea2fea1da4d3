// Package fingerprint computes deterministic content hashes used for merge
// deduplication. Values are serialized to canonical JSON (encoding/json sorts
// map keys) and hashed with SHA-256.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Hash returns the hex SHA-256 of the canonical JSON form of v.
// Timestamps should be passed pre-formatted (see Timestamp) so the hash is
// stable across time.Time internals.
func Hash(v any) string {
	payload, err := json.Marshal(canonicalize(v))
	if err != nil {
		// Marshal only fails for values JSON cannot represent; fall back to
		// the Go formatting so the result is still deterministic.
		payload = []byte(fmt.Sprintf("%#v", v))
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Timestamp formats a time for inclusion in a fingerprint. UTC RFC 3339 with
// nanoseconds keeps equal instants equal regardless of their source zone.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// canonicalize rewrites time values into their stable string form so two
// structurally equal payloads hash identically.
func canonicalize(v any) any {
	switch value := v.(type) {
	case time.Time:
		return Timestamp(value)
	case *time.Time:
		if value == nil {
			return nil
		}
		return Timestamp(*value)
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = canonicalize(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = canonicalize(item)
		}
		return out
	default:
		return v
	}
}
