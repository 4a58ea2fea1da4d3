package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashIsDeterministic(t *testing.T) {
	t.Parallel()

	value := map[string]any{"term": "ubiquitous", "grade": 4}
	assert.Equal(t, Hash(value), Hash(value))
}

func TestHashIgnoresMapKeyOrder(t *testing.T) {
	t.Parallel()

	// encoding/json sorts map keys, so insertion order must not matter.
	left := map[string]any{"a": 1, "b": 2, "c": 3}
	right := map[string]any{"c": 3, "a": 1, "b": 2}
	assert.Equal(t, Hash(left), Hash(right))
}

func TestHashDistinguishesContent(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, Hash("alpha"), Hash("beta"))
	assert.NotEqual(t,
		Hash(map[string]any{"grade": 4}),
		Hash(map[string]any{"grade": 5}))
	assert.NotEqual(t, Hash([]any{"a", "b"}), Hash([]any{"b", "a"}),
		"list order is content")
}

func TestHashNormalizesTimeZones(t *testing.T) {
	t.Parallel()

	instant := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	shifted := instant.In(time.FixedZone("ICT", 7*3600))

	assert.Equal(t,
		Hash(map[string]any{"createdAt": instant}),
		Hash(map[string]any{"createdAt": shifted}),
		"equal instants must hash identically regardless of zone")
}

func TestHashNestedTimes(t *testing.T) {
	t.Parallel()

	instant := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	nested := map[string]any{
		"list": []any{map[string]any{"at": instant}},
		"ptr":  &instant,
	}
	shiftedInstant := instant.In(time.FixedZone("ICT", 7*3600))
	shifted := map[string]any{
		"list": []any{map[string]any{"at": shiftedInstant}},
		"ptr":  &shiftedInstant,
	}

	assert.Equal(t, Hash(nested), Hash(shifted))
}

func TestTimestampFormat(t *testing.T) {
	t.Parallel()

	instant := time.Date(2025, 6, 1, 3, 30, 0, 500, time.FixedZone("ICT", 7*3600))
	assert.Equal(t, "2025-05-31T20:30:00.0000005Z", Timestamp(instant))

	var nilTime *time.Time
	assert.Equal(t, Hash(map[string]any{"at": nilTime}), Hash(map[string]any{"at": nil}))
}
