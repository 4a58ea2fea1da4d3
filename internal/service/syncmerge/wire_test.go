package syncmerge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexTimeUnmarshal(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		valid    bool
		expected time.Time
	}{
		{
			name:     "rfc3339 with zone",
			input:    `"2025-06-01T10:30:00+07:00"`,
			valid:    true,
			expected: time.Date(2025, 6, 1, 3, 30, 0, 0, time.UTC),
		},
		{
			name:     "rfc3339 nano",
			input:    `"2025-06-01T10:30:00.123456789Z"`,
			valid:    true,
			expected: time.Date(2025, 6, 1, 10, 30, 0, 123456789, time.UTC),
		},
		{
			name:     "zone-less taken as UTC",
			input:    `"2025-06-01T10:30:00"`,
			valid:    true,
			expected: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "date only",
			input:    `"2025-06-01"`,
			valid:    true,
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{name: "null", input: `null`, valid: false},
		{name: "empty string", input: `""`, valid: false},
		{name: "garbage string", input: `"not a time"`, valid: false},
		{name: "number", input: `1748773800`, valid: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var ft FlexTime
			require.NoError(t, json.Unmarshal([]byte(tc.input), &ft),
				"FlexTime decoding must never error")
			assert.Equal(t, tc.valid, ft.Valid)
			if tc.valid {
				assert.True(t, ft.Time.Equal(tc.expected), "got %v", ft.Time)
			}
		})
	}
}

func TestFlexTimeMarshal(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(FlexTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	instant := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	data, err = json.Marshal(NewFlexTime(instant))
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-01T10:30:00Z"`, string(data))
}

func TestFlexTimeOrAndPtr(t *testing.T) {
	t.Parallel()

	fallback := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	instant := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, fallback, FlexTime{}.Or(fallback))
	assert.Equal(t, instant, NewFlexTime(instant).Or(fallback))

	assert.Nil(t, FlexTime{}.Ptr())
	ptr := NewFlexTime(instant).Ptr()
	require.NotNil(t, ptr)
	assert.Equal(t, instant, *ptr)
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	payload := Payload{
		SchemaVersion: SchemaVersion,
		ExportedAt:    NewFlexTime(now),
		Vocabs: []WireVocab{{
			ID:             "11111111-1111-1111-1111-111111111111",
			Term:           "resilient",
			TermNormalized: "resilient",
			Meanings:       []string{"kiên cường"},
			CreatedAt:      NewFlexTime(now),
			UpdatedAt:      NewFlexTime(now),
			DueAt:          NewFlexTime(now),
		}},
		ReviewLogs: []WireLog{{
			ID:           "22222222-2222-2222-2222-222222222222",
			VocabID:      "11111111-1111-1111-1111-111111111111",
			Mode:         "typing",
			QuestionType: "term_to_meaning",
			Grade:        4,
			CreatedAt:    NewFlexTime(now),
		}},
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"review_logs"`)

	var decoded Payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, SchemaVersion, decoded.SchemaVersion)
	require.Len(t, decoded.Vocabs, 1)
	assert.Equal(t, "resilient", decoded.Vocabs[0].Term)
	assert.True(t, decoded.Vocabs[0].CreatedAt.Valid)
	require.Len(t, decoded.ReviewLogs, 1)
	assert.Equal(t, 4, decoded.ReviewLogs[0].Grade)
}
