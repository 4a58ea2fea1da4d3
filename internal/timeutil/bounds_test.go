package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadZone(t *testing.T) {
	t.Parallel()

	t.Run("empty name uses default", func(t *testing.T) {
		t.Parallel()
		loc := LoadZone("")
		require.NotNil(t, loc)
		_, offset := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).In(loc).Zone()
		assert.Equal(t, 7*60*60, offset)
	})

	t.Run("unknown name falls back to fixed offset", func(t *testing.T) {
		t.Parallel()
		loc := LoadZone("Not/AZone")
		require.NotNil(t, loc)
		_, offset := time.Now().In(loc).Zone()
		assert.Equal(t, 7*60*60, offset)
	})

	t.Run("known name resolves", func(t *testing.T) {
		t.Parallel()
		loc := LoadZone("UTC")
		_, offset := time.Now().In(loc).Zone()
		assert.Equal(t, 0, offset)
	})
}

func TestDayBounds(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("ICT", 7*3600)

	// 01:30 UTC on June 2 is 08:30 local, so the local day is June 2.
	instant := time.Date(2025, 6, 2, 1, 30, 0, 0, time.UTC)
	start, end := DayBounds(instant, loc)

	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, loc), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestDayBoundsCrossesUTCDate(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("ICT", 7*3600)

	// 20:00 UTC on June 1 is 03:00 local on June 2.
	instant := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	start, _ := DayBounds(instant, loc)

	assert.Equal(t, 2, start.Day(), "local day should be June 2")
}

func TestYesterdayBounds(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("ICT", 7*3600)
	instant := time.Date(2025, 6, 2, 10, 0, 0, 0, loc)

	start, end := YesterdayBounds(instant, loc)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, loc), end)
}
