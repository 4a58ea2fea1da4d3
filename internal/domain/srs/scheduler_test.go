package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocab-srs/vocab-api/internal/domain"
)

func TestInitialState(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	result := Default().InitialState(now)

	assert.Equal(t, 2.5, result.EaseFactor)
	assert.Equal(t, 0, result.IntervalDays)
	assert.Equal(t, 0, result.Repetitions)
	assert.Equal(t, 0, result.Lapses)
	assert.Equal(t, now, result.DueAt)
	assert.Nil(t, result.LastReviewedAt)
}

func TestApplyReviewWalkthrough(t *testing.T) {
	t.Parallel()

	scheduler := Default()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// New card, graded 4: graduates to the first interval.
	state := scheduler.InitialState(now).State
	result, err := scheduler.ApplyReview(state, 4, now)
	require.NoError(t, err)
	assert.Equal(t, 2.5, result.EaseFactor)
	assert.Equal(t, 1, result.IntervalDays)
	assert.Equal(t, 1, result.Repetitions)
	assert.Equal(t, 0, result.Lapses)
	assert.Equal(t, now.AddDate(0, 0, 1), result.DueAt)
	require.NotNil(t, result.LastReviewedAt)
	assert.Equal(t, now, *result.LastReviewedAt)

	// Second success, graded 5: second interval, ease grows.
	result, err = scheduler.ApplyReview(result.State, 5, now)
	require.NoError(t, err)
	assert.Equal(t, 2.6, result.EaseFactor)
	assert.Equal(t, 6, result.IntervalDays)
	assert.Equal(t, 2, result.Repetitions)
	assert.Equal(t, now.AddDate(0, 0, 6), result.DueAt)

	// Third success, graded 4: interval grows by the ease factor.
	result, err = scheduler.ApplyReview(result.State, 4, now)
	require.NoError(t, err)
	assert.Equal(t, 2.6, result.EaseFactor)
	assert.Equal(t, 16, result.IntervalDays) // round(6 * 2.6)
	assert.Equal(t, 3, result.Repetitions)

	// Lapse, graded 1: progress resets, due immediately.
	result, err = scheduler.ApplyReview(result.State, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 2.4, result.EaseFactor)
	assert.Equal(t, 0, result.IntervalDays)
	assert.Equal(t, 0, result.Repetitions)
	assert.Equal(t, 1, result.Lapses)
	assert.Equal(t, now, result.DueAt)
}

func TestApplyReviewEaseAdjustment(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		grade        int
		expectedEase float64
	}{
		{name: "grade 3 lowers ease", grade: 3, expectedEase: 2.36},
		{name: "grade 4 keeps ease", grade: 4, expectedEase: 2.5},
		{name: "grade 5 raises ease", grade: 5, expectedEase: 2.6},
	}

	scheduler := Default()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state := State{EaseFactor: 2.5, IntervalDays: 0, Repetitions: 0}
			result, err := scheduler.ApplyReview(state, tc.grade, now)
			require.NoError(t, err)
			assert.InDelta(t, tc.expectedEase, result.EaseFactor, 0.001)
		})
	}
}

func TestApplyReviewEaseBounds(t *testing.T) {
	t.Parallel()

	scheduler := Default()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Repeated lapses never push the ease below the floor.
	state := State{EaseFactor: 1.4}
	for i := 0; i < 5; i++ {
		result, err := scheduler.ApplyReview(state, 0, now)
		require.NoError(t, err)
		state = result.State
		assert.GreaterOrEqual(t, state.EaseFactor, 1.3)
	}
	assert.Equal(t, 1.3, state.EaseFactor)

	// Repeated perfect reviews never push the ease above the ceiling.
	state = State{EaseFactor: 2.9, IntervalDays: 10, Repetitions: 5}
	for i := 0; i < 5; i++ {
		result, err := scheduler.ApplyReview(state, 5, now)
		require.NoError(t, err)
		state = result.State
		assert.LessOrEqual(t, state.EaseFactor, 3.0)
	}
	assert.Equal(t, 3.0, state.EaseFactor)
}

func TestApplyReviewInvalidGrade(t *testing.T) {
	t.Parallel()

	scheduler := Default()
	now := time.Now()

	for _, grade := range []int{-1, 6, 100} {
		_, err := scheduler.ApplyReview(State{EaseFactor: 2.5}, grade, now)
		assert.ErrorIs(t, err, domain.ErrInvalidGrade)
	}
}

func TestApplyReviewMinimumGrowth(t *testing.T) {
	t.Parallel()

	// A mature card with the minimum ease still moves forward at least one day.
	scheduler := Default()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	state := State{EaseFactor: 1.3, IntervalDays: 1, Repetitions: 2}

	result, err := scheduler.ApplyReview(state, 3, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.IntervalDays, 1)
}

func TestApplyReaddPenalty(t *testing.T) {
	t.Parallel()

	scheduler := Default()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	state := State{EaseFactor: 2.5, IntervalDays: 14, Repetitions: 4, Lapses: 2}
	result := scheduler.ApplyReaddPenalty(state, now)

	assert.Equal(t, 2.3, result.EaseFactor)
	assert.Equal(t, 0, result.IntervalDays)
	assert.Equal(t, 0, result.Repetitions)
	assert.Equal(t, 2, result.Lapses, "lapses are not a re-add penalty")
	assert.Equal(t, now, result.DueAt)
	assert.Nil(t, result.LastReviewedAt)

	// The penalty respects the ease floor.
	floored := scheduler.ApplyReaddPenalty(State{EaseFactor: 1.35}, now)
	assert.Equal(t, 1.3, floored.EaseFactor)
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	vocab := &domain.Vocab{
		EaseFactor:   2.2,
		IntervalDays: 7,
		Repetitions:  3,
		Lapses:       1,
	}

	state := StateOf(vocab)
	assert.Equal(t, 2.2, state.EaseFactor)
	assert.Equal(t, 7, state.IntervalDays)

	result, err := Default().ApplyReview(state, 4, now)
	require.NoError(t, err)
	result.ApplyTo(vocab)

	assert.Equal(t, result.EaseFactor, vocab.EaseFactor)
	assert.Equal(t, result.IntervalDays, vocab.IntervalDays)
	assert.Equal(t, result.Repetitions, vocab.Repetitions)
	assert.Equal(t, result.DueAt, vocab.DueAt)
	require.NotNil(t, vocab.LastReviewedAt)
	assert.Equal(t, now, *vocab.LastReviewedAt)
}
