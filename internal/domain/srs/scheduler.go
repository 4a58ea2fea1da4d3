package srs

import (
	"math"
	"time"

	"github.com/vocab-srs/vocab-api/internal/domain"
)

// State is the scheduling state of one card.
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
	Lapses       int
}

// Result is a state transition output: the new scheduling state plus the
// timestamps the caller must persist alongside it.
type Result struct {
	State
	DueAt          time.Time
	LastReviewedAt *time.Time
}

// Scheduler computes review state transitions using a fixed parameter set.
type Scheduler struct {
	params Params
}

// NewScheduler creates a scheduler with the given parameters.
func NewScheduler(params Params) *Scheduler {
	return &Scheduler{params: params}
}

// Default returns a scheduler with the reference parameters.
func Default() *Scheduler {
	return NewScheduler(DefaultParams())
}

// InitialState returns the scheduling state of a freshly created card:
// due immediately, never reviewed.
func (s *Scheduler) InitialState(now time.Time) Result {
	return Result{
		State: State{
			EaseFactor:   s.params.InitialEaseFactor,
			IntervalDays: 0,
			Repetitions:  0,
			Lapses:       0,
		},
		DueAt: now,
	}
}

// ApplyReview computes the next state for a graded review.
//
// Grades below 3 are lapses: repetition progress resets, the interval drops to
// zero, and the card becomes due immediately. Successful grades graduate
// through the first and second intervals, then grow by the ease factor.
func (s *Scheduler) ApplyReview(state State, grade int, now time.Time) (Result, error) {
	if grade < 0 || grade > 5 {
		return Result{}, domain.ErrInvalidGrade
	}

	ease := state.EaseFactor
	interval := state.IntervalDays
	repetitions := state.Repetitions
	lapses := state.Lapses
	var dueAt time.Time

	if grade < 3 {
		repetitions = 0
		interval = 0
		lapses++
		ease = s.clamp(ease - s.params.LapsePenalty)
		dueAt = now
	} else {
		switch repetitions {
		case 0:
			interval = s.params.FirstInterval
		case 1:
			interval = s.params.SecondInterval
		default:
			next := int(math.Round(float64(interval) * ease))
			if next < 1 {
				next = 1
			}
			interval = next
		}

		repetitions++
		q := float64(5 - grade)
		ease = s.clamp(ease + (0.1 - q*(0.08+q*0.02)))
		dueAt = now.AddDate(0, 0, interval)
	}

	reviewedAt := now
	return Result{
		State: State{
			EaseFactor:   round2(ease),
			IntervalDays: interval,
			Repetitions:  repetitions,
			Lapses:       lapses,
		},
		DueAt:          dueAt,
		LastReviewedAt: &reviewedAt,
	}, nil
}

// ApplyReaddPenalty models re-entering a term that already exists: the card
// loses ease and repetition progress and becomes due immediately. Lapses and
// the last-reviewed timestamp are untouched.
func (s *Scheduler) ApplyReaddPenalty(state State, now time.Time) Result {
	return Result{
		State: State{
			EaseFactor:   round2(s.clamp(state.EaseFactor - s.params.ReaddPenalty)),
			IntervalDays: 0,
			Repetitions:  0,
			Lapses:       state.Lapses,
		},
		DueAt: now,
	}
}

func (s *Scheduler) clamp(ease float64) float64 {
	if ease < s.params.MinEaseFactor {
		return s.params.MinEaseFactor
	}
	if ease > s.params.MaxEaseFactor {
		return s.params.MaxEaseFactor
	}
	return ease
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// StateOf extracts the scheduling state from a vocab record.
func StateOf(v *domain.Vocab) State {
	return State{
		EaseFactor:   v.EaseFactor,
		IntervalDays: v.IntervalDays,
		Repetitions:  v.Repetitions,
		Lapses:       v.Lapses,
	}
}

// ApplyTo writes a transition result back onto a vocab record.
func (r Result) ApplyTo(v *domain.Vocab) {
	v.EaseFactor = r.EaseFactor
	v.IntervalDays = r.IntervalDays
	v.Repetitions = r.Repetitions
	v.Lapses = r.Lapses
	v.DueAt = r.DueAt
	if r.LastReviewedAt != nil {
		v.LastReviewedAt = r.LastReviewedAt
	}
}
