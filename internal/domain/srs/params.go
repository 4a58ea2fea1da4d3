package srs

// Params defines the configurable knobs of the SM-2 variant.
type Params struct {
	// Ease factor bounds; every computed ease factor is clamped into this range.
	MinEaseFactor float64
	MaxEaseFactor float64

	// InitialEaseFactor is assigned to newly created cards.
	InitialEaseFactor float64

	// LapsePenalty is subtracted from the ease factor on a failed review.
	// ReaddPenalty is subtracted when a duplicate term is re-entered.
	LapsePenalty float64
	ReaddPenalty float64

	// FirstInterval and SecondInterval are the graduating intervals, in days,
	// for the first and second successful reviews.
	FirstInterval  int
	SecondInterval int
}

// DefaultParams returns the parameter set matching the reference schedule.
func DefaultParams() Params {
	return Params{
		MinEaseFactor:     1.3,
		MaxEaseFactor:     3.0,
		InitialEaseFactor: 2.5,
		LapsePenalty:      0.2,
		ReaddPenalty:      0.2,
		FirstInterval:     1,
		SecondInterval:    6,
	}
}
