// Package srs implements the SM-2 variant used to schedule vocab reviews.
//
// All functions are pure: they take the current scheduling state, a grade, and
// a clock reading, and return the next state. Callers are responsible for
// persisting the result and appending the corresponding review log.
package srs
