// Package typing decides whether a typed answer is close enough to one of
// the accepted meanings to count as correct without a semantic judge call.
package typing
