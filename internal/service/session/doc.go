// Package session composes the daily study session from fixed-priority
// buckets: cards created today, cards due now, cards reviewed yesterday that
// still look unmastered, and chronic strugglers.
package session
