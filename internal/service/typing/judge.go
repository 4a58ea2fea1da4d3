package typing

import (
	"github.com/vocab-srs/vocab-api/internal/domain"
)

// DefaultThreshold is the minimum similarity ratio for a near match.
const DefaultThreshold = 0.85

// IsNearCorrect reports whether the user answer matches any candidate after
// normalization, either exactly or with similarity at or above the default
// threshold.
func IsNearCorrect(userAnswer string, candidates []string) bool {
	return IsNearCorrectThreshold(userAnswer, candidates, DefaultThreshold)
}

// IsNearCorrectThreshold is IsNearCorrect with an explicit threshold in (0,1].
func IsNearCorrectThreshold(userAnswer string, candidates []string, threshold float64) bool {
	answerNorm := domain.NormalizeTerm(userAnswer)
	if answerNorm == "" {
		return false
	}

	best := 0.0
	matched := false
	for _, candidate := range candidates {
		candidateNorm := domain.NormalizeTerm(candidate)
		if candidateNorm == "" {
			continue
		}
		matched = true
		if answerNorm == candidateNorm {
			return true
		}
		if r := similarity(answerNorm, candidateNorm); r > best {
			best = r
		}
	}
	if !matched {
		return false
	}
	return best >= threshold
}

// similarity is a normalized Levenshtein ratio over the two strings,
// comparable to a fuzzy-match score for short vocabulary answers.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes the edit distance between two rune slices using the
// two-row dynamic programming formulation.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
