package search

import (
	"github.com/thebtf/recordsearch/pkg/similarity"
)

// SubsetCap is the highest score a value can get when the term only covers
// part of its tokens.
const SubsetCap = 90.0

// ScoreRecord scores term against the subfields of one record with the
// token-sort ratio and returns the best subfield score. Blank subfields are
// ignored. When every term token appears in a value that has more distinct
// tokens, that value's score is capped at SubsetCap.
func ScoreRecord(term string, values ...string) float64 {
	term = Normalize(term)
	termTokens := similarity.TokenSet(term)

	best := 0.0
	for _, v := range values {
		v = Normalize(v)
		if v == "" {
			continue
		}
		score := similarity.TokenSortRatio(term, v)
		if isProperSubset(termTokens, similarity.TokenSet(v)) {
			score = min(score, SubsetCap)
		}
		best = max(best, score)
	}
	return best
}

// scoreGlobal is the weighted-ratio score of the best variant for value.
// Variants and value must already be normalized.
func scoreGlobal(variants []string, value string) float64 {
	best := 0.0
	for _, v := range variants {
		best = max(best, similarity.WRatio(v, value))
	}
	return best
}

func isProperSubset(sub, super map[string]struct{}) bool {
	if len(sub) == 0 || len(sub) >= len(super) {
		return false
	}
	for tok := range sub {
		if _, ok := super[tok]; !ok {
			return false
		}
	}
	return true
}
