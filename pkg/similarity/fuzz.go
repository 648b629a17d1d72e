// Package similarity provides fuzzy string similarity scores on a 0-100 scale.
//
// The scorers follow the rapidfuzz family of measures: Ratio is the normalized
// Indel similarity (insertions and deletions only), and the token and partial
// variants are built on top of it. All functions operate on runes, so
// non-Latin scripts are compared code point by code point. Inputs are used as
// given; callers are expected to normalize case and whitespace first.
package similarity

import (
	"sort"
	"strings"
)

const (
	// unbaseScale discounts token based scores inside WRatio.
	unbaseScale = 0.95
	// partialScale discounts partial scores when lengths differ a lot.
	partialScale = 0.9
	// longPartialScale is used when one string is 8x longer than the other.
	longPartialScale = 0.6
)

// Ratio returns the normalized Indel similarity of s1 and s2.
// Two empty strings are identical (100); one empty string scores 0.
func Ratio(s1, s2 string) float64 {
	return ratioRunes([]rune(s1), []rune(s2))
}

// PartialRatio returns the best Ratio between the shorter string and any
// window of the longer one with the same length. Windows that are clipped by
// either end of the longer string are considered too.
func PartialRatio(s1, s2 string) float64 {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	best := partialRatioRunes(a, b)
	if len(a) == len(b) && best < 100 {
		best = max(best, partialRatioRunes(b, a))
	}
	return best
}

// TokenSortRatio compares both strings after sorting their whitespace
// separated tokens, so word order does not matter.
func TokenSortRatio(s1, s2 string) float64 {
	return Ratio(sortedTokens(s1), sortedTokens(s2))
}

// PartialTokenSortRatio is PartialRatio over token-sorted strings.
func PartialTokenSortRatio(s1, s2 string) float64 {
	return PartialRatio(sortedTokens(s1), sortedTokens(s2))
}

// TokenSetRatio compares the shared tokens against each side's remainder.
// When one token set contains the other the score is 100.
func TokenSetRatio(s1, s2 string) float64 {
	return tokenSetRatio(s1, s2, Ratio)
}

// PartialTokenSetRatio is TokenSetRatio using PartialRatio. Any shared token
// yields 100.
func PartialTokenSetRatio(s1, s2 string) float64 {
	return tokenSetRatio(s1, s2, PartialRatio)
}

// WRatio is a weighted combination of the other scorers. Strings of similar
// length are compared with the plain and token ratios; when one string is at
// least 1.5x longer, the partial scorers take over with a length dependent
// discount.
func WRatio(s1, s2 string) float64 {
	len1, len2 := len([]rune(s1)), len([]rune(s2))
	if len1 == 0 || len2 == 0 {
		return 0
	}

	lenRatio := float64(max(len1, len2)) / float64(min(len1, len2))
	score := Ratio(s1, s2)

	if lenRatio < 1.5 {
		tokenScore := max(TokenSortRatio(s1, s2), TokenSetRatio(s1, s2))
		return max(score, tokenScore*unbaseScale)
	}

	scale := partialScale
	if lenRatio >= 8 {
		scale = longPartialScale
	}

	score = max(score, PartialRatio(s1, s2)*scale)
	partialToken := max(PartialTokenSortRatio(s1, s2), PartialTokenSetRatio(s1, s2))
	return max(score, partialToken*unbaseScale*scale)
}

// TokenSet returns the distinct whitespace separated tokens of s.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*lcsLength(a, b)) / float64(total)
}

// partialRatioRunes slides short over long. short must not be longer.
func partialRatioRunes(short, long []rune) float64 {
	m, n := len(short), len(long)
	best := 0.0

	for i := 0; i+m <= n; i++ {
		best = max(best, ratioRunes(short, long[i:i+m]))
		if best == 100 {
			return best
		}
	}
	for i := 1; i < m; i++ {
		best = max(best, ratioRunes(short, long[:i]), ratioRunes(short, long[n-i:]))
	}
	return best
}

// lcsLength returns the length of the longest common subsequence.
// Indel distance is len(a)+len(b)-2*lcs.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func sortedTokens(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

func tokenSetRatio(s1, s2 string, scorer func(string, string) float64) float64 {
	set1, set2 := TokenSet(s1), TokenSet(s2)
	if len(set1) == 0 || len(set2) == 0 {
		return 0
	}

	var shared, only1, only2 []string
	for tok := range set1 {
		if _, ok := set2[tok]; ok {
			shared = append(shared, tok)
		} else {
			only1 = append(only1, tok)
		}
	}
	for tok := range set2 {
		if _, ok := set1[tok]; !ok {
			only2 = append(only2, tok)
		}
	}
	sort.Strings(shared)
	sort.Strings(only1)
	sort.Strings(only2)

	sect := strings.Join(shared, " ")
	combined1 := strings.TrimSpace(sect + " " + strings.Join(only1, " "))
	combined2 := strings.TrimSpace(sect + " " + strings.Join(only2, " "))

	// An empty intersection would score the remainders against "".
	if sect == "" {
		return scorer(combined1, combined2)
	}
	return max(scorer(sect, combined1), scorer(sect, combined2), scorer(combined1, combined2))
}
