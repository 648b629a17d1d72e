package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreRecord_TokenOrderInsensitive(t *testing.T) {
	assert.Equal(t,
		ScoreRecord("john smith", "john smith"),
		ScoreRecord("john smith", "smith john"),
	)
	assert.InDelta(t, 100, ScoreRecord("John Smith", "smith   JOHN"), 0.001)
}

func TestScoreRecord_SubsetCap(t *testing.T) {
	assert.LessOrEqual(t, ScoreRecord("john", "john smith"), SubsetCap)

	// raw token-sort score is 2*25/55, above the cap
	assert.InDelta(t, SubsetCap, ScoreRecord("ramachandran venkataraman", "ramachandran venkataraman iyer"), 0.001)
	assert.InDelta(t, 100, ScoreRecord("ramachandran venkataraman", "venkataraman ramachandran"), 0.001)
}

func TestScoreRecord_MaxAcrossFields(t *testing.T) {
	score := ScoreRecord("CASE-2025-0001", "Vehicle theft", "CASE-2025-0001", "")
	assert.InDelta(t, 100, score, 0.001)
}

func TestScoreRecord_BlankFields(t *testing.T) {
	assert.Zero(t, ScoreRecord("rajesh", "", "   "))
	assert.Zero(t, ScoreRecord("rajesh"))
}

func TestIsProperSubset(t *testing.T) {
	set := func(tokens ...string) map[string]struct{} {
		m := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			m[tok] = struct{}{}
		}
		return m
	}

	assert.True(t, isProperSubset(set("john"), set("john", "smith")))
	assert.False(t, isProperSubset(set("john", "smith"), set("john", "smith")))
	assert.False(t, isProperSubset(set("john", "doe"), set("john", "smith", "x")))
	assert.False(t, isProperSubset(set(), set("john")))
}
