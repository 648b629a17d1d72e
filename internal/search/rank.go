package search

import (
	"sort"

	"github.com/thebtf/recordsearch/pkg/models"
)

const (
	// DefaultThreshold is the minimum score a result needs when none is given.
	DefaultThreshold = 60.0
	// DefaultLimit caps the result count when none is given.
	DefaultLimit = 10
	// MaxLimit is the largest limit the manager accepts.
	MaxLimit = 100
)

// match is a candidate position and its best score across query variants.
type match struct {
	index int
	score float64
}

// GlobalSearch matches query against a flattened candidate pool with the
// weighted ratio. Every query variant is tried and a candidate keeps its best
// score. Results below threshold are dropped; the rest are sorted by score
// (ties keep enumeration order), deduplicated by owning id and source, and
// truncated to limit. Invalid queries and empty pools yield an empty slice.
func GlobalSearch(query string, candidates []models.Candidate, threshold float64, limit int) []models.ScoredResult {
	results := []models.ScoredResult{}
	if !ValidateQuery(query) || len(candidates) == 0 || limit <= 0 {
		return results
	}

	variants := normalizeAll(QueryVariants(query))
	if len(variants) == 0 {
		return results
	}

	matches := make([]match, 0, len(candidates))
	for i := range candidates {
		value := Normalize(candidates[i].Name)
		if value == "" {
			continue
		}
		if score := scoreGlobal(variants, value); score >= threshold {
			matches = append(matches, match{index: i, score: score})
		}
	}
	sortMatches(matches)

	type key struct {
		source string
		id     int64
	}
	seen := make(map[key]struct{}, len(matches))
	for _, m := range matches {
		c := candidates[m.index]
		k := key{source: c.Source, id: c.OwningID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		results = append(results, models.ScoredResult{
			Candidate: c,
			Score:     m.score,
			Rank:      len(results) + 1,
		})
		if len(results) == limit {
			break
		}
	}
	return results
}

// RankCases scores each case with ScoreRecord over its case number, title,
// suspect names and victim names, using the best query variant. Cases below
// threshold are dropped and the rest are sorted by score, ties keeping input
// order, and truncated to limit.
func RankCases(query string, cases []models.CaseRecord, threshold float64, limit int) []models.ScoredCase {
	ranked := []models.ScoredCase{}
	if !ValidateQuery(query) || len(cases) == 0 || limit <= 0 {
		return ranked
	}

	variants := QueryVariants(query)
	matches := make([]match, 0, len(cases))
	for i := range cases {
		fields := caseFields(&cases[i])
		best := 0.0
		for _, v := range variants {
			best = max(best, ScoreRecord(v, fields...))
		}
		if best >= threshold {
			matches = append(matches, match{index: i, score: best})
		}
	}
	sortMatches(matches)

	if len(matches) > limit {
		matches = matches[:limit]
	}
	for i, m := range matches {
		ranked = append(ranked, models.ScoredCase{
			CaseRecord: cases[m.index],
			Score:      m.score,
			Rank:       i + 1,
		})
	}
	return ranked
}

func caseFields(c *models.CaseRecord) []string {
	fields := make([]string, 0, 2+len(c.SuspectNames)+len(c.VictimNames))
	fields = append(fields, c.CaseNumber, c.Title)
	fields = append(fields, c.SuspectNames...)
	return append(fields, c.VictimNames...)
}

// sortMatches orders by score descending, keeping enumeration order among ties.
func sortMatches(matches []match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
}
