package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize maps s to its comparison form: NFC, whitespace runs collapsed to
// a single space, trimmed and lowercased. Query variants and candidate values
// both go through it before scoring.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	// cases.Caser is stateful, so one per call.
	return cases.Lower(language.Und).String(s)
}

// normalizeAll normalizes every entry and drops the ones that end up empty.
func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}
