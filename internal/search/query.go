// Package search ranks station records against free-text, multi-script queries.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/recordsearch/internal/translit"
)

// MinQueryLength is the minimum number of characters a query must have.
const MinQueryLength = 2

// forbiddenChars are rejected outright to keep markup out of downstream templates.
const forbiddenChars = "<>{}"

// Script is the writing system a query was typed in.
type Script string

const (
	ScriptLatin      Script = "latin"
	ScriptDevanagari Script = "devanagari"
)

// Query is a parsed search query.
type Query struct {
	Text     string
	Script   Script
	Variants []string
}

// ValidateQuery reports whether q is searchable. Queries shorter than
// MinQueryLength characters or containing any of <, >, { or } are rejected.
func ValidateQuery(q string) bool {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return false
	}
	return !strings.ContainsAny(q, forbiddenChars)
}

// DetectScript classifies q as Devanagari when any rune falls in U+0900-U+097F.
func DetectScript(q string) Script {
	for _, r := range q {
		if translit.IsDevanagari(r) {
			return ScriptDevanagari
		}
	}
	return ScriptLatin
}

// QueryVariants returns the texts a query is matched with: the query itself
// and, for Devanagari input, its Harvard-Kyoto romanization. A failed
// transliteration leaves only the original.
func QueryVariants(q string) []string {
	q = strings.TrimSpace(q)
	variants := []string{q}
	if DetectScript(q) != ScriptDevanagari {
		return variants
	}

	romanized, err := translit.ToHarvardKyoto(q)
	if err != nil {
		log.Debug().Err(err).Msg("Transliteration failed, searching original text only")
		return variants
	}
	if romanized != "" && romanized != q {
		variants = append(variants, romanized)
	}
	return variants
}

// ParseQuery trims raw and derives its script and variants.
func ParseQuery(raw string) Query {
	text := strings.TrimSpace(raw)
	return Query{
		Text:     text,
		Script:   DetectScript(text),
		Variants: QueryVariants(text),
	}
}
