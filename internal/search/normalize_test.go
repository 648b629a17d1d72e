package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase", input: "Rajesh PATIL", expected: "rajesh patil"},
		{name: "collapse whitespace", input: "  rajesh \t\n  patil  ", expected: "rajesh patil"},
		{name: "blank", input: " \t ", expected: ""},
		{name: "composes accents", input: "E\u0301cole", expected: "\u00e9cole"},
		{name: "devanagari untouched", input: "राजेश  पाटिल", expected: "राजेश पाटिल"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_NuktaFormsCompareEqual(t *testing.T) {
	assert.Equal(t, Normalize("\u095b"), Normalize("\u091c\u093c"))
}

func TestNormalizeAll_DropsBlank(t *testing.T) {
	assert.Equal(t, []string{"a b", "c"}, normalizeAll([]string{"A  B", "  ", "C"}))
}
