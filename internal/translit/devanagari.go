// Package translit romanizes Devanagari text using the Harvard-Kyoto scheme.
package translit

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput is returned when the input is not valid UTF-8.
var ErrInvalidInput = errors.New("translit: input is not valid UTF-8")

const (
	virama = '\u094d'
	nukta  = '\u093c'
)

// consonants map to their bare form; the inherent vowel is added separately.
var consonants = map[rune]string{
	'क': "k", 'ख': "kh", 'ग': "g", 'घ': "gh", 'ङ': "G",
	'च': "c", 'छ': "ch", 'ज': "j", 'झ': "jh", 'ञ': "J",
	'ट': "T", 'ठ': "Th", 'ड': "D", 'ढ': "Dh", 'ण': "N",
	'त': "t", 'थ': "th", 'द': "d", 'ध': "dh", 'न': "n",
	'प': "p", 'फ': "ph", 'ब': "b", 'भ': "bh", 'म': "m",
	'य': "y", 'र': "r", 'ल': "l", 'ळ': "L", 'व': "v",
	'श': "z", 'ष': "S", 'स': "s", 'ह': "h",
	// precomposed nukta forms fall back to their base consonant
	'\u0958': "k", '\u0959': "kh", '\u095a': "g", '\u095b': "j",
	'\u095c': "D", '\u095d': "Dh", '\u095e': "ph", '\u095f': "y",
}

var vowels = map[rune]string{
	'अ': "a", 'आ': "A", 'इ': "i", 'ई': "I", 'उ': "u", 'ऊ': "U",
	'ऋ': "R", 'ॠ': "RR", 'ऌ': "lR", 'ॡ': "lRR",
	'ए': "e", 'ऐ': "ai", 'ओ': "o", 'औ': "au",
	'ऍ': "e", 'ऑ': "o",
}

// vowelSigns replace the inherent vowel of the preceding consonant.
var vowelSigns = map[rune]string{
	'ा': "A", 'ि': "i", 'ी': "I", 'ु': "u", 'ू': "U",
	'ृ': "R", 'ॄ': "RR", 'ॢ': "lR", 'ॣ': "lRR",
	'े': "e", 'ै': "ai", 'ो': "o", 'ौ': "au",
	'ॅ': "e", 'ॉ': "o",
}

var marks = map[rune]string{
	'ं': "M", 'ः': "H", 'ँ': "~", 'ऽ': "'",
	'।': "|", '॥': "||", 'ॐ': "OM",
	'०': "0", '१': "1", '२': "2", '३': "3", '४': "4",
	'५': "5", '६': "6", '७': "7", '८': "8", '९': "9",
}

// IsDevanagari reports whether r is in the Devanagari block (U+0900-U+097F).
func IsDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

// ToHarvardKyoto transliterates the Devanagari runes of s and passes every
// other rune through unchanged. Unknown code points inside the block are
// dropped.
func ToHarvardKyoto(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", ErrInvalidInput
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if base, ok := consonants[r]; ok {
			b.WriteString(base)
			// skip a combining nukta, it has no HK equivalent
			if i+1 < len(runes) && runes[i+1] == nukta {
				i++
			}
			if i+1 < len(runes) {
				next := runes[i+1]
				if next == virama {
					i++
					continue
				}
				if sign, ok := vowelSigns[next]; ok {
					b.WriteString(sign)
					i++
					continue
				}
			}
			b.WriteByte('a')
			continue
		}

		if v, ok := vowels[r]; ok {
			b.WriteString(v)
			continue
		}
		if m, ok := marks[r]; ok {
			b.WriteString(m)
			continue
		}
		if sign, ok := vowelSigns[r]; ok {
			// a stray vowel sign without a consonant
			b.WriteString(sign)
			continue
		}
		if IsDevanagari(r) {
			continue
		}
		b.WriteRune(r)
	}

	return b.String(), nil
}
