package section

import (
	"unicode"
	"unicode/utf8"
)

// isIdeograph reports whether r is in one of the unified CJK ideograph
// blocks that count as one word per character.
func isIdeograph(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0xF900 && r <= 0xFAFF)
}

// CountWords counts each CJK ideograph as one word and every maximal run of
// other non-whitespace characters as one word. Ideographs also separate the
// runs around them. Whitespace is unicode.IsSpace plus U+FEFF.
func CountWords(text string) int {
	words := 0
	inRun := false
	for _, r := range text {
		switch {
		case isIdeograph(r):
			words++
			inRun = false
		case unicode.IsSpace(r) || r == '\uFEFF':
			inRun = false
		default:
			if !inRun {
				words++
				inRun = true
			}
		}
	}
	return words
}

// CountChars counts code points, whitespace and punctuation included. A
// character outside the Basic Multilingual Plane counts once, not as two
// UTF-16 units.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// Count returns both section metrics for text.
func Count(text string) (words, chars int) {
	return CountWords(text), CountChars(text)
}
