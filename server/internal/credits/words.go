package credits

import (
	"iter"
	"unicode"
)

// isWordPart reports whether r can appear inside a word.
// U+2018 shows up in pasted text as an apostrophe.
func isWordPart(r rune) bool {
	return unicode.IsLetter(r) || r == '\'' || r == '‘'
}

// Words yields the word tokens of text in order. A token is a maximal run of
// word-part runes and keeps its original casing. The sequence can be ranged
// over any number of times.
func Words(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i, r := range text {
			if isWordPart(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(text[start:i]) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(text[start:])
		}
	}
}
