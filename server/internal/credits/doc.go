// Package credits computes the credit cost of a message text when no report
// is attached to it.
//
// words.go splits text into word tokens: maximal runs of letters and
// apostrophes (U+0027, U+2018). Digits and punctuation are delimiters.
//
// credits.go provides the pure Compute(text) function. All arithmetic is done
// in integers scaled by 100 and divided back once at the end, so identical
// input always yields the identical float64.
//
//	cost = 1.00 base
//	     + 0.05 per character
//	     + 5.00 if the text is longer than 100 characters
//	     + per word: 0.1 / 0.2 / 0.3 by length, plus 0.3 per vowel at every third position
//	     - 2.00 if all words are distinct
//	clamped to >= 1.00, then doubled for palindromes.
package credits
