package credits

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Scale is the fixed-point factor: 100 scaled units == 1 credit.
const Scale = 100

// Costs in the scaled domain.
const (
	BaseCost        = 1 * Scale
	CharCost        = 5  // 0.05 per character
	VowelCost       = 30 // 0.3 per vowel at positions 2, 5, 8, ...
	LengthPenalty   = 5 * Scale
	UniqueWordBonus = 2 * Scale
	MinCost         = 1 * Scale
	LongTextChars   = 100 // characters; the penalty applies strictly above this

	shortWordCost  = 10 // <= 3 characters
	mediumWordCost = 20 // 4-7 characters
	longWordCost   = 30 // >= 8 characters
)

// Compute returns the credit cost of text. The result is always >= 1.
func Compute(text string) float64 {
	words := slices.Collect(Words(text))
	length := utf8.RuneCountInString(text)

	cost := int64(BaseCost)
	cost += int64(CharCost * length)
	if length > LongTextChars {
		cost += LengthPenalty
	}
	for _, w := range words {
		cost += WordCost(w)
	}
	if allDistinct(words) {
		cost -= UniqueWordBonus
	}

	cost = max(cost, MinCost)
	if IsPalindrome(text) {
		cost *= 2
	}
	return float64(cost) / Scale
}

// WordCost returns the scaled cost contributed by a single word.
// The length "multiplier" is added, not multiplied.
func WordCost(word string) int64 {
	return WordLengthMultiplier(word) + ThirdVowelsCost(word)
}

// WordLengthMultiplier returns the scaled length cost of word.
func WordLengthMultiplier(word string) int64 {
	switch n := utf8.RuneCountInString(word); {
	case n <= 3:
		return shortWordCost
	case n <= 7:
		return mediumWordCost
	default:
		return longWordCost
	}
}

// ThirdVowelsCost charges every vowel found at the 3rd character of word and
// every 3rd character after it. Words shorter than 3 characters cost nothing.
func ThirdVowelsCost(word string) int64 {
	var cost int64
	i := 0
	for _, r := range word {
		if i%3 == 2 && isVowel(r) {
			cost += VowelCost
		}
		i++
	}
	return cost
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// allDistinct reports whether words is non-empty and contains no duplicates.
// Comparison is exact and case-sensitive.
func allDistinct(words []string) bool {
	if len(words) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			return false
		}
		seen[w] = struct{}{}
	}
	return true
}

// HasUniqueWordBonus reports whether the unique-word bonus applies to text.
func HasUniqueWordBonus(text string) bool {
	return allDistinct(slices.Collect(Words(text)))
}

// IsPalindrome reports whether text reads the same both ways once everything
// except ASCII letters and digits is removed and the rest lowercased.
// Text with nothing left after stripping is not a palindrome.
func IsPalindrome(text string) bool {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	s := b.String()
	if s == "" {
		return false
	}
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return false
		}
	}
	return true
}
