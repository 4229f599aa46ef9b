package credits

import (
	"slices"
	"testing"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"trailing apostrophe", "Abc abc abc'", []string{"Abc", "abc", "abc'"}},
		{"digits only", "1234 1123", nil},
		{"digits split words", "Abc1234abc", []string{"Abc", "abc"}},
		{"empty", "", nil},
		{"apostrophe only token", "it ' is", []string{"it", "'", "is"}},
		{"left single quote", "landlord‘s duty", []string{"landlord‘s", "duty"}},
		{"hyphen is a delimiter", "well-known", []string{"well", "known"}},
		{"non ascii letters", "café über", []string{"café", "über"}},
		{
			"sentence",
			"What are the landlord's obligations in the event of property damage due to fire or other disasters?",
			[]string{
				"What", "are", "the", "landlord's", "obligations", "in", "the", "event", "of",
				"property", "damage", "due", "to", "fire", "or", "other", "disasters",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := slices.Collect(Words(tc.text))
			if !slices.Equal(got, tc.want) {
				t.Errorf("Words(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestWords_Restartable(t *testing.T) {
	seq := Words("one two three")
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) {
		t.Errorf("second pass = %q, want %q", second, first)
	}
}

func TestWords_EarlyBreak(t *testing.T) {
	var got []string
	for w := range Words("alpha beta gamma") {
		got = append(got, w)
		if len(got) == 2 {
			break
		}
	}
	if !slices.Equal(got, []string{"alpha", "beta"}) {
		t.Errorf("got %q, want [alpha beta]", got)
	}
}
