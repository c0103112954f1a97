package geo

import "strings"

// Similarity returns the Dice coefficient over the adjacent-character bigram
// sets of the lowercased, trimmed inputs. Empty inputs score 0, equal inputs 1.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	s1 := []rune(strings.ToLower(strings.TrimSpace(a)))
	s2 := []rune(strings.ToLower(strings.TrimSpace(b)))
	if string(s1) == string(s2) {
		return 1
	}
	if len(s1) < 2 || len(s2) < 2 {
		return 0
	}

	b1 := bigrams(s1)
	b2 := bigrams(s2)

	intersection := 0
	for bg := range b1 {
		if _, ok := b2[bg]; ok {
			intersection++
		}
	}

	return float64(2*intersection) / float64(len(b1)+len(b2))
}

func bigrams(s []rune) map[[2]rune]struct{} {
	out := make(map[[2]rune]struct{}, len(s)-1)
	for i := 0; i < len(s)-1; i++ {
		out[[2]rune{s[i], s[i+1]}] = struct{}{}
	}
	return out
}
