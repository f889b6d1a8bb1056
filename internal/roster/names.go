package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// similarityThreshold is the minimum share of common tokens, relative to the
// longer name, for two names to be treated as the same person.
const similarityThreshold = 0.5

// SimilarName reports whether two resident names most likely belong to the
// same person. Matching is deliberately loose: a shared first or last token is
// enough, which can merge two different people with a common surname in the
// same room.
func SimilarName(a, b string) bool {
	na := NormalizeName(a)
	nb := NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	wordsA := strings.Fields(na)
	wordsB := strings.Fields(nb)
	if wordsA[0] == wordsB[0] {
		return true
	}
	if wordsA[len(wordsA)-1] == wordsB[len(wordsB)-1] {
		return true
	}

	inB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		inB[w] = true
	}
	common := 0
	for _, w := range wordsA {
		if inB[w] {
			common++
		}
	}
	longest := len(wordsA)
	if len(wordsB) > longest {
		longest = len(wordsB)
	}
	return float64(common)/float64(longest) >= similarityThreshold
}

// NormalizeName lowercases, folds diacritics, drops punctuation and collapses
// whitespace.
func NormalizeName(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}
	lower := strings.ToLower(strings.TrimSpace(folded))
	var b strings.Builder
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
