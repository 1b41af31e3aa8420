package nlp

import (
	"strings"
	"unicode/utf8"
)

// Tokenize splits cleaned text on whitespace and keeps words of at least two
// characters. Single letters carry no signal and are dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, IsSpace)
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// NGrams returns the contiguous word n-grams of tokens with lengths in
// [minN, maxN], joined by a single space. Stop words are removed from the
// token stream first when skipStopWords is set.
func NGrams(tokens []string, minN, maxN int, skipStopWords bool) []string {
	if skipStopWords {
		kept := make([]string, 0, len(tokens))
		for _, t := range tokens {
			if !IsStopWord(t) {
				kept = append(kept, t)
			}
		}
		tokens = kept
	}
	if minN < 1 {
		minN = 1
	}

	var grams []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}
