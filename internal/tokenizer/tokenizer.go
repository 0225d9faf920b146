// Package tokenizer turns raw page text into the word lists the analyzers
// consume. It folds input to NFKC lower case, splits on non-alphanumeric
// boundaries, removes stop-words, and applies a simple suffix-based stemmer.
package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

type rule struct {
	suffix      string
	replacement string
	minLen      int
}

// Longer suffixes come first so "ational" wins over "al"-style matches.
var rules = []rule{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"tion", "t", 3},
	{"sion", "s", 3},
	{"ying", "y", 2},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"ful", "", 3},
	{"ness", "", 3},
	{"ed", "", 3},
	{"ly", "", 3},
	{"ss", "ss", 2},
	{"s", "", 3},
}

// Token is a normalised term and its position among the kept terms.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into stemmed, lower-cased tokens. Stop-words and
// single-character words are skipped and do not advance Position.
func Tokenize(text string) []Token {
	fields := strings.FieldsFunc(strings.ToLower(norm.NFKC.String(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(fields))
	for _, word := range fields {
		if len([]rune(word)) < 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		tokens = append(tokens, Token{Term: Stem(word), Position: len(tokens)})
	}
	return tokens
}

// Words returns only the terms of Tokenize, in order, duplicates kept.
func Words(text string) []string {
	tokens := Tokenize(text)
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = tok.Term
	}
	return words
}

// Stem strips the first matching suffix when what remains is long enough.
func Stem(word string) string {
	for _, r := range rules {
		if !strings.HasSuffix(word, r.suffix) {
			continue
		}
		stemmed := word[:len(word)-len(r.suffix)] + r.replacement
		if len(stemmed) >= r.minLen {
			return stemmed
		}
	}
	return word
}
