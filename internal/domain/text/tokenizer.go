// Package text turns raw document and query text into index terms and
// computes the TF-IDF statistics the inverted index is built from.
package text

import (
	"strings"
	"unicode"
)

// MinTokenLength is the shortest token kept; shorter tokens are dropped.
const MinTokenLength = 3

// Tokenize lower-cases text, replaces every rune outside [a-z0-9_] and
// whitespace with a space, splits on whitespace runs and drops tokens shorter
// than MinTokenLength. Indexing and querying share it, so both sides normalize
// text identically.
func Tokenize(text string) []string {
	normalized := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	words := strings.Fields(normalized)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < MinTokenLength {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// isWordRune matches the ASCII word class: letters, digits and underscore.
func isWordRune(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}

// Distinct returns the unique tokens in first-occurrence order.
func Distinct(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
