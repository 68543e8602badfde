// Package textnorm normalises text for overlap and similarity scoring.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// Normalize lowercases text, removes punctuation and symbols, and collapses
// whitespace to single spaces.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the scoring tokens of text in order of appearance.
// Stopwords and single-character tokens are dropped; duplicates are kept.
func Tokens(text string) []string {
	fields := strings.Fields(Normalize(text))
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 1 || IsStopword(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// TokenSet returns the distinct scoring tokens of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokens(text) {
		set[t] = struct{}{}
	}
	return set
}

// UniqueTokens returns the distinct scoring tokens of text, first occurrence order.
func UniqueTokens(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range Tokens(text) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Ratio returns the similarity of a and b in [0, 1], computed as
// 2*M/T over the normalised rune sequences (M matches, T total runes).
func Ratio(a, b string) float64 {
	sa, sb := runes(Normalize(a)), runes(Normalize(b))
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	return difflib.NewMatcher(sa, sb).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
