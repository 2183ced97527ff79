package core

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9 ]+`)

// Normalize lowercases text and strips every character outside [a-z0-9 ].
// Stored corpus questions and incoming queries pass through the same
// normalization so "What's the cost?" and "whats the cost" compare equal.
// Normalize is idempotent: applying it to already-normalized text is a no-op.
func Normalize(text string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(text), "")
}

// Tokens splits normalized text into whitespace-delimited tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// TokenSet returns the set of whitespace-delimited tokens in normalized text.
func TokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
