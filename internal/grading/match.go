// Package grading decides whether a submitted answer is correct.
package grading

import "strings"

// Normalize lowercases and trims an answer for comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ExactMatch reports whether user and expected are equal after
// normalization. There is no partial credit or fuzzy matching.
func ExactMatch(user, expected string) bool {
	return Normalize(user) == Normalize(expected)
}
