package common

import (
	"strings"
	"unicode"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CollapseSpaces trims s and folds every run of whitespace into one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordPadded lowercases s, turns punctuation into spaces and pads the result
// with a space on each side, so " word " substrings only match whole words.
func WordPadded(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return " " + CollapseSpaces(mapped) + " "
}
