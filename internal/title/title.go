// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package title decides whether a publisher-rendered title is the paper
// being sought.
package title

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Normalize lower-cases title and drops every rune that is not a letter,
// so punctuation, digits, and spacing never affect a comparison.
func Normalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range lower.String(title) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matches reports whether observed names the same paper as expected.
// After normalization one title must be a prefix of the other: sources
// truncate titles or append volume and subtitle fragments.
//
// A title with no letters only matches an identical string; otherwise
// the empty normalization would prefix-match every title.
func Matches(expected, observed string) bool {
	e, o := Normalize(expected), Normalize(observed)
	if e == "" || o == "" {
		return strings.TrimSpace(expected) == strings.TrimSpace(observed)
	}
	return strings.HasPrefix(e, o) || strings.HasPrefix(o, e)
}
