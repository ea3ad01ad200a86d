// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"strings"
)

// StripSuffix removes a trailing all-digit token, the homonym index some
// publishers append to researcher names ("Wei Wang 0003" → "Wei Wang").
func StripSuffix(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 || !isDigits(fields[len(fields)-1]) {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:len(fields)-1], " ")
}

// IsSameName reports whether a and b are the same verbatim, or are the
// same two tokens in reverse order ("Jane Doe" vs "Doe Jane"). Middle
// names and multi-word surnames are not reconciled.
func IsSameName(a, b string) bool {
	a, b = strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " ")
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return reverseTwo(a) == b
}

// reverseTwo swaps a two-token name; any other token count yields "".
func reverseTwo(name string) string {
	first, last, ok := strings.Cut(name, " ")
	if !ok || strings.Contains(last, " ") {
		return ""
	}
	return last + " " + first
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
