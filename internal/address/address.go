// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package address parses compound affiliation blocks and correspondence
// annotations into per-author attributes.
package address

import (
	"strings"
)

// NamedAddress pairs one author's full name with an organization string.
type NamedAddress struct {
	Name         string
	Organization string
}

// Affiliation is an organization string split into its levels.
type Affiliation struct {
	University string
	College    string
}

// Group and list separators of the address-block grammar
// "[N1, N2; N3] Org1; [N4] Org2".
const (
	groupSep = "; ["
	orgSep   = "] "
	nameSep  = "; "
	partSep  = ", "
)

// ParseBlock flattens an address block into one NamedAddress per name.
//
//	"[A, B; C, D] Org1; [E, F] Org2"
//	→ ("A B", "Org1"), ("C D", "Org1"), ("E F", "Org2")
//
// Input that does not open with a bracket carries no names and yields
// nil. A group missing its "] " delimiter keeps its names with an empty
// organization. The second return value is false whenever either
// degradation happened.
func ParseBlock(block string) ([]NamedAddress, bool) {
	block = strings.TrimSpace(block)
	if block == "" || isMissing(block) {
		return nil, true
	}
	if !strings.HasPrefix(block, "[") {
		return nil, false
	}

	wellFormed := true
	var result []NamedAddress
	for _, group := range strings.Split(block[1:], groupSep) {
		names, org, ok := strings.Cut(group, orgSep)
		if !ok {
			wellFormed = false
			names = strings.TrimSuffix(names, "]")
		}
		org = strings.TrimSpace(org)
		for _, name := range strings.Split(names, nameSep) {
			name = CleanName(name)
			if name == "" {
				continue
			}
			result = append(result, NamedAddress{Name: name, Organization: org})
		}
	}
	return result, wellFormed
}

// SplitOrganization splits org on ", ". The first component is the
// university. The second is the college only when there are strictly
// more than three components; shorter strings such as "Dept, Univ,
// Country" carry no distinct college level. This is an empirical rule
// for citation-index address formats and misreads other layouts.
func SplitOrganization(org string) Affiliation {
	org = strings.TrimSpace(org)
	if org == "" {
		return Affiliation{}
	}
	parts := strings.Split(org, partSep)
	a := Affiliation{University: parts[0]}
	if len(parts) > 3 {
		a.College = parts[1]
	}
	return a
}

// Correspondence markers in reprint strings, tried in order.
var correspondingMarkers = []string{"(corresponding author)", "(Corresponding author)"}

// CorrespondingAuthor returns the abbreviated name preceding the first
// correspondence marker in reprint, with spaces removed and commas
// turned into single spaces: "Smith, J (corresponding author), Dept X"
// yields "Smith J". It returns "" when no marker is present.
func CorrespondingAuthor(reprint string) string {
	for _, marker := range correspondingMarkers {
		before, _, found := strings.Cut(reprint, marker)
		if !found {
			continue
		}
		name := strings.ReplaceAll(before, " ", "")
		return strings.ReplaceAll(name, ",", " ")
	}
	return ""
}

// CleanName drops commas and collapses whitespace, so "Doe, Jane" and
// "Doe Jane" compare equal.
func CleanName(name string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(name, ",", "")), " ")
}

// SplitNames splits a "; "-separated name list and cleans each entry.
func SplitNames(list string) []string {
	return splitList(list, CleanName)
}

// SplitEmails splits a "; "-separated email list.
func SplitEmails(list string) []string {
	return splitList(list, strings.TrimSpace)
}

func splitList(list string, clean func(string) string) []string {
	list = strings.TrimSpace(list)
	if list == "" || isMissing(list) {
		return nil
	}
	parts := strings.Split(list, nameSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, clean(p))
	}
	return out
}

// Abbreviate builds the citation-index short form "Family G" from a
// "Given Family" name, for sources that only publish full names.
// Names with a comma are taken as "Family, Given".
func Abbreviate(full string) string {
	if family, given, ok := strings.Cut(full, ","); ok {
		return strings.TrimSpace(family) + " " + initials(strings.Fields(given))
	}
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	}
	return fields[len(fields)-1] + " " + initials(fields[:len(fields)-1])
}

func initials(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		for _, r := range p {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

// isMissing reports spreadsheet placeholders for empty cells.
func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "null", "none", "n/a":
		return true
	}
	return false
}
