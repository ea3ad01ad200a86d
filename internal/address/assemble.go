// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package address

import (
	"github.com/pdiddy/scholar-linker/pkg/types"
)

// Byline holds the parallel per-author lists a source publishes. The
// lists come from independent fields and need not have equal length.
type Byline struct {
	AbbrNames []string
	FullNames []string
	Addresses []NamedAddress
	Emails    []string

	// Corresponding is the abbreviated name of the corresponding author,
	// or "" when the source names none.
	Corresponding string
}

// Align right-pads every list with "" up to the longest one. Alignment
// is positional and best effort; callers must tolerate empty values.
func Align(lists ...*[]string) int {
	width := 0
	for _, l := range lists {
		width = max(width, len(*l))
	}
	for _, l := range lists {
		for len(*l) < width {
			*l = append(*l, "")
		}
	}
	return width
}

// Assemble builds one ObservedAuthor per byline position. Emails are
// taken positionally; the affiliation comes from the last address pair
// whose name equals the author's full name. Positions where both names
// are empty are dropped.
func Assemble(b Byline) []types.ObservedAuthor {
	abbr := append([]string(nil), b.AbbrNames...)
	full := append([]string(nil), b.FullNames...)
	emails := append([]string(nil), b.Emails...)
	n := Align(&abbr, &full, &emails)

	authors := make([]types.ObservedAuthor, 0, n)
	for i := 0; i < n; i++ {
		a := types.ObservedAuthor{
			AbbrName: abbr[i],
			FullName: full[i],
			Role:     types.RolePaperAuthor,
		}
		if a.AbbrName == "" && a.FullName == "" {
			continue
		}
		a.Attributes.Email = emails[i]
		if org, ok := lookup(b.Addresses, a.FullName); ok {
			a.Affiliation = org
			aff := SplitOrganization(org)
			a.Attributes.University = aff.University
			a.Attributes.College = aff.College
		}
		if b.Corresponding != "" && b.Corresponding == a.AbbrName {
			a.Role = types.RoleCorrespondingAuthor
		}
		authors = append(authors, a)
	}
	return authors
}

func lookup(addrs []NamedAddress, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	var (
		org   string
		found bool
	)
	for _, na := range addrs {
		if na.Name == name {
			org, found = na.Organization, true
		}
	}
	return org, found
}
