// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// MatchState distinguishes "not looked up" from "looked up, nobody found".
type MatchState int

const (
	MatchUnresolved MatchState = iota
	MatchNone
	MatchFound
)

func (s MatchState) String() string {
	switch s {
	case MatchNone:
		return "none"
	case MatchFound:
		return "found"
	default:
		return "unresolved"
	}
}

// Match is the outcome of identity resolution for one ObservedAuthor.
// The zero value is MatchUnresolved.
type Match struct {
	State MatchState

	// AuthorID is the identity currently linked to the paper. It keys the
	// contribution row the merge engine rewrites.
	AuthorID int64

	// ResearcherID owns AuthorID.
	ResearcherID int64
}

// Matched returns a found Match.
func Matched(authorID, researcherID int64) Match {
	return Match{State: MatchFound, AuthorID: authorID, ResearcherID: researcherID}
}

// NoMatch returns a Match recording that resolution found nobody.
func NoMatch() Match {
	return Match{State: MatchNone}
}

// Found reports whether the match carries a resolved identity.
func (m Match) Found() bool {
	return m.State == MatchFound
}

func (m Match) String() string {
	if m.Found() {
		return fmt.Sprintf("found(aid=%d, rid=%d)", m.AuthorID, m.ResearcherID)
	}
	return m.State.String()
}
