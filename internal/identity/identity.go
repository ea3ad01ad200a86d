// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity ties bylines observed on a fetched page to author
// identities already linked to the paper.
package identity

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-linker/pkg/types"
)

// CandidateSource lists the identities linked to a paper.
type CandidateSource interface {
	Candidates(ctx context.Context, pid int64) ([]types.Candidate, error)
}

// Matcher resolves observed authors against a paper's candidates.
type Matcher struct {
	source CandidateSource
	log    zerolog.Logger
}

// NewMatcher returns a Matcher reading candidates from source.
func NewMatcher(source CandidateSource, log zerolog.Logger) *Matcher {
	return &Matcher{source: source, log: log}
}

// Match sets the Match of every author in place. An author whose full
// name equals a candidate's researcher name (suffix stripped, two-token
// reversal allowed) gets that candidate; the first candidate in identity
// order wins and each candidate is claimed at most once. Everyone else
// gets types.NoMatch. It returns the number of matched authors.
func (m *Matcher) Match(ctx context.Context, pid int64, authors []types.ObservedAuthor) (int, error) {
	candidates, err := m.source.Candidates(ctx, pid)
	if err != nil {
		return 0, fmt.Errorf("loading candidates for paper %d: %w", pid, err)
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = StripSuffix(c.ResearcherName)
	}

	claimed := make([]bool, len(candidates))
	matched := 0
	for i := range authors {
		a := &authors[i]
		a.Match = types.NoMatch()
		for j, c := range candidates {
			if claimed[j] || !IsSameName(names[j], a.FullName) {
				continue
			}
			claimed[j] = true
			a.Match = types.Matched(c.AuthorID, c.ResearcherID)
			matched++
			break
		}
		if !a.Match.Found() {
			m.log.Debug().
				Int64("paper_id", pid).
				Str("author", a.FullName).
				Msg("byline not tied to a tracked researcher")
		}
	}
	return matched, nil
}
