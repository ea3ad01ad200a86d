// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge folds matched bylines into the store: it picks or creates the
// author identity for the observed attributes and repoints the paper's
// contribution row at it.
package merge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-linker/internal/identity"
	"github.com/pdiddy/scholar-linker/internal/store"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

// Store is the persistence surface the engine needs. *store.Store
// satisfies it.
type Store interface {
	identity.CandidateSource
	WithTx(ctx context.Context, fn func(store.Writer) error) error
}

// Result counts what one MergePaper call did.
type Result struct {
	Merged     int // contribution rows rewritten
	Created    int // new author identities inserted
	Unchanged  int // matched authors whose rows were already current
	Unresolved int // authors with no tracked researcher or no contribution row
}

// Add accumulates other into r.
func (r *Result) Add(other Result) {
	r.Merged += other.Merged
	r.Created += other.Created
	r.Unchanged += other.Unchanged
	r.Unresolved += other.Unresolved
}

// Engine applies merges. It is safe for concurrent use; merges of the same
// paper are serialized.
type Engine struct {
	store   Store
	matcher *identity.Matcher
	locks   PaperLocks
	log     zerolog.Logger
}

// NewEngine returns an Engine writing through st.
func NewEngine(st Store, log zerolog.Logger) *Engine {
	return &Engine{
		store:   st,
		matcher: identity.NewMatcher(st, log),
		log:     log,
	}
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeMerged
)

// MergePaper matches authors against the identities linked to paper pid and
// merges every match, one transaction per author. A store fault stops the
// paper and is returned; work committed for earlier authors stays.
func (e *Engine) MergePaper(ctx context.Context, pid int64, authors []types.ObservedAuthor) (Result, error) {
	unlock := e.locks.Lock(pid)
	defer unlock()

	var res Result
	if _, err := e.matcher.Match(ctx, pid, authors); err != nil {
		return res, err
	}

	for _, a := range authors {
		if !a.Match.Found() {
			res.Unresolved++
			continue
		}

		var (
			out     outcome
			created bool
		)
		err := e.store.WithTx(ctx, func(w store.Writer) error {
			var err error
			out, created, err = mergeAuthor(ctx, w, pid, a)
			return err
		})
		if errors.Is(err, types.ErrUnresolvedAuthor) {
			e.log.Debug().Err(err).Int64("paper_id", pid).Str("author", a.FullName).Msg("skipping author")
			res.Unresolved++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("merging %q into paper %d: %w", a.FullName, pid, err)
		}

		if created {
			res.Created++
		}
		switch out {
		case outcomeMerged:
			res.Merged++
		default:
			res.Unchanged++
		}
		e.log.Debug().
			Int64("paper_id", pid).
			Int64("researcher_id", a.Match.ResearcherID).
			Str("author", a.FullName).
			Bool("created", created).
			Bool("changed", out == outcomeMerged).
			Msg("author merged")
	}
	return res, nil
}

// mergeAuthor runs inside one transaction. Returning an error rolls back the
// identity insert together with the contribution rewrite.
func mergeAuthor(ctx context.Context, w store.Writer, pid int64, a types.ObservedAuthor) (outcome, bool, error) {
	rid, oldAID := a.Match.ResearcherID, a.Match.AuthorID

	aid, found, err := w.FindIdentity(ctx, rid, a.Attributes)
	if err != nil {
		return outcomeUnchanged, false, err
	}
	created := false
	if !found {
		flag, err := w.DisambiguationFlag(ctx, rid)
		if err != nil {
			return outcomeUnchanged, false, err
		}
		if aid, err = w.InsertIdentity(ctx, rid, a.Attributes, flag); err != nil {
			return outcomeUnchanged, false, err
		}
		created = true
	}

	cur, ok, err := w.Contribution(ctx, oldAID, pid)
	if err != nil {
		return outcomeUnchanged, false, err
	}
	if !ok {
		return outcomeUnchanged, false, fmt.Errorf("no contribution for author %d on paper %d: %w",
			oldAID, pid, types.ErrUnresolvedAuthor)
	}

	next := types.Contribution{
		AuthorID:   aid,
		PaperID:    pid,
		Role:       resolveRole(a.Role, cur.Role),
		Attributes: a.Attributes,
	}

	if aid != oldAID {
		// The resolved identity may already hold its own row for this paper.
		target, exists, err := w.Contribution(ctx, aid, pid)
		if err != nil {
			return outcomeUnchanged, false, err
		}
		if exists {
			next.Role = resolveRole(next.Role, target.Role)
			if err := w.UpdateContribution(ctx, aid, pid, next); err != nil {
				return outcomeUnchanged, false, err
			}
			if err := w.DeleteContribution(ctx, oldAID, pid); err != nil {
				return outcomeUnchanged, false, err
			}
			return outcomeMerged, created, nil
		}
	}

	if cur == next {
		return outcomeUnchanged, created, nil
	}
	if err := w.UpdateContribution(ctx, oldAID, pid, next); err != nil {
		return outcomeUnchanged, false, err
	}
	return outcomeMerged, created, nil
}

// resolveRole keeps a specific existing role over the observed one and
// never yields the empty role.
func resolveRole(observed, existing types.Role) types.Role {
	if !existing.IsGeneric() {
		return existing
	}
	if observed == "" {
		return types.RolePaperAuthor
	}
	return observed
}
