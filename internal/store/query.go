// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/scholar-linker/pkg/types"
)

// PendingOptions selects papers that still have an identity with no
// observed attributes.
type PendingOptions struct {
	// JournalsOnly restricts the result to papers published in journals.
	JournalsOnly bool

	// AfterID returns papers with id > AfterID, for paging.
	AfterID int64

	// Limit caps the page size (default 150).
	Limit int
}

const defaultPendingLimit = 150

// PendingPapers returns papers linked to at least one identity whose
// (email, university, college, lab) tuple is empty, in id order.
func (s *Store) PendingPapers(ctx context.Context, opts PendingOptions) ([]types.Paper, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPendingLimit
	}

	var qb strings.Builder
	qb.WriteString(
		`SELECT p.id, p.title, p.venue, p.year, p.author_count FROM paper p
		 WHERE p.id > ? AND p.id IN (
			SELECT ap.pid FROM author_paper ap JOIN author a ON a.id = ap.aid
			WHERE a.email = '' AND a.university = '' AND a.college = '' AND a.lab = '')`)
	args := []any{opts.AfterID}
	if opts.JournalsOnly {
		qb.WriteString(` AND p.venue IN (SELECT name FROM venue WHERE kind = ?)`)
		args = append(args, string(types.VenueJournal))
	}
	qb.WriteString(` ORDER BY p.id LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, types.StoreFault("query pending papers", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		var p types.Paper
		if err := rows.Scan(&p.ID, &p.Title, &p.Venue, &p.Year, &p.AuthorCount); err != nil {
			return nil, types.StoreFault("scan paper", err)
		}
		papers = append(papers, p)
	}
	return papers, types.StoreFault("iterate papers", rows.Err())
}

// Paper returns the paper with the given id.
func (s *Store) Paper(ctx context.Context, id int64) (types.Paper, error) {
	return s.scanPaper(s.db.QueryRowContext(ctx,
		`SELECT id, title, venue, year, author_count FROM paper WHERE id = ?`, id),
		fmt.Sprintf("id %d", id))
}

// PaperByTitle returns the paper whose title equals title exactly.
func (s *Store) PaperByTitle(ctx context.Context, title string) (types.Paper, error) {
	return s.scanPaper(s.db.QueryRowContext(ctx,
		`SELECT id, title, venue, year, author_count FROM paper WHERE title = ?`, title),
		fmt.Sprintf("title %q", title))
}

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

func (s *Store) scanPaper(row *sql.Row, key string) (types.Paper, error) {
	var p types.Paper
	err := row.Scan(&p.ID, &p.Title, &p.Venue, &p.Year, &p.AuthorCount)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Paper{}, fmt.Errorf("paper with %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return types.Paper{}, types.StoreFault("read paper", err)
	}
	return p, nil
}

// Candidates returns every identity linked to paper pid, joined with the
// owning researcher's name, in identity order.
func (s *Store) Candidates(ctx context.Context, pid int64) ([]types.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, r.id, r.name, ap.contribution
		 FROM author_paper ap
		 JOIN author a ON a.id = ap.aid
		 JOIN researcher r ON r.id = a.rid
		 WHERE ap.pid = ?
		 ORDER BY a.id`, pid)
	if err != nil {
		return nil, types.StoreFault("query candidates", err)
	}
	defer rows.Close()

	var out []types.Candidate
	for rows.Next() {
		var (
			c    types.Candidate
			role string
		)
		if err := rows.Scan(&c.AuthorID, &c.ResearcherID, &c.ResearcherName, &role); err != nil {
			return nil, types.StoreFault("scan candidate", err)
		}
		c.Role = types.Role(role)
		out = append(out, c)
	}
	return out, types.StoreFault("iterate candidates", rows.Err())
}

// Researcher returns the researcher with the given id.
func (s *Store) Researcher(ctx context.Context, id int64) (types.Researcher, error) {
	var r types.Researcher
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, title, affiliation FROM researcher WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.Title, &r.Affiliation)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Researcher{}, fmt.Errorf("researcher %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Researcher{}, types.StoreFault("read researcher", err)
	}
	return r, nil
}

// Identities returns every identity of researcher rid in id order.
func (s *Store) Identities(ctx context.Context, rid int64) ([]types.AuthorIdentity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rid, email, university, college, lab, needs_disambiguation
		 FROM author WHERE rid = ? ORDER BY id`, rid)
	if err != nil {
		return nil, types.StoreFault("query identities", err)
	}
	defer rows.Close()

	var out []types.AuthorIdentity
	for rows.Next() {
		var (
			a    types.AuthorIdentity
			flag int
		)
		if err := rows.Scan(&a.ID, &a.ResearcherID, &a.Attributes.Email, &a.Attributes.University,
			&a.Attributes.College, &a.Attributes.Lab, &flag); err != nil {
			return nil, types.StoreFault("scan identity", err)
		}
		a.NeedsDisambiguation = flag != 0
		out = append(out, a)
	}
	return out, types.StoreFault("iterate identities", rows.Err())
}

// Contributions returns every contribution row of paper pid in aid order.
func (s *Store) Contributions(ctx context.Context, pid int64) ([]types.Contribution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT aid, pid, contribution, email, university, college, lab, needs_disambiguation
		 FROM author_paper WHERE pid = ? ORDER BY aid`, pid)
	if err != nil {
		return nil, types.StoreFault("query contributions", err)
	}
	defer rows.Close()

	var out []types.Contribution
	for rows.Next() {
		var (
			c    types.Contribution
			role string
			flag int
		)
		if err := rows.Scan(&c.AuthorID, &c.PaperID, &role, &c.Attributes.Email, &c.Attributes.University,
			&c.Attributes.College, &c.Attributes.Lab, &flag); err != nil {
			return nil, types.StoreFault("scan contribution", err)
		}
		c.Role = types.Role(role)
		c.NeedsDisambiguation = flag != 0
		out = append(out, c)
	}
	return out, types.StoreFault("iterate contributions", rows.Err())
}

// Achievements returns every contribution of researcher rid across all of
// its identities, ordered by year then title.
func (s *Store) Achievements(ctx context.Context, rid int64) ([]types.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.title, ap.contribution, p.venue, COALESCE(v.kind, ''), p.year
		 FROM author_paper ap
		 JOIN paper p ON p.id = ap.pid
		 LEFT JOIN venue v ON v.name = p.venue
		 WHERE ap.aid IN (SELECT id FROM author WHERE rid = ?)
		 ORDER BY p.year, p.title`, rid)
	if err != nil {
		return nil, types.StoreFault("query achievements", err)
	}
	defer rows.Close()

	var out []types.Achievement
	for rows.Next() {
		var (
			a          types.Achievement
			role, kind string
		)
		if err := rows.Scan(&a.PaperID, &a.PaperTitle, &role, &a.Venue, &kind, &a.Year); err != nil {
			return nil, types.StoreFault("scan achievement", err)
		}
		a.Role = types.Role(role)
		a.VenueKind = types.VenueKind(kind)
		out = append(out, a)
	}
	return out, types.StoreFault("iterate achievements", rows.Err())
}
