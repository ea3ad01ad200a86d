// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pdiddy/scholar-linker/pkg/types"
)

// Writer is the set of statements available inside WithTx. Every method
// reports failures as types.StoreFaultError.
type Writer interface {
	// FindIdentity returns the identity of researcher rid whose attribute
	// tuple equals attrs exactly.
	FindIdentity(ctx context.Context, rid int64, attrs types.Attributes) (int64, bool, error)

	// DisambiguationFlag returns the needs_disambiguation flag of any
	// identity of rid, or false when rid has none.
	DisambiguationFlag(ctx context.Context, rid int64) (bool, error)

	// InsertIdentity adds a new identity under rid.
	InsertIdentity(ctx context.Context, rid int64, attrs types.Attributes, needsDisambiguation bool) (int64, error)

	// Contribution reads the (aid, pid) row.
	Contribution(ctx context.Context, aid, pid int64) (types.Contribution, bool, error)

	// UpdateContribution rewrites the (aid, pid) row with c, including a
	// repoint to c.AuthorID.
	UpdateContribution(ctx context.Context, aid, pid int64, c types.Contribution) error

	// DeleteContribution removes the (aid, pid) row.
	DeleteContribution(ctx context.Context, aid, pid int64) error

	// EnsureResearcher inserts r unless a researcher with the same name
	// exists, and returns the stored id.
	EnsureResearcher(ctx context.Context, r types.Researcher) (int64, error)

	// EnsureIdentity inserts a unless an identical tuple exists under the
	// same researcher, and returns the stored id.
	EnsureIdentity(ctx context.Context, a types.AuthorIdentity) (int64, error)

	// EnsureVenue inserts v unless the name exists.
	EnsureVenue(ctx context.Context, v types.Venue) error

	// EnsurePaper inserts p unless the title exists, and returns the stored id.
	EnsurePaper(ctx context.Context, p types.Paper) (int64, error)

	// LinkContribution inserts c unless the paper is already linked to
	// any identity of the same researcher.
	LinkContribution(ctx context.Context, c types.Contribution) error
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) FindIdentity(ctx context.Context, rid int64, attrs types.Attributes) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM author
		 WHERE rid = ? AND email = ? AND university = ? AND college = ? AND lab = ?
		 ORDER BY id LIMIT 1`,
		rid, attrs.Email, attrs.University, attrs.College, attrs.Lab,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, types.StoreFault("find identity", err)
	}
	return id, true, nil
}

func (t *sqlTx) DisambiguationFlag(ctx context.Context, rid int64) (bool, error) {
	var flag int
	err := t.tx.QueryRowContext(ctx,
		`SELECT needs_disambiguation FROM author WHERE rid = ? ORDER BY id LIMIT 1`, rid,
	).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, types.StoreFault("read disambiguation flag", err)
	}
	return flag != 0, nil
}

func (t *sqlTx) InsertIdentity(ctx context.Context, rid int64, attrs types.Attributes, needsDisambiguation bool) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO author (rid, email, university, college, lab, needs_disambiguation)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rid, attrs.Email, attrs.University, attrs.College, attrs.Lab, boolInt(needsDisambiguation),
	)
	if err != nil {
		return 0, types.StoreFault("insert identity", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, types.StoreFault("insert identity", err)
	}
	return id, nil
}

func (t *sqlTx) Contribution(ctx context.Context, aid, pid int64) (types.Contribution, bool, error) {
	c := types.Contribution{AuthorID: aid, PaperID: pid}
	var (
		role string
		flag int
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT contribution, email, university, college, lab, needs_disambiguation
		 FROM author_paper WHERE aid = ? AND pid = ?`, aid, pid,
	).Scan(&role, &c.Attributes.Email, &c.Attributes.University, &c.Attributes.College, &c.Attributes.Lab, &flag)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Contribution{}, false, nil
	}
	if err != nil {
		return types.Contribution{}, false, types.StoreFault("read contribution", err)
	}
	c.Role = types.Role(role)
	c.NeedsDisambiguation = flag != 0
	return c, true, nil
}

func (t *sqlTx) UpdateContribution(ctx context.Context, aid, pid int64, c types.Contribution) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE author_paper SET
			aid = ?, contribution = ?, email = ?, university = ?, college = ?, lab = ?,
			needs_disambiguation = ?
		 WHERE aid = ? AND pid = ?`,
		c.AuthorID, string(c.Role), c.Attributes.Email, c.Attributes.University,
		c.Attributes.College, c.Attributes.Lab, boolInt(c.NeedsDisambiguation),
		aid, pid,
	)
	return types.StoreFault("update contribution", err)
}

func (t *sqlTx) DeleteContribution(ctx context.Context, aid, pid int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM author_paper WHERE aid = ? AND pid = ?`, aid, pid)
	return types.StoreFault("delete contribution", err)
}

func (t *sqlTx) EnsureResearcher(ctx context.Context, r types.Researcher) (int64, error) {
	if _, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO researcher (name, title, affiliation) VALUES (?, ?, ?)`,
		r.Name, r.Title, r.Affiliation,
	); err != nil {
		return 0, types.StoreFault("insert researcher", err)
	}
	var id int64
	if err := t.tx.QueryRowContext(ctx, `SELECT id FROM researcher WHERE name = ?`, r.Name).Scan(&id); err != nil {
		return 0, types.StoreFault("select researcher", err)
	}
	return id, nil
}

func (t *sqlTx) EnsureIdentity(ctx context.Context, a types.AuthorIdentity) (int64, error) {
	if _, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO author (rid, email, university, college, lab, needs_disambiguation)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ResearcherID, a.Attributes.Email, a.Attributes.University, a.Attributes.College,
		a.Attributes.Lab, boolInt(a.NeedsDisambiguation),
	); err != nil {
		return 0, types.StoreFault("insert identity", err)
	}
	id, found, err := t.FindIdentity(ctx, a.ResearcherID, a.Attributes)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, types.StoreFault("insert identity", sql.ErrNoRows)
	}
	return id, nil
}

func (t *sqlTx) EnsureVenue(ctx context.Context, v types.Venue) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO venue (name, kind) VALUES (?, ?)`, v.Name, string(v.Kind))
	return types.StoreFault("insert venue", err)
}

func (t *sqlTx) EnsurePaper(ctx context.Context, p types.Paper) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM paper WHERE title = ?`, p.Title).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, types.StoreFault("select paper", err)
	}
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO paper (title, venue, year, author_count) VALUES (?, ?, ?, ?)`,
		p.Title, p.Venue, p.Year, p.AuthorCount,
	)
	if err != nil {
		return 0, types.StoreFault("insert paper", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, types.StoreFault("insert paper", err)
	}
	return id, nil
}

func (t *sqlTx) LinkContribution(ctx context.Context, c types.Contribution) error {
	role := c.Role
	if role == "" {
		role = types.RolePaperAuthor
	}
	// A researcher keeps one row per paper even after merges repointed it
	// to another of its identities.
	_, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO author_paper
			(aid, pid, contribution, email, university, college, lab, needs_disambiguation)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?
		 WHERE NOT EXISTS (
			SELECT 1 FROM author_paper ap JOIN author a ON a.id = ap.aid
			WHERE ap.pid = ? AND a.rid = (SELECT rid FROM author WHERE id = ?))`,
		c.AuthorID, c.PaperID, string(role), c.Attributes.Email, c.Attributes.University,
		c.Attributes.College, c.Attributes.Lab, boolInt(c.NeedsDisambiguation),
		c.PaperID, c.AuthorID,
	)
	return types.StoreFault("link contribution", err)
}
