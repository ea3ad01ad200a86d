// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-linker/internal/store"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, _ := openTestStore(t)
	return s
}

func openTestStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "merge.db")
	s, err := store.Open(types.StoreConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

// insertContribution writes an author_paper row directly, bypassing the
// one-row-per-researcher guard of LinkContribution.
func insertContribution(t *testing.T, path string, aid, pid int64, role types.Role) {
	t.Helper()
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(
		`INSERT INTO author_paper (aid, pid, contribution, email, university, college, lab, needs_disambiguation)
		 VALUES (?, ?, ?, '', '', '', '', 0)`, aid, pid, string(role))
	require.NoError(t, err)
}

type seeded struct {
	researcherID int64
	authorID     int64
	paperID      int64
}

// seedPaper links one researcher to one paper the way the roster does.
func seedPaper(t *testing.T, s *store.Store, name string, role types.Role, flag bool) seeded {
	t.Helper()
	ctx := context.Background()
	var out seeded
	err := s.WithTx(ctx, func(w store.Writer) error {
		var err error
		if out.researcherID, err = w.EnsureResearcher(ctx, types.Researcher{Name: name}); err != nil {
			return err
		}
		if out.authorID, err = w.EnsureIdentity(ctx, types.AuthorIdentity{
			ResearcherID: out.researcherID, NeedsDisambiguation: flag,
		}); err != nil {
			return err
		}
		if err := w.EnsureVenue(ctx, types.Venue{Name: "J. Things", Kind: types.VenueJournal}); err != nil {
			return err
		}
		if out.paperID, err = w.EnsurePaper(ctx, types.Paper{Title: "Linking Records", Venue: "J. Things", Year: "2020"}); err != nil {
			return err
		}
		return w.LinkContribution(ctx, types.Contribution{AuthorID: out.authorID, PaperID: out.paperID, Role: role})
	})
	require.NoError(t, err)
	return out
}

func snapshot(t *testing.T, s *store.Store, f seeded) ([]types.AuthorIdentity, []types.Contribution) {
	t.Helper()
	ids, err := s.Identities(context.Background(), f.researcherID)
	require.NoError(t, err)
	cs, err := s.Contributions(context.Background(), f.paperID)
	require.NoError(t, err)
	return ids, cs
}

func observed(full, abbr string, attrs types.Attributes, role types.Role) types.ObservedAuthor {
	return types.ObservedAuthor{FullName: full, AbbrName: abbr, Attributes: attrs, Role: role}
}

var univX = types.Attributes{Email: "jane@x.edu", University: "Univ X", College: "Engineering"}

// --- merge tests ---

func TestMergeCreatesIdentityAndRepoints(t *testing.T) {
	s := testStore(t)
	f := seedPaper(t, s, "Jane Doe", types.RolePaperAuthor, true)
	e := NewEngine(s, zerolog.Nop())

	res, err := e.MergePaper(context.Background(), f.paperID, []types.ObservedAuthor{
		observed("Doe Jane", "Doe J", univX, types.RoleCorrespondingAuthor),
		observed("Someone Else", "Else S", types.Attributes{}, types.RolePaperAuthor),
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Merged: 1, Created: 1, Unresolved: 1}, res)

	ids, cs := snapshot(t, s, f)
	require.Len(t, ids, 2)
	assert.Equal(t, univX, ids[1].Attributes)
	assert.True(t, ids[1].NeedsDisambiguation, "new identity inherits the researcher's flag")

	require.Len(t, cs, 1)
	assert.Equal(t, ids[1].ID, cs[0].AuthorID)
	assert.Equal(t, types.RoleCorrespondingAuthor, cs[0].Role)
	assert.Equal(t, univX, cs[0].Attributes)
	assert.False(t, cs[0].NeedsDisambiguation)
}

func TestMergeIsIdempotent(t *testing.T) {
	s := testStore(t)
	f := seedPaper(t, s, "Jane Doe", types.RolePaperAuthor, false)
	e := NewEngine(s, zerolog.Nop())
	authors := func() []types.ObservedAuthor {
		return []types.ObservedAuthor{observed("Jane Doe", "Doe J", univX, types.RoleCorrespondingAuthor)}
	}

	_, err := e.MergePaper(context.Background(), f.paperID, authors())
	require.NoError(t, err)
	ids1, cs1 := snapshot(t, s, f)

	res, err := e.MergePaper(context.Background(), f.paperID, authors())
	require.NoError(t, err)
	assert.Equal(t, Result{Unchanged: 1}, res)

	ids2, cs2 := snapshot(t, s, f)
	assert.Equal(t, ids1, ids2)
	assert.Equal(t, cs1, cs2)
}

func TestMergeReusesEmptyIdentity(t *testing.T) {
	s := testStore(t)
	f := seedPaper(t, s, "Jane Doe", types.RolePaperAuthor, false)
	e := NewEngine(s, zerolog.Nop())

	res, err := e.MergePaper(context.Background(), f.paperID, []types.ObservedAuthor{
		observed("Jane Doe", "Doe J", types.Attributes{}, types.RoleCorrespondingAuthor),
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Merged: 1}, res)

	ids, cs := snapshot(t, s, f)
	assert.Len(t, ids, 1)
	require.Len(t, cs, 1)
	assert.Equal(t, f.authorID, cs[0].AuthorID)
	assert.Equal(t, types.RoleCorrespondingAuthor, cs[0].Role)
}

func TestMergeRolePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		existing types.Role
		observed types.Role
		want     types.Role
	}{
		{"first author kept over generic", types.RoleFirstAuthor, types.RolePaperAuthor, types.RoleFirstAuthor},
		{"first author kept over corresponding", types.RoleFirstAuthor, types.RoleCorrespondingAuthor, types.RoleFirstAuthor},
		{"generic upgraded to corresponding", types.RolePaperAuthor, types.RoleCorrespondingAuthor, types.RoleCorrespondingAuthor},
		{"generic stays generic", types.RolePaperAuthor, types.RolePaperAuthor, types.RolePaperAuthor},
		{"empty observed role stays generic", types.RolePaperAuthor, "", types.RolePaperAuthor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(t)
			f := seedPaper(t, s, "Jane Doe", tt.existing, false)

			_, err := NewEngine(s, zerolog.Nop()).MergePaper(context.Background(), f.paperID,
				[]types.ObservedAuthor{observed("Jane Doe", "Doe J", univX, tt.observed)})
			require.NoError(t, err)

			_, cs := snapshot(t, s, f)
			require.Len(t, cs, 1)
			assert.Equal(t, tt.want, cs[0].Role)
		})
	}
}

func TestMergeRepointOntoExistingRow(t *testing.T) {
	s, path := openTestStore(t)
	f := seedPaper(t, s, "Jane Doe", types.RolePaperAuthor, false)
	ctx := context.Background()

	// A second identity of the same researcher already holds a row for the paper.
	var otherID int64
	require.NoError(t, s.WithTx(ctx, func(w store.Writer) error {
		var err error
		otherID, err = w.InsertIdentity(ctx, f.researcherID, univX, false)
		return err
	}))
	insertContribution(t, path, otherID, f.paperID, types.RoleFirstAuthor)

	before, err := s.Contributions(ctx, f.paperID)
	require.NoError(t, err)
	require.Len(t, before, 2)

	// Only the first candidate is claimed by the single observed byline.
	res, err := NewEngine(s, zerolog.Nop()).MergePaper(ctx, f.paperID, []types.ObservedAuthor{
		observed("Jane Doe", "Doe J", univX, types.RolePaperAuthor),
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Merged: 1}, res)

	_, cs := snapshot(t, s, f)
	require.Len(t, cs, 1, "stale row folded into the existing one")
	assert.Equal(t, otherID, cs[0].AuthorID)
	assert.Equal(t, types.RoleFirstAuthor, cs[0].Role)
	assert.Equal(t, univX, cs[0].Attributes)
}

func TestMergeUnmatchedIsNoop(t *testing.T) {
	s := testStore(t)
	f := seedPaper(t, s, "Jane Doe", types.RolePaperAuthor, false)
	idsBefore, csBefore := snapshot(t, s, f)

	res, err := NewEngine(s, zerolog.Nop()).MergePaper(context.Background(), f.paperID, []types.ObservedAuthor{
		observed("Jane A Doe", "Doe JA", univX, types.RoleCorrespondingAuthor),
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Unresolved: 1}, res)

	idsAfter, csAfter := snapshot(t, s, f)
	assert.Equal(t, idsBefore, idsAfter)
	assert.Equal(t, csBefore, csAfter)
}

// --- fault injection ---

type faultyStore struct {
	*store.Store
}

func (f faultyStore) WithTx(ctx context.Context, fn func(store.Writer) error) error {
	return f.Store.WithTx(ctx, func(w store.Writer) error {
		return fn(failingWriter{Writer: w})
	})
}

type failingWriter struct {
	store.Writer
}

func (failingWriter) UpdateContribution(context.Context, int64, int64, types.Contribution) error {
	return types.StoreFault("update contribution", errors.New("disk unplugged"))
}

func TestMergeFaultRollsBackIdentity(t *testing.T) {
	s := testStore(t)
	f := seedPaper(t, s, "Jane Doe", types.RolePaperAuthor, false)
	idsBefore, csBefore := snapshot(t, s, f)

	_, err := NewEngine(faultyStore{s}, zerolog.Nop()).MergePaper(context.Background(), f.paperID,
		[]types.ObservedAuthor{observed("Jane Doe", "Doe J", univX, types.RoleCorrespondingAuthor)})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStoreFault)

	idsAfter, csAfter := snapshot(t, s, f)
	assert.Equal(t, idsBefore, idsAfter, "identity insert rolled back")
	assert.Equal(t, csBefore, csAfter)
}

// --- concurrency ---

func TestConcurrentMergesSerialize(t *testing.T) {
	s := testStore(t)
	f := seedPaper(t, s, "Jane Doe", types.RolePaperAuthor, false)
	e := NewEngine(s, zerolog.Nop())
	univY := types.Attributes{Email: "jane@y.edu", University: "Univ Y"}

	inputs := [][]types.ObservedAuthor{
		{observed("Jane Doe", "Doe J", univX, types.RoleCorrespondingAuthor)},
		{observed("Jane Doe", "Doe J", univY, types.RolePaperAuthor)},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(inputs))
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.MergePaper(context.Background(), f.paperID, inputs[i])
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	// Either order ends with one corresponding-author row on a fresh identity
	// whose attributes the row mirrors.
	ids, cs := snapshot(t, s, f)
	assert.Len(t, ids, 3)
	require.Len(t, cs, 1)
	assert.Equal(t, types.RoleCorrespondingAuthor, cs[0].Role)

	var owner *types.AuthorIdentity
	for i := range ids {
		if ids[i].ID == cs[0].AuthorID {
			owner = &ids[i]
		}
	}
	require.NotNil(t, owner)
	assert.Equal(t, owner.Attributes, cs[0].Attributes)
	assert.Contains(t, []types.Attributes{univX, univY}, cs[0].Attributes)
	assert.Zero(t, e.locks.held())
}

func TestPaperLocksReleaseEntries(t *testing.T) {
	var l PaperLocks
	u1 := l.Lock(1)
	u2 := l.Lock(2)
	assert.Equal(t, 2, l.held())

	acquired := make(chan struct{})
	released := make(chan struct{})
	go func() {
		u := l.Lock(1)
		close(acquired)
		u()
		close(released)
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	default:
	}
	u1()
	<-released
	u2()
	assert.Zero(t, l.held())
}

func TestResultAdd(t *testing.T) {
	r := Result{Merged: 1, Unresolved: 2}
	r.Add(Result{Merged: 2, Created: 1, Unchanged: 3})
	assert.Equal(t, Result{Merged: 3, Created: 1, Unchanged: 3, Unresolved: 2}, r)
}
