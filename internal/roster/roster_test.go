// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package roster

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-linker/internal/store"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

const header = "author,dblp_key,title,year,kind,venue,author_count,is_first_author\n"

func writeExport(t *testing.T, root, uni, title, person, file string, rows ...string) {
	t.Helper()
	dir := filepath.Join(root, uni, title, person)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(header+strings.Join(rows, "\n")+"\n"), 0o644))
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "roster.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestVenueKind(t *testing.T) {
	assert.Equal(t, types.VenueJournal, VenueKind("<journal>TKDE"))
	assert.Equal(t, types.VenueConference, VenueKind(" <crossref>conf/kdd"))
	assert.Equal(t, types.VenueKind("book"), VenueKind("book"))
}

func TestReadArticles(t *testing.T) {
	in := header +
		`Jane Doe,k1,"Linking, Records",2020,<journal>x,TKDE,3,True` + "\n" +
		`Jane Doe,k2,Merging,2021,<crossref>y,KDD,2,0` + "\n"

	name, articles, err := ReadArticles(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", name)
	require.Len(t, articles, 2)
	assert.Equal(t, Article{
		Title:       "Linking, Records",
		Year:        "2020",
		Venue:       types.Venue{Name: "TKDE", Kind: types.VenueJournal},
		AuthorCount: 3,
		FirstAuthor: true,
	}, articles[0])
	assert.False(t, articles[1].FirstAuthor)
	assert.Equal(t, types.VenueConference, articles[1].Venue.Kind)
}

func TestReadArticlesErrors(t *testing.T) {
	_, _, err := ReadArticles(strings.NewReader(header + "Jane Doe,k1,Title,2020\n"))
	assert.ErrorContains(t, err, "columns")

	_, _, err = ReadArticles(strings.NewReader(header + "Jane Doe,k1,Title,2020,<journal>,V,many,1\n"))
	assert.ErrorContains(t, err, "author count")

	name, articles, err := ReadArticles(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Empty(t, articles)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "Univ X", "Professor", "Jane Doe", "jane_disambiguation_article.csv")
	writeExport(t, root, "Univ X", "Professor", "John Roe", "john_undisambiguation_article.csv")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Univ X", "Lecturer", "Nobody"), 0o755))

	entries, missing, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Jane Doe", entries[0].Researcher)
	assert.True(t, entries[0].NeedsDisambiguation)
	assert.Equal(t, "Professor", entries[0].Title)
	assert.Equal(t, "Univ X", entries[0].University)
	assert.False(t, entries[1].NeedsDisambiguation)
	assert.Equal(t, []string{filepath.Join(root, "Univ X", "Lecturer", "Nobody")}, missing)

	_, _, err = Discover(filepath.Join(root, "absent"))
	assert.Error(t, err)
}

func TestSeedDir(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "Univ X", "Professor", "Jane Doe", "jane_disambiguation_article.csv",
		"Jane Doe,k1,Shared Paper,2020,<journal>x,TKDE,2,True",
		"Jane Doe,k2,Solo Paper,2021,<crossref>y,KDD,1,1",
	)
	writeExport(t, root, "Univ X", "Professor", "John Roe", "john_undisambiguation_article.csv",
		"John Roe,k1,Shared Paper,2020,<journal>x,TKDE,2,False",
	)
	writeExport(t, root, "Univ Y", "Lecturer", "Broken", "b_undisambiguation_article.csv",
		"Broken,k1,Nope,2020",
	)

	s := testStore(t)
	seeder := NewSeeder(s, zerolog.Nop())
	ctx := context.Background()

	var out bytes.Buffer
	sum, err := seeder.SeedDir(ctx, root, &out)
	require.NoError(t, err)
	assert.Equal(t, Summary{Researchers: 2, Articles: 3, Failed: 1}, sum)
	assert.Contains(t, out.String(), "failed:  Broken")
	assert.Contains(t, out.String(), "Seed summary: 2 researchers, 3 articles, 0 missing, 1 failed")

	shared, err := s.PaperByTitle(ctx, "Shared Paper")
	require.NoError(t, err)
	assert.Equal(t, "TKDE", shared.Venue)
	assert.Equal(t, 2, shared.AuthorCount)

	cands, err := s.Candidates(ctx, shared.ID)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "Jane Doe", cands[0].ResearcherName)
	assert.Equal(t, types.RoleFirstAuthor, cands[0].Role)
	assert.Equal(t, types.RolePaperAuthor, cands[1].Role)

	ids, err := s.Identities(ctx, cands[0].ResearcherID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.True(t, ids[0].NeedsDisambiguation)

	jane, err := s.Researcher(ctx, cands[0].ResearcherID)
	require.NoError(t, err)
	assert.Equal(t, types.Researcher{ID: jane.ID, Name: "Jane Doe", Title: "Professor", Affiliation: "Univ X"}, jane)

	// Reseeding is a no-op.
	before, err := s.Contributions(ctx, shared.ID)
	require.NoError(t, err)
	_, err = seeder.SeedDir(ctx, root, &bytes.Buffer{})
	require.NoError(t, err)
	after, err := s.Contributions(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReseedAfterMergeKeepsOneRow(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "Univ X", "Professor", "Jane Doe", "jane_undisambiguation_article.csv",
		"Jane Doe,k1,A Paper,2020,<journal>x,TKDE,1,1",
	)
	s := testStore(t)
	seeder := NewSeeder(s, zerolog.Nop())
	ctx := context.Background()
	_, err := seeder.SeedDir(ctx, root, &bytes.Buffer{})
	require.NoError(t, err)

	p, err := s.PaperByTitle(ctx, "A Paper")
	require.NoError(t, err)
	cands, err := s.Candidates(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, cands, 1)

	// Repoint the row to a second identity, as a merge would.
	attrs := types.Attributes{Email: "jane@x.edu"}
	require.NoError(t, s.WithTx(ctx, func(w store.Writer) error {
		aid, err := w.InsertIdentity(ctx, cands[0].ResearcherID, attrs, false)
		if err != nil {
			return err
		}
		return w.UpdateContribution(ctx, cands[0].AuthorID, p.ID, types.Contribution{
			AuthorID: aid, PaperID: p.ID, Role: types.RoleFirstAuthor, Attributes: attrs,
		})
	}))

	_, err = seeder.SeedDir(ctx, root, &bytes.Buffer{})
	require.NoError(t, err)
	cs, err := s.Contributions(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, attrs, cs[0].Attributes)
}
