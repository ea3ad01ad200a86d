// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package roster seeds researchers and their publication lists from a
// directory tree of per-researcher CSV exports:
//
//	<root>/<university>/<title>/<researcher>/*_disambiguation_article.csv
//	<root>/<university>/<title>/<researcher>/*_undisambiguation_article.csv
//
// The first pattern marks researchers whose name collides with others.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-linker/internal/store"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

const (
	flaggedPattern   = "*_disambiguation_article.csv"
	unflaggedPattern = "*_undisambiguation_article.csv"
)

// CSV column layout of an article export.
const (
	colAuthor = iota
	_
	colTitle
	colYear
	colKind
	colVenue
	colAuthorCount
	colFirstAuthor
	numColumns
)

// Entry is one researcher directory with its article export.
type Entry struct {
	University          string
	Title               string
	Researcher          string
	Path                string
	NeedsDisambiguation bool
}

// Discover walks root and returns one Entry per researcher directory that
// holds an export, plus the directories that hold none. A flagged export
// wins when both exist.
func Discover(root string) ([]Entry, []string, error) {
	var (
		entries []Entry
		missing []string
	)
	universities, err := subdirs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("reading roster root: %w", err)
	}
	for _, uni := range universities {
		titles, err := subdirs(filepath.Join(root, uni))
		if err != nil {
			return nil, nil, err
		}
		for _, title := range titles {
			people, err := subdirs(filepath.Join(root, uni, title))
			if err != nil {
				return nil, nil, err
			}
			for _, person := range people {
				dir := filepath.Join(root, uni, title, person)
				e := Entry{University: uni, Title: title, Researcher: person}
				if path := firstMatch(dir, flaggedPattern); path != "" {
					e.Path, e.NeedsDisambiguation = path, true
				} else if path := firstMatch(dir, unflaggedPattern); path != "" {
					e.Path = path
				} else {
					missing = append(missing, dir)
					continue
				}
				entries = append(entries, e)
			}
		}
	}
	return entries, missing, nil
}

func subdirs(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, de := range des {
		if de.IsDir() && !strings.HasPrefix(de.Name(), ".") {
			out = append(out, de.Name())
		}
	}
	return out, nil
}

func firstMatch(dir, pattern string) string {
	matches, _ := filepath.Glob(filepath.Join(dir, pattern))
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

// Article is one row of an export.
type Article struct {
	Title       string
	Year        string
	Venue       types.Venue
	AuthorCount int
	FirstAuthor bool
}

// ReadArticles parses an export. The first row is a header. The returned
// name is the researcher name from the author column, or "" when absent.
func ReadArticles(r io.Reader) (string, []Article, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("reading header: %w", err)
	}

	var (
		name     string
		articles []Article
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) < numColumns {
			return "", nil, fmt.Errorf("line %d: %d columns, want %d", line, len(row), numColumns)
		}
		if name == "" {
			name = strings.TrimSpace(row[colAuthor])
		}
		count, err := strconv.Atoi(strings.TrimSpace(row[colAuthorCount]))
		if err != nil {
			return "", nil, fmt.Errorf("line %d: author count %q: %w", line, row[colAuthorCount], err)
		}
		venue := strings.TrimSpace(row[colVenue])
		articles = append(articles, Article{
			Title:       strings.TrimSpace(row[colTitle]),
			Year:        strings.TrimSpace(row[colYear]),
			Venue:       types.Venue{Name: venue, Kind: VenueKind(row[colKind])},
			AuthorCount: count,
			FirstAuthor: truthy(row[colFirstAuthor]),
		})
	}
	return name, articles, nil
}

// VenueKind maps the export's kind column: a "<journal>" prefix is a
// journal, "<crossref>" a conference, anything else is kept verbatim.
func VenueKind(raw string) types.VenueKind {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "<journal>"):
		return types.VenueJournal
	case strings.HasPrefix(raw, "<crossref>"):
		return types.VenueConference
	}
	return types.VenueKind(raw)
}

func truthy(s string) bool {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0
	}
	return strings.EqualFold(s, "yes")
}

// Store is the write surface seeding needs. *store.Store satisfies it.
type Store interface {
	WithTx(ctx context.Context, fn func(store.Writer) error) error
}

// Summary counts a seeding run.
type Summary struct {
	Researchers int
	Articles    int
	Missing     int
	Failed      int
}

// Seeder inserts roster entries. Every insert ignores existing rows, so
// seeding the same tree twice leaves the store unchanged.
type Seeder struct {
	store Store
	log   zerolog.Logger
}

// NewSeeder returns a Seeder writing through st.
func NewSeeder(st Store, log zerolog.Logger) *Seeder {
	return &Seeder{store: st, log: log}
}

// SeedDir discovers and seeds every entry under root, printing one line
// per researcher to w. A failing file is reported and skipped.
func (s *Seeder) SeedDir(ctx context.Context, root string, w io.Writer) (Summary, error) {
	entries, missing, err := Discover(root)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Missing: len(missing)}
	for _, dir := range missing {
		fmt.Fprintf(w, "missing: %s (no article export)\n", dir)
		s.log.Warn().Str("dir", dir).Msg("no article export")
	}
	for _, e := range entries {
		n, err := s.SeedEntry(ctx, e)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			fmt.Fprintf(w, "failed:  %s (%v)\n", e.Researcher, err)
			s.log.Error().Err(err).Str("path", e.Path).Msg("seeding failed")
			sum.Failed++
			continue
		}
		fmt.Fprintf(w, "seeded:  %s (%d articles, disambiguation=%t)\n", e.Researcher, n, e.NeedsDisambiguation)
		sum.Researchers++
		sum.Articles += n
	}
	fmt.Fprintf(w, "\nSeed summary: %d researchers, %d articles, %d missing, %d failed\n",
		sum.Researchers, sum.Articles, sum.Missing, sum.Failed)
	return sum, nil
}

// SeedEntry seeds one export in a single transaction and returns the
// number of articles read.
func (s *Seeder) SeedEntry(ctx context.Context, e Entry) (int, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	name, articles, err := ReadArticles(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", e.Path, err)
	}
	if name == "" {
		name = e.Researcher
	}

	err = s.store.WithTx(ctx, func(tx store.Writer) error {
		rid, err := tx.EnsureResearcher(ctx, types.Researcher{Name: name, Title: e.Title, Affiliation: e.University})
		if err != nil {
			return err
		}
		aid, err := tx.EnsureIdentity(ctx, types.AuthorIdentity{ResearcherID: rid, NeedsDisambiguation: e.NeedsDisambiguation})
		if err != nil {
			return err
		}
		for _, a := range articles {
			if err := tx.EnsureVenue(ctx, a.Venue); err != nil {
				return err
			}
			pid, err := tx.EnsurePaper(ctx, types.Paper{
				Title: a.Title, Venue: a.Venue.Name, Year: a.Year, AuthorCount: a.AuthorCount,
			})
			if err != nil {
				return err
			}
			role := types.RolePaperAuthor
			if a.FirstAuthor {
				role = types.RoleFirstAuthor
			}
			if err := tx.LinkContribution(ctx, types.Contribution{
				AuthorID: aid, PaperID: pid, Role: role, NeedsDisambiguation: e.NeedsDisambiguation,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug().Str("researcher", name).Int("articles", len(articles)).Msg("researcher seeded")
	return len(articles), nil
}
