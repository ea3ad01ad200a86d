// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report lists a researcher's contributions across all of their
// author identities.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-linker/pkg/types"
)

// Source is the read surface a report needs. *store.Store satisfies it.
type Source interface {
	Researcher(ctx context.Context, id int64) (types.Researcher, error)
	Identities(ctx context.Context, rid int64) ([]types.AuthorIdentity, error)
	Achievements(ctx context.Context, rid int64) ([]types.Achievement, error)
}

// Report is the exported view of one researcher.
type Report struct {
	Researcher   types.Researcher       `json:"researcher" yaml:"researcher"`
	Identities   []types.AuthorIdentity `json:"identities" yaml:"identities"`
	Achievements []types.Achievement    `json:"achievements" yaml:"achievements"`
	Roles        map[types.Role]int     `json:"roles" yaml:"roles"`
}

// Build loads the report for researcher rid.
func Build(ctx context.Context, src Source, rid int64) (Report, error) {
	r, err := src.Researcher(ctx, rid)
	if err != nil {
		return Report{}, err
	}
	ids, err := src.Identities(ctx, rid)
	if err != nil {
		return Report{}, fmt.Errorf("loading identities: %w", err)
	}
	achievements, err := src.Achievements(ctx, rid)
	if err != nil {
		return Report{}, fmt.Errorf("loading achievements: %w", err)
	}

	roles := make(map[types.Role]int)
	for _, a := range achievements {
		roles[a.Role]++
	}
	return Report{Researcher: r, Identities: ids, Achievements: achievements, Roles: roles}, nil
}

// Formats accepted by Write.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

// Write renders rep to w as a table, YAML, or JSON.
func Write(w io.Writer, rep Report, format string) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return writeTable(w, rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown report format %q (want table, yaml, or json)", format)
}

func writeTable(w io.Writer, rep Report) error {
	r := rep.Researcher
	fmt.Fprintf(w, "%s (%d)", r.Name, r.ID)
	if r.Title != "" || r.Affiliation != "" {
		fmt.Fprintf(w, ", %s", strings.Trim(r.Title+", "+r.Affiliation, ", "))
	}
	fmt.Fprintf(w, "\n%d identities, %d contributions\n\n", len(rep.Identities), len(rep.Achievements))

	table := tablewriter.NewTable(w)
	table.Header("Year", "Title", "Role", "Venue", "Kind", "Paper")
	for _, a := range rep.Achievements {
		if err := table.Append(a.Year, a.PaperTitle, string(a.Role), a.Venue, string(a.VenueKind), strconv.FormatInt(a.PaperID, 10)); err != nil {
			return fmt.Errorf("rendering row: %w", err)
		}
	}
	return table.Render()
}
