// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/scholar-linker/internal/address"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

// WoS reads Web of Science tab-delimited exports. The header row may use
// the spreadsheet column names or the two-letter field tags; the first
// data row is the record.
type WoS struct{}

func (WoS) Name() string       { return "wos" }
func (WoS) Ext() string        { return "tsv" }
func (WoS) JournalsOnly() bool { return true }

// wosColumns maps each field to its accepted header spellings.
var wosColumns = map[string][]string{
	"title":     {"Article Title", "TI"},
	"authors":   {"Authors", "AU"},
	"full":      {"Author Full Names", "AF"},
	"addresses": {"Addresses", "C1"},
	"emails":    {"Email Addresses", "EM"},
	"reprint":   {"Reprint Addresses", "RP"},
}

func (w WoS) Normalize(payload []byte) (Page, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(payload, []byte("\ufeff"))))
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return Page{}, w.malformed("header", err)
	}
	row, err := r.Read()
	if err != nil {
		return Page{}, w.malformed("record", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	field := func(name string) string {
		for _, col := range wosColumns[name] {
			if i, ok := index[col]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	page := Page{Title: field("title")}
	if page.Title == "" {
		return Page{}, &types.MalformedSourceError{Source: w.Name(), Field: "title", Reason: "empty"}
	}

	addrs, ok := address.ParseBlock(field("addresses"))
	if !ok {
		page.degrade(w.Name(), "addresses", "address block does not follow [names] organization grammar")
	}
	page.Authors = address.Assemble(address.Byline{
		AbbrNames:     address.SplitNames(field("authors")),
		FullNames:     address.SplitNames(field("full")),
		Addresses:     addrs,
		Emails:        address.SplitEmails(field("emails")),
		Corresponding: address.CorrespondingAuthor(field("reprint")),
	})
	return page, nil
}

func (w WoS) malformed(what string, err error) error {
	reason := err.Error()
	if errors.Is(err, io.EOF) {
		reason = "missing"
	}
	return fmt.Errorf("reading export: %w", &types.MalformedSourceError{Source: w.Name(), Field: what, Reason: reason})
}
