// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/pdiddy/scholar-linker/internal/address"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

// IEEE reads IEEE Xplore document metadata: either the bare JSON object or
// a document page that assigns it to xplGlobal.document.metadata.
type IEEE struct{}

func (IEEE) Name() string       { return "ieee" }
func (IEEE) Ext() string        { return "json" }
func (IEEE) JournalsOnly() bool { return false }

// ieeeMetadata matches the inline assignment on a document page.
var ieeeMetadata = regexp.MustCompile(`xplGlobal\.document\.metadata\s*=\s*(\{.*\});`)

type ieeeDocument struct {
	Title   string `json:"title"`
	Authors []struct {
		Name        string   `json:"name"`
		Affiliation []string `json:"affiliation"`
	} `json:"authors"`
}

func (i IEEE) Normalize(payload []byte) (Page, error) {
	raw := bytes.TrimSpace(payload)
	if !bytes.HasPrefix(raw, []byte("{")) {
		m := ieeeMetadata.FindSubmatch(raw)
		if m == nil {
			return Page{}, &types.MalformedSourceError{Source: i.Name(), Field: "metadata", Reason: "no xplGlobal.document.metadata assignment"}
		}
		raw = m[1]
	}

	var doc ieeeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Page{}, fmt.Errorf("decoding document metadata: %w",
			&types.MalformedSourceError{Source: i.Name(), Field: "metadata", Reason: err.Error()})
	}

	page := Page{Title: collapse(doc.Title)}
	if page.Title == "" {
		return Page{}, &types.MalformedSourceError{Source: i.Name(), Field: "title", Reason: "empty"}
	}

	var b address.Byline
	for _, au := range doc.Authors {
		name := address.CleanName(au.Name)
		if name == "" {
			page.degrade(i.Name(), "authors", "author entry without a name")
			continue
		}
		b.FullNames = append(b.FullNames, name)
		b.AbbrNames = append(b.AbbrNames, address.Abbreviate(name))
		if len(au.Affiliation) > 0 {
			b.Addresses = append(b.Addresses, address.NamedAddress{Name: name, Organization: collapse(au.Affiliation[0])})
		}
	}
	page.Authors = address.Assemble(b)
	return page, nil
}
