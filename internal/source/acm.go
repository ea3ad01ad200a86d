// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/scholar-linker/internal/address"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

// ACM reads ACM Digital Library article pages. The page names no
// corresponding author, so every byline is PAPER_AUTHOR.
type ACM struct{}

func (ACM) Name() string       { return "acm" }
func (ACM) Ext() string        { return "html" }
func (ACM) JournalsOnly() bool { return false }

func (a ACM) Normalize(payload []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return Page{}, fmt.Errorf("parsing article page: %w",
			&types.MalformedSourceError{Source: a.Name(), Field: "html", Reason: err.Error()})
	}

	page := Page{Title: collapse(doc.Find("h1.citation__title").First().Text())}
	if page.Title == "" {
		return Page{}, &types.MalformedSourceError{Source: a.Name(), Field: "title", Reason: "no citation__title heading"}
	}

	var b address.Byline
	seen := make(map[string]bool)
	doc.Find("li.loa__item").Each(func(_ int, item *goquery.Selection) {
		name := collapse(item.Find(".loa__author-name").First().Text())
		if name == "" {
			page.degrade(a.Name(), "authors", "author entry without a name")
			return
		}
		// The author list is rendered twice on most pages.
		if seen[name] {
			return
		}
		seen[name] = true

		email := ""
		if href, ok := item.Find(`a[href^="mailto:"]`).First().Attr("href"); ok {
			email = strings.TrimSpace(strings.TrimPrefix(href, "mailto:"))
		}
		b.FullNames = append(b.FullNames, name)
		b.AbbrNames = append(b.AbbrNames, address.Abbreviate(name))
		b.Emails = append(b.Emails, email)
		if org := collapse(item.Find(".loa_author_inst p").First().Text()); org != "" {
			b.Addresses = append(b.Addresses, address.NamedAddress{Name: name, Organization: org})
		}
	})
	page.Authors = address.Assemble(b)
	return page, nil
}

// collapse trims s and folds internal whitespace runs to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
