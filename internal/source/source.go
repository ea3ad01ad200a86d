// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source turns publisher payloads into a title and a list of
// observed authors. Each publisher format is one Adapter.
package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/scholar-linker/pkg/types"
)

// Adapter normalizes one publisher's payload format. Adapters are
// stateless and safe for concurrent use.
type Adapter interface {
	// Name is the identifier used on the command line and in the inbox layout.
	Name() string

	// Ext is the file extension of saved payloads, without the dot.
	Ext() string

	// JournalsOnly reports whether the source covers journal papers only,
	// so pending papers from other venues are never fetched from it.
	JournalsOnly() bool

	// Normalize parses payload. It fails only when no title can be
	// recovered; partially readable author fields are reported in
	// Page.Degraded and default to empty.
	Normalize(payload []byte) (Page, error)
}

// Page is a normalized payload.
type Page struct {
	Title   string
	Authors []types.ObservedAuthor

	// Degraded lists fields that did not follow the expected grammar.
	Degraded []*types.MalformedSourceError
}

func (p *Page) degrade(source, field, reason string) {
	p.Degraded = append(p.Degraded, &types.MalformedSourceError{Source: source, Field: field, Reason: reason})
}

// Registry maps source names to adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry returns a registry holding adapters. A later adapter with a
// duplicate name replaces the earlier one.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// Default returns a registry with every built-in adapter.
func Default() *Registry {
	return NewRegistry(WoS{}, ACM{}, IEEE{})
}

// Get returns the adapter registered as name.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", types.ErrUnknownSource, name, strings.Join(r.Names(), ", "))
	}
	return a, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
