// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model and configuration shared by the
// scholar-linker stages.
package types

// Role is an author's contribution on a paper.
type Role string

const (
	RoleFirstAuthor         Role = "FIRST_AUTHOR"
	RoleCorrespondingAuthor Role = "CORRESPONDING_AUTHOR"

	// RolePaperAuthor is the generic placeholder role. Any other role is
	// considered specific and is never replaced by this one.
	RolePaperAuthor Role = "PAPER_AUTHOR"
)

// IsGeneric reports whether r is the placeholder role (or unset).
func (r Role) IsGeneric() bool {
	return r == RolePaperAuthor || r == ""
}

// VenueKind classifies a publication outlet.
type VenueKind string

const (
	VenueJournal    VenueKind = "journal"
	VenueConference VenueKind = "conference"
)

// Researcher is a real-world person seeded from a roster.
type Researcher struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Title       string `json:"title" yaml:"title"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
}

// Attributes is the contact/affiliation tuple that distinguishes one
// AuthorIdentity of a researcher from another.
type Attributes struct {
	Email      string `json:"email" yaml:"email"`
	University string `json:"university" yaml:"university"`
	College    string `json:"college" yaml:"college"`
	Lab        string `json:"lab" yaml:"lab"`
}

// IsEmpty reports whether no attribute has been observed yet.
func (a Attributes) IsEmpty() bool {
	return a == Attributes{}
}

// AuthorIdentity is one byline variant of a Researcher.
type AuthorIdentity struct {
	ID                  int64      `json:"id" yaml:"id"`
	ResearcherID        int64      `json:"rid" yaml:"rid"`
	Attributes          Attributes `json:"attributes" yaml:"attributes"`
	NeedsDisambiguation bool       `json:"needs_disambiguation" yaml:"needs_disambiguation"`
}

// Paper is a publication. Titles are unique.
type Paper struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Venue       string `json:"venue" yaml:"venue"`
	Year        string `json:"year" yaml:"year"`
	AuthorCount int    `json:"author_count" yaml:"author_count"`
}

// Venue is a publication outlet. Names are unique.
type Venue struct {
	Name string    `json:"name" yaml:"name"`
	Kind VenueKind `json:"kind" yaml:"kind"`
}

// Contribution links an AuthorIdentity to a Paper.
type Contribution struct {
	AuthorID            int64      `json:"aid" yaml:"aid"`
	PaperID             int64      `json:"pid" yaml:"pid"`
	Role                Role       `json:"contribution" yaml:"contribution"`
	Attributes          Attributes `json:"attributes" yaml:"attributes"`
	NeedsDisambiguation bool       `json:"needs_disambiguation" yaml:"needs_disambiguation"`
}

// ObservedAuthor is one byline entry read from a fetched page. It lives
// for a single merge pass.
type ObservedAuthor struct {
	AbbrName    string
	FullName    string
	Affiliation string
	Attributes  Attributes
	Role        Role
	Match       Match
}

// Candidate is an identity already linked to a paper, with the owning
// researcher's name. Identity resolution compares bylines against these.
type Candidate struct {
	AuthorID       int64
	ResearcherID   int64
	ResearcherName string
	Role           Role
}

// Achievement is one contribution of a researcher, joined with its paper
// and venue.
type Achievement struct {
	PaperID    int64     `json:"paper_id" yaml:"paper_id"`
	PaperTitle string    `json:"paper_title" yaml:"paper_title"`
	Role       Role      `json:"contribution" yaml:"contribution"`
	Venue      string    `json:"venue" yaml:"venue"`
	VenueKind  VenueKind `json:"venue_kind" yaml:"venue_kind"`
	Year       string    `json:"year" yaml:"year"`
}
