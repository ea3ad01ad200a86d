// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Failure taxonomy for a merge pass. Only ErrStoreFault fails a paper;
// the others are skips or degraded parses.
var (
	// ErrNoMatch means the fetched title does not correspond to the sought paper.
	ErrNoMatch = errors.New("title mismatch")

	// ErrUnresolvedAuthor means a byline could not be tied to a tracked researcher.
	ErrUnresolvedAuthor = errors.New("unresolved author")

	// ErrStoreFault means the store was unreachable or a write failed.
	ErrStoreFault = errors.New("store fault")

	// ErrMalformedSource means source fields violated the expected grammar.
	ErrMalformedSource = errors.New("malformed source")

	// ErrNoRecord means the fetch collaborator returned nothing for a paper.
	ErrNoRecord = errors.New("no record available")

	// ErrUnknownSource means no adapter is registered under the given name.
	ErrUnknownSource = errors.New("unknown source")
)

// StoreFaultError wraps a failed store operation.
type StoreFaultError struct {
	Op  string
	Err error
}

func (e *StoreFaultError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreFaultError) Unwrap() error { return e.Err }

// Is matches ErrStoreFault.
func (e *StoreFaultError) Is(target error) bool {
	return target == ErrStoreFault
}

// StoreFault wraps err as a StoreFaultError, or returns nil for a nil err.
func StoreFault(op string, err error) error {
	if err == nil {
		return nil
	}
	var sf *StoreFaultError
	if errors.As(err, &sf) {
		return err
	}
	return &StoreFaultError{Op: op, Err: err}
}

// MalformedSourceError describes a field that could only be parsed
// partially. It is reported, never fatal.
type MalformedSourceError struct {
	Source string
	Field  string
	Reason string
}

func (e *MalformedSourceError) Error() string {
	return fmt.Sprintf("%s: malformed %s: %s", e.Source, e.Field, e.Reason)
}

// Is matches ErrMalformedSource.
func (e *MalformedSourceError) Is(target error) bool {
	return target == ErrMalformedSource
}

// TitleMismatchError reports the expected and received titles.
type TitleMismatchError struct {
	Expected string
	Got      string
}

func (e *TitleMismatchError) Error() string {
	return fmt.Sprintf("expected %q, got %q", e.Expected, e.Got)
}

// Is matches ErrNoMatch.
func (e *TitleMismatchError) Is(target error) bool {
	return target == ErrNoMatch
}
