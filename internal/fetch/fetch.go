// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves publisher payloads for pending papers. Every
// failure is reported as types.ErrNoRecord so the caller skips the paper
// and picks it up again on the next run.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/scholar-linker/pkg/types"
)

// Source identifies the payload format being fetched. source.Adapter
// satisfies it.
type Source interface {
	Name() string
	Ext() string
}

// Fetcher returns the raw payload of one paper from one source.
type Fetcher interface {
	Fetch(ctx context.Context, src Source, paper types.Paper) ([]byte, error)
}

// DirFetcher reads payloads saved under Root as
// <Root>/<source>/<paper id>.<ext>.
type DirFetcher struct {
	Root string
}

// Path returns the file DirFetcher reads for paper.
func (f DirFetcher) Path(src Source, paper types.Paper) string {
	return filepath.Join(f.Root, src.Name(), strconv.FormatInt(paper.ID, 10)+"."+src.Ext())
}

func (f DirFetcher) Fetch(ctx context.Context, src Source, paper types.Paper) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.Path(src, paper)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, types.ErrNoRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v: %w", path, err, types.ErrNoRecord)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", path, types.ErrNoRecord)
	}
	return data, nil
}
