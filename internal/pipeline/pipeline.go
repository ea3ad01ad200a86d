// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs fetched records through normalization, the title
// gate, identity matching and merge. One paper's failure never stops a
// batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-linker/internal/fetch"
	"github.com/pdiddy/scholar-linker/internal/merge"
	"github.com/pdiddy/scholar-linker/internal/source"
	"github.com/pdiddy/scholar-linker/internal/title"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

// Record is one fetched payload for one paper.
type Record struct {
	Source        string
	PaperID       int64
	ExpectedTitle string
	Payload       []byte
}

// Merger applies observed authors to a paper. *merge.Engine satisfies it.
type Merger interface {
	MergePaper(ctx context.Context, pid int64, authors []types.ObservedAuthor) (merge.Result, error)
}

// BatchResult counts record outcomes across a run.
type BatchResult struct {
	Merged  int // records that reached the merge engine
	Skipped int // no record, title mismatch, unreadable payload
	Failed  int // store faults
	Authors merge.Result
}

// Total returns the number of records seen.
func (b BatchResult) Total() int { return b.Merged + b.Skipped + b.Failed }

const defaultWorkers = 4

// Runner processes records with a bounded number of workers.
type Runner struct {
	sources *source.Registry
	merger  Merger
	workers int
	log     zerolog.Logger
}

// NewRunner returns a Runner. workers <= 0 means 4.
func NewRunner(sources *source.Registry, merger Merger, workers int, log zerolog.Logger) *Runner {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Runner{sources: sources, merger: merger, workers: workers, log: log}
}

// Process runs one record synchronously. Title mismatches wrap
// types.ErrNoMatch; unreadable payloads wrap types.ErrMalformedSource.
func (r *Runner) Process(ctx context.Context, rec Record) (merge.Result, error) {
	adapter, err := r.sources.Get(rec.Source)
	if err != nil {
		return merge.Result{}, err
	}

	page, err := adapter.Normalize(rec.Payload)
	if err != nil {
		return merge.Result{}, err
	}
	for _, d := range page.Degraded {
		r.log.Warn().Err(d).Int64("paper_id", rec.PaperID).Msg("degraded parse")
	}

	if !title.Matches(rec.ExpectedTitle, page.Title) {
		return merge.Result{}, &types.TitleMismatchError{Expected: rec.ExpectedTitle, Got: page.Title}
	}

	return r.merger.MergePaper(ctx, rec.PaperID, page.Authors)
}

// Run processes every record from records until the channel closes or ctx
// is done, printing one status line per record to w and a summary at the
// end.
func (r *Runner) Run(ctx context.Context, records <-chan Record, w io.Writer) BatchResult {
	jobs := make(chan job)
	go feed(ctx, records, jobs)
	return r.run(ctx, jobs, w)
}

// RunPapers fetches each paper from src inside the workers and runs the
// resulting records. A fetch failure is reported as a skip.
func (r *Runner) RunPapers(ctx context.Context, src source.Adapter, fetcher fetch.Fetcher, papers []types.Paper, w io.Writer) BatchResult {
	jobs := make(chan job)
	go func() {
		defer close(jobs)
		for _, p := range papers {
			j := job{
				rec:   Record{Source: src.Name(), PaperID: p.ID, ExpectedTitle: p.Title},
				fetch: func(ctx context.Context) ([]byte, error) { return fetcher.Fetch(ctx, src, p) },
			}
			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
		}
	}()
	return r.run(ctx, jobs, w)
}

// feed forwards records to jobs and closes jobs when records closes or ctx
// is done.
func feed(ctx context.Context, records <-chan Record, jobs chan<- job) {
	defer close(jobs)
	for {
		var rec Record
		select {
		case r, ok := <-records:
			if !ok {
				return
			}
			rec = r
		case <-ctx.Done():
			return
		}
		select {
		case jobs <- job{rec: rec}:
		case <-ctx.Done():
			return
		}
	}
}

// job is a record whose payload may still need fetching.
type job struct {
	rec   Record
	fetch func(context.Context) ([]byte, error)
}

func (r *Runner) run(ctx context.Context, jobs <-chan job, w io.Writer) BatchResult {
	var (
		mu     sync.Mutex
		result BatchResult
		wg     sync.WaitGroup
	)

	report := func(rec Record, res merge.Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Authors.Add(res)
		switch {
		case err == nil:
			result.Merged++
			fmt.Fprintf(w, "merged:  paper %d (%d updated, %d new identities, %d unresolved)\n",
				rec.PaperID, res.Merged, res.Created, res.Unresolved)
			r.log.Info().Int64("paper_id", rec.PaperID).Str("source", rec.Source).
				Int("merged", res.Merged).Int("created", res.Created).Msg("paper merged")
		case skippable(err):
			result.Skipped++
			fmt.Fprintf(w, "skipped: paper %d (%v)\n", rec.PaperID, err)
			r.log.Warn().Err(err).Int64("paper_id", rec.PaperID).Str("source", rec.Source).Msg("paper skipped")
		default:
			result.Failed++
			fmt.Fprintf(w, "failed:  paper %d (%v)\n", rec.PaperID, err)
			r.log.Error().Err(err).Int64("paper_id", rec.PaperID).Str("source", rec.Source).Msg("paper failed")
		}
	}

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					if j.fetch != nil {
						payload, err := j.fetch(ctx)
						if err != nil {
							if ctx.Err() != nil {
								return
							}
							report(j.rec, merge.Result{}, err)
							continue
						}
						j.rec.Payload = payload
					}
					res, err := r.Process(ctx, j.rec)
					report(j.rec, res, err)
				}
			}
		}()
	}
	wg.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d merged, %d skipped, %d failed (total: %d)\n",
		result.Merged, result.Skipped, result.Failed, result.Total())
	return result
}

// skippable reports errors that skip a record rather than fail it.
func skippable(err error) bool {
	return errors.Is(err, types.ErrNoMatch) ||
		errors.Is(err, types.ErrNoRecord) ||
		errors.Is(err, types.ErrMalformedSource) ||
		errors.Is(err, types.ErrUnknownSource)
}
