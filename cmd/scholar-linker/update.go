// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-linker/internal/fetch"
	"github.com/pdiddy/scholar-linker/internal/merge"
	"github.com/pdiddy/scholar-linker/internal/pipeline"
	"github.com/pdiddy/scholar-linker/internal/source"
	"github.com/pdiddy/scholar-linker/internal/store"
	"github.com/pdiddy/scholar-linker/pkg/types"
)

func newUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge author details from a source into pending papers",
		Long: `Update pages through papers that still have an author identity with no
observed contact details. For each paper it fetches the source record,
checks that the titles agree, matches the byline against the seeded
authors, and merges emails, affiliations, and roles into the store.

Payloads are read from <inbox>/<source>/<paper id>.<ext> unless a URL
template is configured, in which case they are requested over HTTP.
Skipped papers stay pending and are retried on the next run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpdate()
		},
	}

	f := cmd.Flags()
	f.String("source", "", "source adapter: wos, acm, or ieee (default wos)")
	f.Int("batch-size", 0, "pending papers loaded per batch (default 150)")
	f.Int("workers", 0, "papers processed concurrently (default 4)")
	f.String("inbox", "", "directory of pre-fetched payloads (default inbox)")
	f.String("url-template", "", "fetch over HTTP; placeholders {title}, {id}, {source}, {apikey}")
	f.Float64("rps", 0, "HTTP requests per second (default 1)")
	f.Int("max-retries", 0, "retries on HTTP 429/503 (default 5)")

	_ = a.v.BindPFlag("update.source", f.Lookup("source"))
	_ = a.v.BindPFlag("update.batch_size", f.Lookup("batch-size"))
	_ = a.v.BindPFlag("update.workers", f.Lookup("workers"))
	_ = a.v.BindPFlag("fetch.inbox_dir", f.Lookup("inbox"))
	_ = a.v.BindPFlag("fetch.url_template", f.Lookup("url-template"))
	_ = a.v.BindPFlag("fetch.requests_per_second", f.Lookup("rps"))
	_ = a.v.BindPFlag("fetch.max_retries", f.Lookup("max-retries"))
	return cmd
}

func (a *app) runUpdate() error {
	cfg := a.config()

	sources := source.Default()
	adapter, err := sources.Get(cfg.Update.Source)
	if err != nil {
		return err
	}

	fetcher, err := a.newFetcher(cfg.Fetch, adapter.Name())
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := pipeline.NewRunner(sources, merge.NewEngine(st, a.log), cfg.Update.Workers, a.log)
	total, err := a.updatePending(ctx, st, runner, adapter, fetcher, cfg.Update.BatchSize)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nUpdate summary: %d merged, %d skipped, %d failed; authors: %d merged, %d created, %d unchanged, %d unresolved\n",
		total.Merged, total.Skipped, total.Failed,
		total.Authors.Merged, total.Authors.Created, total.Authors.Unchanged, total.Authors.Unresolved)
	if total.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed to merge", total.Failed)
	}
	return ctx.Err()
}

// updatePending runs batches of pending papers until none remain past the
// last id seen or ctx is cancelled.
func (a *app) updatePending(ctx context.Context, st *store.Store, runner *pipeline.Runner, adapter source.Adapter, fetcher fetch.Fetcher, batchSize int) (pipeline.BatchResult, error) {
	var (
		total pipeline.BatchResult
		after int64
	)
	for ctx.Err() == nil {
		papers, err := st.PendingPapers(ctx, store.PendingOptions{
			JournalsOnly: adapter.JournalsOnly(),
			AfterID:      after,
			Limit:        batchSize,
		})
		if err != nil {
			return total, err
		}
		if len(papers) == 0 {
			break
		}
		a.log.Info().Int("papers", len(papers)).Int64("after_id", after).Str("source", adapter.Name()).Msg("batch started")

		res := runner.RunPapers(ctx, adapter, fetcher, papers, os.Stdout)
		total.Merged += res.Merged
		total.Skipped += res.Skipped
		total.Failed += res.Failed
		total.Authors.Add(res.Authors)
		after = papers[len(papers)-1].ID
	}
	return total, nil
}

func (a *app) newFetcher(cfg types.FetchConfig, sourceName string) (fetch.Fetcher, error) {
	if cfg.URLTemplate == "" {
		a.log.Debug().Str("inbox", cfg.InboxDir).Msg("reading payloads from inbox")
		return fetch.DirFetcher{Root: cfg.InboxDir}, nil
	}
	if cfg.APIKey == "" {
		cfg.APIKey = a.secrets.APIKey(sourceName)
	}
	f, err := fetch.NewHTTPFetcher(cfg, a.log)
	if err != nil {
		return nil, err
	}
	return f, nil
}
