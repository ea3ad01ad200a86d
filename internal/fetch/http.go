// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/scholar-linker/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRate      = 1.0
	defaultUserAgent = "scholar-linker/0.1"
	maxPayloadBytes  = 32 << 20
)

// HTTPFetcher GETs a URL built from a template. Requests from all
// goroutines share one rate limiter.
type HTTPFetcher struct {
	client     *http.Client
	template   string
	apiKey     string
	userAgent  string
	maxRetries int
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewHTTPFetcher validates cfg.URLTemplate and returns a fetcher for it.
func NewHTTPFetcher(cfg types.FetchConfig, log zerolog.Logger) (*HTTPFetcher, error) {
	if !strings.Contains(cfg.URLTemplate, "{title}") && !strings.Contains(cfg.URLTemplate, "{id}") {
		return nil, fmt.Errorf("url template %q needs a {title} or {id} placeholder", cfg.URLTemplate)
	}
	if strings.Contains(cfg.URLTemplate, "{apikey}") && cfg.APIKey == "" {
		return nil, fmt.Errorf("url template uses {apikey} but no API key is configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRate
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &HTTPFetcher{
		client:     &http.Client{Timeout: timeout},
		template:   cfg.URLTemplate,
		apiKey:     cfg.APIKey,
		userAgent:  ua,
		maxRetries: cfg.MaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		log:        log,
	}, nil
}

// URL expands the template for paper.
func (f *HTTPFetcher) URL(src Source, paper types.Paper) string {
	return strings.NewReplacer(
		"{title}", url.QueryEscape(paper.Title),
		"{id}", strconv.FormatInt(paper.ID, 10),
		"{source}", src.Name(),
		"{apikey}", url.QueryEscape(f.apiKey),
	).Replace(f.template)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src Source, paper types.Paper) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(src, paper), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %v: %w", err, types.ErrNoRecord)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := DoWithRetry(ctx, f.client, req, f.maxRetries, f.log)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s request for paper %d: %v: %w", src.Name(), paper.ID, err, types.ErrNoRecord)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%s returned HTTP %d for paper %d: %w", src.Name(), resp.StatusCode, paper.ID, types.ErrNoRecord)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %v: %w", src.Name(), err, types.ErrNoRecord)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%s returned an empty body for paper %d: %w", src.Name(), paper.ID, types.ErrNoRecord)
	}
	f.log.Debug().Str("source", src.Name()).Int64("paper_id", paper.ID).Int("bytes", len(body)).Msg("payload fetched")
	return body, nil
}
