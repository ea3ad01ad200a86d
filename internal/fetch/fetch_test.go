// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-linker/pkg/types"
)

func init() {
	RetryBaseDelay = 1 * time.Millisecond
}

type fakeSource struct{ name, ext string }

func (s fakeSource) Name() string { return s.name }
func (s fakeSource) Ext() string  { return s.ext }

var (
	wos   = fakeSource{"wos", "tsv"}
	paper = types.Paper{ID: 42, Title: "Record Linkage & Merge"}
)

// --- DirFetcher ---

func TestDirFetcher(t *testing.T) {
	root := t.TempDir()
	f := DirFetcher{Root: root}
	path := f.Path(wos, paper)
	assert.Equal(t, filepath.Join(root, "wos", "42.tsv"), path)

	_, err := f.Fetch(context.Background(), wos, paper)
	assert.ErrorIs(t, err, types.ErrNoRecord)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err = f.Fetch(context.Background(), wos, paper)
	assert.ErrorIs(t, err, types.ErrNoRecord, "empty file")

	require.NoError(t, os.WriteFile(path, []byte("TI\nA title\n"), 0o644))
	data, err := f.Fetch(context.Background(), wos, paper)
	require.NoError(t, err)
	assert.Equal(t, "TI\nA title\n", string(data))
}

// --- HTTPFetcher ---

func newTestFetcher(t *testing.T, template string) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(types.FetchConfig{
		URLTemplate:       template,
		APIKey:            "k 1",
		RequestsPerSecond: 1000,
		MaxRetries:        2,
	}, zerolog.Nop())
	require.NoError(t, err)
	return f
}

func TestNewHTTPFetcherValidatesTemplate(t *testing.T) {
	_, err := NewHTTPFetcher(types.FetchConfig{URLTemplate: "https://example.org/search"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewHTTPFetcher(types.FetchConfig{URLTemplate: "https://example.org/?q={title}&key={apikey}"}, zerolog.Nop())
	assert.Error(t, err, "api key placeholder without a key")
}

func TestHTTPFetcherURL(t *testing.T) {
	f := newTestFetcher(t, "https://example.org/{source}?q={title}&id={id}&key={apikey}")
	assert.Equal(t, "https://example.org/wos?q=Record+Linkage+%26+Merge&id=42&key=k+1", f.URL(wos, paper))
}

func TestHTTPFetcherFetch(t *testing.T) {
	var gotQuery, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"title":"x"}`))
	}))
	defer ts.Close()

	f := newTestFetcher(t, ts.URL+"/?q={title}")
	data, err := f.Fetch(context.Background(), wos, paper)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, string(data))
	assert.Equal(t, paper.Title, gotQuery)
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestHTTPFetcherNotFoundIsNoRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	_, err := newTestFetcher(t, ts.URL+"/{id}").Fetch(context.Background(), wos, paper)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoRecord)
}

func TestHTTPFetcherEmptyBodyIsNoRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	_, err := newTestFetcher(t, ts.URL+"/{id}").Fetch(context.Background(), wos, paper)
	assert.ErrorIs(t, err, types.ErrNoRecord)
}

func TestHTTPFetcherCancelledContext(t *testing.T) {
	f := newTestFetcher(t, "http://127.0.0.1:1/{id}")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, wos, paper)
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrNoRecord)
}

// --- DoWithRetry ---

func TestDoWithRetry_RetriesThen200(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		switch n {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), ts.Client(), req, 5, zerolog.Nop())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_ExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), ts.Client(), req, 2, zerolog.Nop())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "initial attempt plus two retries")
}

func TestDoWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	old := RetryBaseDelay
	RetryBaseDelay = time.Hour
	defer func() { RetryBaseDelay = old }()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(ctx, ts.Client(), req, 3, zerolog.Nop())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
