// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by fetchers that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-linker/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	// Path is the database file. ":memory:" is accepted for tests.
	Path string `json:"path" yaml:"path"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is auto, json, or console. Auto picks console on a terminal.
	Format string `json:"format" yaml:"format"`

	// Output is stderr, stdout, or a file path.
	Output string `json:"output" yaml:"output"`
}

// UpdateConfig holds settings for one update run.
type UpdateConfig struct {
	// Source selects the adapter: wos, acm, or ieee.
	Source string `json:"source" yaml:"source"`

	// BatchSize is the number of pending papers loaded per batch (default 150).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Workers bounds the number of records processed concurrently (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// FetchConfig selects how raw payloads are obtained.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// InboxDir holds pre-fetched payloads as <source>/<paper id>.<ext>.
	// Used when URLTemplate is empty.
	InboxDir string `json:"inbox_dir" yaml:"inbox_dir"`

	// URLTemplate is a request URL with {title}, {id}, and {apikey}
	// placeholders. When set, payloads are fetched over HTTP.
	URLTemplate string `json:"url_template,omitempty" yaml:"url_template,omitempty"`

	// APIKey is substituted for {apikey}.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestsPerSecond limits outbound requests (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LinkerConfig groups all settings for the CLI.
type LinkerConfig struct {
	Store  StoreConfig  `json:"store" yaml:"store"`
	Log    LogConfig    `json:"log" yaml:"log"`
	Update UpdateConfig `json:"update" yaml:"update"`
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
}
