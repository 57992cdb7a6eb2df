// Copyright 2026 The Filecache Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cfg holds the configuration surface of the content cache: the
// Config struct (bindable from pflag/viper for the CLI, or decodable
// from a bare map[string]any for embedders that already have their own
// proplist-shaped configuration), and validation that mirrors the
// fatal-at-init error taxonomy of the core.
package cfg

import "time"

// ReplacePolicy selects the cache-replacement engine. The zero value
// disables replacement entirely (no eviction, no size ceiling
// enforcement beyond what FilesSizeKiB alone would otherwise imply).
type ReplacePolicy string

const (
	ReplaceNone       ReplacePolicy = ""
	ReplaceLFUDA      ReplacePolicy = "lfuda"
	ReplaceLFUDAGDSF  ReplacePolicy = "lfuda_gdsf"
	ReplaceLRU        ReplacePolicy = "lru"
)

// ReadEntry names one file of an explicit allow-list scan (spec.md
// §4.2 mode (b)). Offset may be negative (from EOF); Length nil means
// "to EOF".
type ReadEntry struct {
	Name   string `mapstructure:"name"`
	Offset *int64 `mapstructure:"offset"`
	Length *int64 `mapstructure:"length"`
}

// RedirectEntry maps a subscription pattern to a redirect-target
// pattern (spec.md §4.8).
type RedirectEntry struct {
	Pattern string `mapstructure:"pattern"`
	Target  string `mapstructure:"target"`
}

// NotifyEntry maps a subscription pattern to a notification target
// endpoint name (spec.md §4.9).
type NotifyEntry struct {
	Pattern string `mapstructure:"pattern"`
	Name    string `mapstructure:"name"`
}

// CacheLifetime is the "cache" config value: either a literal number
// of seconds, or the special value "refresh" meaning
// max(refresh/2, 1). See spec.md §6.
type CacheLifetime struct {
	Seconds     int64 `mapstructure:"seconds"`
	UseRefresh  bool  `mapstructure:"use_refresh"`
}

// Resolve returns the effective cache lifetime given the configured
// refresh interval.
func (c CacheLifetime) Resolve(refresh time.Duration) time.Duration {
	if c.UseRefresh {
		half := refresh / 2
		if half < time.Second {
			half = time.Second
		}
		return half
	}
	return time.Duration(c.Seconds) * time.Second
}

// Config is the full configuration of one content-cache instance,
// corresponding to the table in spec.md §6.
type Config struct {
	// Directory is the root path scanned for content. Required.
	Directory string `mapstructure:"directory"`

	// Prefix is prepended to every endpoint name the core subscribes
	// and dispatches against.
	Prefix string `mapstructure:"prefix"`

	// FilesSizeKiB is the optional global byte ceiling, in KiB. Zero
	// means unlimited.
	FilesSizeKiB int64 `mapstructure:"files_size"`

	// Refresh is the rescan period, 1..4294967 seconds.
	Refresh time.Duration `mapstructure:"refresh"`

	// Cache is the HTTP cache lifetime.
	Cache CacheLifetime `mapstructure:"cache"`

	// Replace selects the eviction policy. ReplaceLFUDA/ReplaceLFUDAGDSF
	// and ReplaceLRU both require FilesSizeKiB > 0 and Refresh > 0.
	Replace ReplacePolicy `mapstructure:"replace"`

	// ReplaceIndex persists the replacement index across restarts.
	ReplaceIndex bool `mapstructure:"replace_index"`

	// ProcessIndex distinguishes sidecar files when multiple instances
	// share a directory.
	ProcessIndex int `mapstructure:"process_index"`

	// Read is the explicit allow-list scan. Empty means "recursively
	// scan Directory".
	Read []ReadEntry `mapstructure:"read"`

	// WriteTruncate and WriteAppend list subscription patterns that get
	// the PUT (truncate) and POST (append) write capability, respectively.
	WriteTruncate []string `mapstructure:"write_truncate"`
	WriteAppend   []string `mapstructure:"write_append"`

	Redirect []RedirectEntry `mapstructure:"redirect"`

	NotifyOne     []NotifyEntry `mapstructure:"notify_one"`
	NotifyAll     []NotifyEntry `mapstructure:"notify_all"`
	NotifyOnStart bool          `mapstructure:"notify_on_start"`

	// HTTPClockSkewMax bounds how far into the future a client's clock
	// may run before If-Modified-Since/If-Unmodified-Since dates are
	// distrusted (spec.md §4.5).
	HTTPClockSkewMax time.Duration `mapstructure:"http_clock_skew_max"`

	UseContentTypes       bool `mapstructure:"use_content_types"`
	UseContentDisposition bool `mapstructure:"use_content_disposition"`
	UseExpires            bool `mapstructure:"use_expires"`

	// UseHTTPGetSuffix turns on HTTP-method routing: per-method
	// subscriptions (/get, /head, /options, /put, /post) instead of one
	// bare, read-only name (spec.md §4.1).
	UseHTTPGetSuffix bool `mapstructure:"use_http_get_suffix"`

	// StatusEndpoint, if non-empty, is a synthetic diagnostic endpoint
	// name (outside the scanned name space) reporting byte usage and
	// replacement engine state. See SPEC_FULL.md's supplemented features.
	StatusEndpoint string `mapstructure:"status_endpoint"`

	Debug      bool   `mapstructure:"debug"`
	DebugLevel string `mapstructure:"debug_level"`
	LogFormat  string `mapstructure:"log_format"`

	// LogFile, if non-empty, redirects logging from stderr to a
	// rotating file at this path instead.
	LogFile string `mapstructure:"log_file"`

	// AppendTimeout is how long an incomplete multipart upload's chunks
	// are retained before being discarded when the POST that started the
	// upload carried no timeout of its own; a POST with a positive
	// timeout uses that timeout instead (spec.md §4.7).
	AppendTimeout time.Duration `mapstructure:"append_timeout"`
}
