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

package httpcache

import (
	"fmt"
	"strings"
	"time"
)

// CacheConfig controls the Cache-Control/Expires pair emitted by
// CommonHeaders, per spec.md §4.5.
type CacheConfig struct {
	Enabled    bool
	UseExpires bool
	Lifetime   time.Duration
}

// CommonHeaders returns the headers spec.md §4.5 says are "always"
// present (ETag, Last-Modified, Date) plus the conditionally-present
// cache and Accept-Ranges headers. Keys are lower-case; the caller
// (internal/httpserver) is responsible for canonicalizing them for
// net/http.
func CommonHeaders(etag string, mtime time.Time, now time.Time, cache CacheConfig, methodRoutingEnabled bool) map[string]string {
	h := map[string]string{
		"etag":          Quoted(etag),
		"last-modified": FormatHTTPDate(mtime),
		"date":          FormatHTTPDate(now),
	}

	if cache.Enabled {
		if cache.UseExpires {
			h["cache-control"] = "public"
			h["expires"] = FormatHTTPDate(now.Add(cache.Lifetime))
		} else {
			h["cache-control"] = fmt.Sprintf("public,max-age=%d", int64(cache.Lifetime.Seconds()))
		}
	}

	if methodRoutingEnabled {
		h["accept-ranges"] = "bytes"
	}

	return h
}

// ContentRange formats the Content-Range header for a satisfiable
// range response.
func ContentRange(rng ResolvedRange, total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, total)
}

// ContentRangeUnsatisfiable formats the Content-Range header for a 416
// response: "bytes */N".
func ContentRangeUnsatisfiable(total int64) string {
	return fmt.Sprintf("bytes */%d", total)
}

// Allow joins method tags into the comma-separated, uppercased Allow
// header value OPTIONS responds with (spec.md §4.5).
func Allow(methods []string) string {
	upper := make([]string, len(methods))
	for i, m := range methods {
		upper[i] = strings.ToUpper(m)
	}
	return strings.Join(upper, ", ")
}
