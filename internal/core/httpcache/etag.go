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

// Package httpcache implements the HTTP conditional/range protocol
// state machine of spec.md §4.5: ETag/Last-Modified/Date computation,
// If-Match/If-None-Match/If-Modified-Since/If-Unmodified-Since/
// If-Range evaluation, byte-range parsing and validation, and
// multipart/byteranges body construction. It knows nothing about the
// file table or the actor; every function here takes plain values
// (mtime, size, header strings) so it can be tested and reasoned about
// in isolation from the rest of the core.
package httpcache

import (
	"fmt"
	"strings"
	"time"
)

// FormatETag renders the entity tag for a given (mtime, same-mtime
// counter) pair, per the GLOSSARY: the mtime in hex seconds followed by
// the counter in hex, unquoted (Quoted adds the wire quotes), so that
// two different contents observed within the same mtime tick never
// collide.
func FormatETag(mtime time.Time, counter uint64) string {
	return fmt.Sprintf("%x%x", mtime.Unix(), counter)
}

// Quoted wraps an ETag value in double quotes, as it appears on the
// wire in the ETag header and in If-Match/If-None-Match values.
func Quoted(etag string) string {
	return `"` + etag + `"`
}

// MatchesAny reports whether headerValue (the raw If-Match or
// If-None-Match header) is "*" or contains etag as a substring of one
// of its comma-separated, quoted members. Substring containment
// (rather than exact token equality) matches spec.md §4.5's wording
// ("contains the current ETag as a substring"): a weak comparison
// ("W/"<etag>") is accepted by containment without being parsed out
// specially.
func MatchesAny(headerValue string, etag string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "*" {
		return true
	}
	if headerValue == "" {
		return false
	}
	return strings.Contains(headerValue, etag)
}

// FormatHTTPDate renders t in RFC1123 GMT form, as used for
// Last-Modified, Date, and Expires.
func FormatHTTPDate(t time.Time) string {
	return t.UTC().Format(http1123)
}

const http1123 = "Mon, 02 Jan 2006 15:04:05 GMT"

// ParseHTTPDate is a best-effort parser for the date formats commonly
// sent in If-Modified-Since/If-Unmodified-Since/If-Range. Parsing is
// delegated to the caller-supplied function in practice (RFC-date
// parsing is listed as an out-of-scope external collaborator in
// spec.md §1); this local implementation covers RFC1123 and the two
// legacy formats http.ParseTime historically accepted, so the package
// is independently testable without that collaborator.
func ParseHTTPDate(value string) (time.Time, bool) {
	for _, layout := range []string{
		http1123,
		"Monday, 02-Jan-06 15:04:05 GMT",
		"Mon Jan _2 15:04:05 2006",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
