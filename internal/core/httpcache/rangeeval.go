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

import "time"

// RangeParseOutcome is the result the out-of-scope Range-header parser
// (spec.md §1) is expected to hand the core: whether a Range header
// was present, and if so whether it parsed as byte-ranges.
type RangeParseOutcome int

const (
	RangeAbsent RangeParseOutcome = iota
	RangeNotByteUnit
	RangeMalformed
	RangeParsed
)

// RangeRequest is the pre-parsed Range header plus its specs when
// RangeParsed.
type RangeRequest struct {
	Outcome RangeParseOutcome
	Specs   []RangeSpec
}

// RangeResult is what EvaluateRanges decides: the status to answer
// with, and (for StatusPartialContent) the resolved byte ranges to
// serve.
type RangeResult struct {
	Status Status
	Ranges []ResolvedRange
}

// EvaluateRanges runs spec.md §4.5's range + If-Range logic. ifRangeValue
// is the raw If-Range header (empty if absent).
//
// If-Range that fails to match the current ETag or mtime is treated as
// "do not honor the Range header": spec.md's note about an internal
// 410 in this step refers to an implementation detail of the system
// this was distilled from (see DESIGN.md); observably, a stale
// If-Range falls back to a full 200 response, matching ordinary HTTP
// semantics and spec.md's own "or a 200 fallthrough (in body
// emission)" alternative.
func EvaluateRanges(rr RangeRequest, ifRangeValue string, etag string, mtime time.Time, contentLength int64) RangeResult {
	switch rr.Outcome {
	case RangeAbsent:
		return RangeResult{Status: StatusOK}
	case RangeNotByteUnit:
		return RangeResult{Status: StatusRangeNotSatisfiable}
	case RangeMalformed:
		return RangeResult{Status: StatusBadRequest}
	}

	if ifRangeValue != "" && !ifRangeMatches(ifRangeValue, etag, mtime) {
		return RangeResult{Status: StatusOK}
	}

	resolved := make([]ResolvedRange, 0, len(rr.Specs))
	for _, spec := range rr.Specs {
		rng, ok := spec.Resolve(contentLength)
		if !ok {
			return RangeResult{Status: StatusRangeNotSatisfiable}
		}
		resolved = append(resolved, rng)
	}

	if len(resolved) == 0 {
		return RangeResult{Status: StatusOK}
	}

	return RangeResult{Status: StatusPartialContent, Ranges: resolved}
}

func ifRangeMatches(value string, etag string, mtime time.Time) bool {
	if value == Quoted(etag) || value == etag {
		return true
	}
	if date, ok := ParseHTTPDate(value); ok {
		return date.Equal(mtime)
	}
	return false
}
