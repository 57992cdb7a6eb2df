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

// Status is an HTTP status code the protocol state machine can reach.
// Kept as a distinct type (rather than a bare int) so it is never
// confused with an ordinary Go error.
type Status int

const (
	StatusOK                 Status = 200
	StatusPartialContent     Status = 206
	StatusNotModified        Status = 304
	StatusBadRequest         Status = 400
	StatusGone               Status = 410
	StatusPreconditionFailed Status = 412
	StatusRangeNotSatisfiable Status = 416
)

// ConditionalRequest carries the raw (already-split-by-comma-where-
// relevant) header values this step inspects. Empty string means
// "header absent".
type ConditionalRequest struct {
	IfNoneMatch       string
	IfMatch           string
	IfModifiedSince   string
	IfUnmodifiedSince string
}

// EvaluateConditional runs the ordered check of spec.md §4.5 steps 1-4
// and returns StatusOK (proceed to range evaluation), StatusNotModified,
// or StatusPreconditionFailed. now and clockSkewMax together form the
// "invalid-time ceiling" (now + clockSkewMax) that caps how far into
// the future a client-supplied date is trusted; clockSkewMax <= 0
// disables that ceiling check.
func EvaluateConditional(req ConditionalRequest, etag string, mtime time.Time, now time.Time, clockSkewMax time.Duration) Status {
	if req.IfNoneMatch != "" && MatchesAny(req.IfNoneMatch, etag) {
		return StatusNotModified
	}

	if req.IfMatch != "" && req.IfMatch != "*" && !MatchesAny(req.IfMatch, etag) {
		return StatusPreconditionFailed
	}

	hasCeiling := clockSkewMax > 0
	ceiling := now.Add(clockSkewMax)

	if req.IfModifiedSince != "" {
		if date, ok := ParseHTTPDate(req.IfModifiedSince); ok {
			if mtime.After(date) || (hasCeiling && date.After(ceiling)) {
				// Proceed; do not fall through to If-Unmodified-Since as a
				// 304 source, but it may still force a 412 below.
			} else {
				return StatusNotModified
			}
		}
		// Parse failure: fall through per spec.md §4.5.
	}

	if req.IfUnmodifiedSince != "" {
		if date, ok := ParseHTTPDate(req.IfUnmodifiedSince); ok {
			expired := !mtime.After(date)
			if hasCeiling {
				expired = expired && !date.After(ceiling)
			}
			if expired {
				return StatusPreconditionFailed
			}
		}
	}

	return StatusOK
}
