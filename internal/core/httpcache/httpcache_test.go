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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatETag_UniqueAcrossGenerations(t *testing.T) {
	mtime := time.Unix(1_700_000_000, 0)
	a := FormatETag(mtime, 0)
	b := FormatETag(mtime, 1)
	assert.NotEqual(t, a, b)
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, MatchesAny("*", "abc"))
	assert.True(t, MatchesAny(`"abc", "def"`, "abc"))
	assert.False(t, MatchesAny(`"def"`, "abc"))
	assert.False(t, MatchesAny("", "abc"))
}

func TestEvaluateConditional_IfNoneMatchStar(t *testing.T) {
	status := EvaluateConditional(ConditionalRequest{IfNoneMatch: "*"}, "etag1", time.Now(), time.Now(), time.Minute)
	assert.Equal(t, StatusNotModified, status)
}

func TestEvaluateConditional_IfMatchMismatch(t *testing.T) {
	status := EvaluateConditional(ConditionalRequest{IfMatch: `"other"`}, "etag1", time.Now(), time.Now(), time.Minute)
	assert.Equal(t, StatusPreconditionFailed, status)
}

func TestEvaluateConditional_IfModifiedSince_FutureBeyondSkew_Proceeds(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mtime := now.Add(-time.Hour)
	future := now.Add(time.Hour) // beyond a 1 minute skew ceiling
	status := EvaluateConditional(ConditionalRequest{
		IfModifiedSince: FormatHTTPDate(future),
	}, "etag1", mtime, now, time.Minute)
	assert.Equal(t, StatusOK, status)
}

func TestEvaluateConditional_IfModifiedSince_NotModified(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mtime := now.Add(-time.Hour)
	status := EvaluateConditional(ConditionalRequest{
		IfModifiedSince: FormatHTTPDate(now),
	}, "etag1", mtime, now, time.Minute)
	assert.Equal(t, StatusNotModified, status)
}

func TestEvaluateConditional_IfUnmodifiedSince_PreconditionFailed(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mtime := now.Add(-time.Hour)
	// mtime is not after the date, and the date is within the skew
	// ceiling, so the precondition fails.
	status := EvaluateConditional(ConditionalRequest{
		IfUnmodifiedSince: FormatHTTPDate(mtime.Add(time.Minute)),
	}, "etag1", mtime, now, time.Minute)
	assert.Equal(t, StatusPreconditionFailed, status)
}

func TestRangeSpec_Resolve_Literal(t *testing.T) {
	rng, ok := RangeSpec{Start: 0, HasEnd: true, End: 0}.Resolve(3)
	assert.True(t, ok)
	assert.Equal(t, ResolvedRange{Start: 0, End: 0}, rng)
}

func TestRangeSpec_Resolve_SuffixLength(t *testing.T) {
	rng, ok := RangeSpec{Start: -2, HasEnd: false}.Resolve(5)
	assert.True(t, ok)
	assert.Equal(t, ResolvedRange{Start: 3, End: 4}, rng)
}

func TestRangeSpec_Resolve_FromStartToEOF(t *testing.T) {
	rng, ok := RangeSpec{Start: 1, HasEnd: false}.Resolve(5)
	assert.True(t, ok)
	assert.Equal(t, ResolvedRange{Start: 1, End: 4}, rng)
}

func TestRangeSpec_Resolve_Unsatisfiable(t *testing.T) {
	_, ok := RangeSpec{Start: 10, HasEnd: true, End: 20}.Resolve(3)
	assert.False(t, ok)
}

func TestEvaluateRanges_SingleRange206(t *testing.T) {
	rr := RangeRequest{Outcome: RangeParsed, Specs: []RangeSpec{{Start: 0, HasEnd: true, End: 0}}}
	res := EvaluateRanges(rr, "", "etag1", time.Now(), 3)
	assert.Equal(t, StatusPartialContent, res.Status)
	assert.Equal(t, []ResolvedRange{{Start: 0, End: 0}}, res.Ranges)
}

func TestEvaluateRanges_MultipleRanges(t *testing.T) {
	rr := RangeRequest{Outcome: RangeParsed, Specs: []RangeSpec{
		{Start: 0, HasEnd: true, End: 0},
		{Start: 2, HasEnd: true, End: 2},
	}}
	res := EvaluateRanges(rr, "", "etag1", time.Now(), 3)
	assert.Equal(t, StatusPartialContent, res.Status)
	assert.Len(t, res.Ranges, 2)
}

func TestEvaluateRanges_Absent(t *testing.T) {
	res := EvaluateRanges(RangeRequest{Outcome: RangeAbsent}, "", "etag1", time.Now(), 3)
	assert.Equal(t, StatusOK, res.Status)
}

func TestEvaluateRanges_NotByteUnit(t *testing.T) {
	res := EvaluateRanges(RangeRequest{Outcome: RangeNotByteUnit}, "", "etag1", time.Now(), 3)
	assert.Equal(t, StatusRangeNotSatisfiable, res.Status)
}

func TestEvaluateRanges_Malformed(t *testing.T) {
	res := EvaluateRanges(RangeRequest{Outcome: RangeMalformed}, "", "etag1", time.Now(), 3)
	assert.Equal(t, StatusBadRequest, res.Status)
}

func TestEvaluateRanges_Unsatisfiable416(t *testing.T) {
	rr := RangeRequest{Outcome: RangeParsed, Specs: []RangeSpec{{Start: 10, HasEnd: true, End: 20}}}
	res := EvaluateRanges(rr, "", "etag1", time.Now(), 3)
	assert.Equal(t, StatusRangeNotSatisfiable, res.Status)
}

func TestEvaluateRanges_IfRangeMismatchFallsBackToFull(t *testing.T) {
	rr := RangeRequest{Outcome: RangeParsed, Specs: []RangeSpec{{Start: 0, HasEnd: true, End: 0}}}
	res := EvaluateRanges(rr, `"stale-etag"`, "etag1", time.Now(), 3)
	assert.Equal(t, StatusOK, res.Status)
}

func TestEvaluateRanges_IfRangeMatchesETagHonorsRanges(t *testing.T) {
	rr := RangeRequest{Outcome: RangeParsed, Specs: []RangeSpec{{Start: 0, HasEnd: true, End: 0}}}
	res := EvaluateRanges(rr, Quoted("etag1"), "etag1", time.Now(), 3)
	assert.Equal(t, StatusPartialContent, res.Status)
}

func TestBuildMultipartByteranges(t *testing.T) {
	body := BuildMultipartByteranges("BOUNDARY", 3, []MultipartPart{
		{Range: ResolvedRange{Start: 0, End: 0}, Body: []byte("a")},
		{Range: ResolvedRange{Start: 2, End: 2}, Body: []byte("c")},
	})
	s := string(body)
	assert.Contains(t, s, "--BOUNDARY\r\n")
	assert.Contains(t, s, "Content-Range: bytes 0-0/3")
	assert.Contains(t, s, "Content-Range: bytes 2-2/3")
	assert.Contains(t, s, "--BOUNDARY--\r\n")
}

func TestCommonHeaders_UseExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mtime := now.Add(-time.Hour)
	h := CommonHeaders("etag1", mtime, now, CacheConfig{Enabled: true, UseExpires: true, Lifetime: time.Minute}, true)
	assert.Equal(t, `"etag1"`, h["etag"])
	assert.Equal(t, "public", h["cache-control"])
	assert.Equal(t, FormatHTTPDate(now.Add(time.Minute)), h["expires"])
	assert.Equal(t, "bytes", h["accept-ranges"])
}

func TestCommonHeaders_MaxAge(t *testing.T) {
	now := time.Now()
	h := CommonHeaders("etag1", now, now, CacheConfig{Enabled: true, Lifetime: 30 * time.Second}, false)
	assert.Equal(t, "public,max-age=30", h["cache-control"])
	_, hasAcceptRanges := h["accept-ranges"]
	assert.False(t, hasAcceptRanges)
}

func TestAllow(t *testing.T) {
	assert.Equal(t, "GET, HEAD, OPTIONS", Allow([]string{"get", "head", "options"}))
}
