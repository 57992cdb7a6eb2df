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

package core

import "github.com/fsorigin/filecache/internal/core/httpcache"

// postRangeStatus is what evaluatePostRange decided about one POST's
// (range, id, is_last, index) tuple (spec.md §4.7).
type postRangeStatus int

const (
	postRangeOK postRangeStatus = iota
	postRangeBadRequest
	postRangeNotSatisfiable
	postRangeStaleIfRange
)

// evaluatePostRange determines the append tuple spec.md §4.7 describes
// for one POST request: which byte range this chunk lands at, the
// multipart id grouping it, whether it's the terminal chunk, and its
// index within that group.
//
// Unlike a GET's range evaluation, a POST range may legitimately
// extend past the file's current length (that's what makes it an
// append), so this does not reuse httpcache.EvaluateRanges' bounds
// check - only its outcome classification and If-Range matching.
func evaluatePostRange(req Request, rec *FileRecord) (chunk AppendChunk, id string, isLast bool, status postRangeStatus) {
	switch req.Range.Outcome {
	case httpcache.RangeMalformed:
		return AppendChunk{}, "", false, postRangeBadRequest
	case httpcache.RangeNotByteUnit:
		return AppendChunk{}, "", false, postRangeNotSatisfiable
	}

	if req.IfRange != "" && !ifRangeMatchesRecord(req.IfRange, rec) {
		return AppendChunk{}, "", false, postRangeStaleIfRange
	}

	id = req.MultipartID
	index := 0
	if req.HasMultipartIndex {
		index = req.MultipartIndex
	}
	isLast = true
	if req.HasMultipartID {
		isLast = req.MultipartLast
	}

	var start, end int64
	switch len(req.Range.Specs) {
	case 0:
		// No Range: a single terminal append at the current end.
		start = rec.Size
		end = start + int64(len(req.Body)) - 1
	case 1:
		spec := req.Range.Specs[0]
		s, e, ok := resolveAppendRange(spec.Start, spec.HasEnd, spec.End, len(req.Body), rec.Size)
		if !ok {
			return AppendChunk{}, "", false, postRangeBadRequest
		}
		start, end = s, e
	default:
		if index < 0 || index >= len(req.Range.Specs) {
			return AppendChunk{}, "", false, postRangeNotSatisfiable
		}
		spec := req.Range.Specs[index]
		s, e, ok := resolveAppendRange(spec.Start, spec.HasEnd, spec.End, len(req.Body), rec.Size)
		if !ok {
			return AppendChunk{}, "", false, postRangeBadRequest
		}
		start, end = s, e
	}

	return AppendChunk{Index: index, Start: start, End: end, Payload: req.Body}, id, isLast, postRangeOK
}

func ifRangeMatchesRecord(value string, rec *FileRecord) bool {
	if value == httpcache.Quoted(rec.ETag()) || value == rec.ETag() {
		return true
	}
	if date, ok := httpcache.ParseHTTPDate(value); ok {
		return date.Equal(rec.MTimeI.MTime)
	}
	return false
}

// applyChunks splices a sorted, index-ordered run of AppendChunks into
// contents, implementing spec.md §4.7's "Range application" table:
//
//   - a region fully inside the current length overwrites in place
//   - a region overlapping the tail truncates contents to the chunk's end
//   - a chunk starting exactly at the current length appends
//   - a chunk starting past the current length zero-fills the gap first
//
// Chunks are applied in the order given (spec.md: "by index order"),
// each against the result of the previous one.
func applyChunks(contents []byte, chunks []AppendChunk) []byte {
	for _, c := range chunks {
		contents = applyOneChunk(contents, c)
	}
	return contents
}

func applyOneChunk(contents []byte, c AppendChunk) []byte {
	length := int64(len(contents))

	if c.Start > length {
		gap := make([]byte, c.Start-length)
		contents = append(contents, gap...)
		length = c.Start
	}

	end := c.Start + int64(len(c.Payload))
	switch {
	case end <= length:
		// Fully inside the current length: overwrite in place.
		copy(contents[c.Start:end], c.Payload)
		return contents
	default:
		// Starts at or before the current length but extends past it
		// (or starts exactly at length, the common append case):
		// truncate to the chunk's end and write the payload.
		out := make([]byte, end)
		copy(out, contents[:c.Start])
		copy(out[c.Start:], c.Payload)
		return out
	}
}

// resolveAppendRange computes (byte_start, byte_end) for one POST
// chunk's range per spec.md §4.7: a non-negative start is used as-is;
// a negative start counts back from the current content length.
// byte_end is derived from the payload length when the caller didn't
// supply one. A request with no Range at all does not come through
// here: evaluatePostRange appends it at the current end itself.
func resolveAppendRange(start int64, hasEnd bool, end int64, payloadLen int, contentLength int64) (byteStart, byteEnd int64, ok bool) {
	switch {
	case start < 0:
		byteStart = contentLength + start
	default:
		byteStart = start
	}

	if hasEnd {
		byteEnd = end
	} else {
		byteEnd = byteStart + int64(payloadLen) - 1
	}

	if byteStart > byteEnd {
		return 0, 0, false
	}
	return byteStart, byteEnd, true
}
