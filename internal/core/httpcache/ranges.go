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

// RangeSpec is one byte-range-spec already split into (start, end)
// pieces by the caller (parsing the raw Range header text is the
// out-of-scope collaborator named in spec.md §1). The three forms from
// spec.md §4.5:
//
//   - HasEnd && Start >= 0: a literal range.
//   - HasEnd && Start < 0: Start is an offset from EOF.
//   - !HasEnd: from Start to EOF; Start < 0 means a suffix length.
type RangeSpec struct {
	Start  int64
	HasEnd bool
	End    int64
}

// ResolvedRange is a RangeSpec resolved against a concrete content
// length, in absolute, inclusive byte offsets.
type ResolvedRange struct {
	Start int64
	End   int64
}

// Resolve converts r into absolute byte offsets against contentLength.
// The second return value is false when the range is not
// satisfiable: spec.md §4.5 defines validity as
// "0 ≤ byte_start ≤ byte_end and byte_end - byte_start + 1 ≤
// content_length - byte_start", which simplifies to
// 0 <= byte_start <= byte_end < content_length.
func (r RangeSpec) Resolve(contentLength int64) (ResolvedRange, bool) {
	var start, end int64

	if r.HasEnd {
		if r.Start >= 0 {
			start, end = r.Start, r.End
		} else {
			start, end = contentLength+r.Start, r.End
		}
	} else {
		if r.Start >= 0 {
			start, end = r.Start, contentLength-1
		} else {
			// Suffix length: the last |Start| bytes.
			start, end = contentLength+r.Start, contentLength-1
		}
	}

	if start < 0 || start > end || end >= contentLength {
		return ResolvedRange{}, false
	}
	return ResolvedRange{Start: start, End: end}, true
}

// Len returns the number of bytes spanned by r, inclusive.
func (r ResolvedRange) Len() int64 { return r.End - r.Start + 1 }
