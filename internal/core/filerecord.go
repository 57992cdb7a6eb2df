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

// Package core implements the four coupled subsystems of the content
// cache: the file table and directory scanner, the cache-replacement
// engine, the HTTP conditional/range protocol, and the
// append-reassembly engine, wired together by a single-threaded Actor.
package core

import (
	"time"

	"github.com/fsorigin/filecache/internal/core/httpcache"
)

// AccessMode reflects a file's filesystem access mode, as observed by
// the scanner via os.Stat / a failed open.
type AccessMode int

const (
	AccessNone AccessMode = iota
	AccessRead
	AccessWrite
	AccessReadWrite
)

func (m AccessMode) CanRead() bool  { return m == AccessRead || m == AccessReadWrite }
func (m AccessMode) CanWrite() bool { return m == AccessWrite || m == AccessReadWrite }

// WriteCap is a bitmask of the write methods an endpoint exposes.
type WriteCap int

const (
	WriteNone     WriteCap = 0
	WriteTruncate WriteCap = 1 << 0
	WriteAppend   WriteCap = 1 << 1
)

func (w WriteCap) Has(bit WriteCap) bool { return w&bit != 0 }

// MTimeI is the pair (modification time, same-mtime counter) that
// guarantees ETag uniqueness within a single mtime tick (spec.md §3).
type MTimeI struct {
	MTime   time.Time
	Counter uint64
}

// Compare returns -1, 0, or 1 comparing a and b lexicographically on
// (MTime, Counter), matching spec.md's invariant that mtime_i is
// strictly greater on any content change visible to clients.
func (a MTimeI) Compare(b MTimeI) int {
	switch {
	case a.MTime.Before(b.MTime):
		return -1
	case a.MTime.After(b.MTime):
		return 1
	case a.Counter < b.Counter:
		return -1
	case a.Counter > b.Counter:
		return 1
	default:
		return 0
	}
}

func (a MTimeI) Equal(b MTimeI) bool { return a.Compare(b) == 0 }

// NextForMTime advances the counter for a newly observed content
// change at the given filesystem mtime: if the mtime falls in the same
// whole second (the ETag's granularity) the counter increments,
// otherwise it resets to zero.
func (a MTimeI) NextForMTime(mtime time.Time) MTimeI {
	if mtime.Unix() == a.MTime.Unix() {
		return MTimeI{MTime: mtime, Counter: a.Counter + 1}
	}
	return MTimeI{MTime: mtime, Counter: 0}
}

// NotifySub is one notification subscription attached to a file
// record (spec.md §4.9).
type NotifySub struct {
	Multicast bool // false = unicast
	Name      string
	Timeout   time.Duration
	Priority  int
}

// AppendChunk is one buffered chunk of a multipart byte-range upload
// awaiting reassembly (spec.md §3 write_appends, §4.7).
type AppendChunk struct {
	Index   int
	Start   int64 // resolved absolute byte_start
	End     int64 // resolved absolute byte_end, inclusive
	Payload []byte
}

// PendingUpload is the per-id state of an in-progress multipart
// append. Entries are removed either by the terminal chunk or by the
// per-id timeout firing.
type PendingUpload struct {
	Chunks    []AppendChunk // INVARIANT: sorted by Index, unique Index
	CancelFn  func() bool   // cancels the pending timeout; idempotent
	CreatedAt time.Time
}

// InsertSorted inserts or replaces a chunk, keeping Chunks sorted and
// unique by Index (spec.md §3: "within an id, indices are unique and
// sorted").
func (p *PendingUpload) InsertSorted(c AppendChunk) {
	for i, existing := range p.Chunks {
		if existing.Index == c.Index {
			p.Chunks[i] = c
			return
		}
		if existing.Index > c.Index {
			p.Chunks = append(p.Chunks, AppendChunk{})
			copy(p.Chunks[i+1:], p.Chunks[i:])
			p.Chunks[i] = c
			return
		}
	}
	p.Chunks = append(p.Chunks, c)
}

// FileRecord is the in-memory representation of one endpoint's
// backing file (spec.md §3).
type FileRecord struct {
	// Name is the logical filename relative to the scan root, e.g.
	// "css/site.css". Never empty, never slash-prefixed.
	Name string

	Contents []byte
	Size     int64
	Path     string

	// Headers holds precomputed response headers that don't change
	// across generations of this file: Content-Type and
	// Content-Disposition, when those features are enabled.
	Headers map[string]string

	MTimeI MTimeI
	Access AccessMode

	// Toggle is flipped every refresh cycle; a record not touched by
	// the latest scan (Toggle != State.Toggle) is a removal candidate.
	Toggle bool

	Notify []NotifySub
	Write  WriteCap

	// WriteAppends maps multipart id -> pending upload. Never nil once
	// the first append chunk for this file has arrived.
	WriteAppends map[string]*PendingUpload

	// Redirect, when non-empty, is the target endpoint name; GET/HEAD
	// on this record's endpoints reply 301 with an empty body instead
	// of serving Contents (spec.md §4.8).
	Redirect string

	// SegmentOffset/SegmentLength record the allow-list scan's
	// requested byte window into the on-disk file, or (0, -1) when the
	// whole file is in scope (spec.md §4.2 mode (b)).
	SegmentOffset int64
	SegmentLength int64 // -1 means "to EOF"
}

// ETag formats this record's current entity tag, per the GLOSSARY:
// "<mtime-gregorian-seconds-hex><counter-hex>".
func (f *FileRecord) ETag() string {
	return httpcache.FormatETag(f.MTimeI.MTime, f.MTimeI.Counter)
}
