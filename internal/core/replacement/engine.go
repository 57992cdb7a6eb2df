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

// Package replacement implements the cache-replacement engine of
// spec.md §4.4: LFUDA (with the LFUDA or GDSF priority formula) and
// LRU, including the refresh-time admission ordering and the sidecar
// persistence format.
package replacement

// Kind names the replacement policy, matching the persisted sidecar's
// type tag and the cfg.ReplacePolicy string values.
type Kind string

const (
	KindLFUDA Kind = "lfuda"
	KindGDSF  Kind = "lfuda_gdsf"
	KindLRU   Kind = "lru"
)

// Engine is the cache-replacement engine's mutable priority index. It
// tracks per-file priority independent of the file table itself; the
// actor consults it to order refresh admission and calls into it on
// every hit and removal.
type Engine interface {
	Kind() Kind

	// PriorityKey returns the sort key used by the refresh admission
	// order (spec.md §4.4 "Eviction-aware refresh" step 2): higher
	// sorts first. A file never seen before gets the engine's current
	// default (age for LFUDA/GDSF, start for LRU).
	PriorityKey(name string) float64

	// RecordAdmit registers a newly admitted file at the engine's
	// current default priority.
	RecordAdmit(name string, size int64)

	// RecordHit updates a file's priority in response to a served
	// request.
	RecordHit(name string, size int64)

	// RecordRemove removes a file from the index and, for LFUDA/GDSF,
	// rolls age forward if the removed file's priority exceeded it.
	RecordRemove(name string)

	// Len reports how many files the index currently tracks.
	Len() int

	// Snapshot returns the sidecar payload to persist (spec.md §4.4
	// "Persistence").
	Snapshot() Sidecar
}

// Restorable is implemented by engines that can rebase a loaded
// sidecar against their own current state (LRU's offset-shift, and
// LFUDA/GDSF's K-age rebasing).
type Restorable interface {
	Restore(s Sidecar) error
}
