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

package replacement

import "sync"

// LRUEngine implements the LRU cache-replacement policy (spec.md
// §4.4): each file's priority is the logical timestamp of its last
// admission or hit, ticking forward on every call rather than reading
// a wall clock, so two hits in the same instant still order.
type LRUEngine struct {
	mu    sync.Mutex
	start int64
	files map[string]int64
}

// NewLRU constructs an empty LRU engine.
func NewLRU() *LRUEngine {
	return &LRUEngine{files: make(map[string]int64)}
}

func (e *LRUEngine) Kind() Kind { return KindLRU }

func (e *LRUEngine) tick() int64 {
	e.start++
	return e.start
}

func (e *LRUEngine) PriorityKey(name string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ts, ok := e.files[name]; ok {
		return float64(ts)
	}
	return float64(e.start)
}

func (e *LRUEngine) RecordAdmit(name string, _ int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files[name] = e.tick()
}

func (e *LRUEngine) RecordHit(name string, _ int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files[name] = e.tick()
}

func (e *LRUEngine) RecordRemove(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.files, name)
}

func (e *LRUEngine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.files)
}

func (e *LRUEngine) Snapshot() Sidecar {
	e.mu.Lock()
	defer e.mu.Unlock()
	entries := make([]LRUEntry, 0, len(e.files))
	for name, ts := range e.files {
		entries = append(entries, LRUEntry{Name: name, Timestamp: ts})
	}
	return Sidecar{Kind: KindLRU, Start: e.start, LRU: entries}
}

// Restore rebases a loaded sidecar's timestamps onto this engine's
// own counter: the saved entries are shifted by the current start so
// their relative order survives, they never collide with files
// admitted since startup, and they sort ahead of those files (spec.md
// §4.4's "reloaded indices are rebased" rule).
func (e *LRUEngine) Restore(s Sidecar) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	offset := e.start
	for _, entry := range s.LRU {
		e.files[entry.Name] = entry.Timestamp + offset
	}
	if s.Start+offset > e.start {
		e.start = s.Start + offset
	}
	return nil
}
