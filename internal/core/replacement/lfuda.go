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

// lfudaState is one file's mutable priority state.
type lfudaState struct {
	k    float64
	hits int64
	size int64
}

// LFUDAEngine implements the LFUDA cache-replacement policy and,
// when useGDSF is set, the GDSF variant of the same bookkeeping
// (spec.md §4.4): a monotonically non-decreasing age, plus a priority
// key K per file that only ever needs age and hits (LFUDA) or also the
// file's size (GDSF) to compute.
//
//	LFUDA: K = hits + age
//	GDSF:  K = floor(hits / ceil(size/1024)) + age
//
// Files consume at least 1 KiB for the GDSF denominator so a zero-byte
// file doesn't divide by zero.
type LFUDAEngine struct {
	mu      sync.Mutex
	useGDSF bool
	age     float64
	files   map[string]*lfudaState
}

// NewLFUDA constructs an empty LFUDA or GDSF engine.
func NewLFUDA(useGDSF bool) *LFUDAEngine {
	return &LFUDAEngine{
		useGDSF: useGDSF,
		files:   make(map[string]*lfudaState),
	}
}

func (e *LFUDAEngine) Kind() Kind {
	if e.useGDSF {
		return KindGDSF
	}
	return KindLFUDA
}

func (e *LFUDAEngine) priority(hits int64, size int64) float64 {
	if !e.useGDSF {
		return float64(hits) + e.age
	}
	denom := gdsfDenominator(size)
	return float64(hits/denom) + e.age
}

func gdsfDenominator(size int64) int64 {
	denom := (size + 1023) / 1024
	if denom <= 0 {
		denom = 1
	}
	return denom
}

func (e *LFUDAEngine) PriorityKey(name string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.files[name]; ok {
		return st.k
	}
	return e.age
}

func (e *LFUDAEngine) RecordAdmit(name string, size int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files[name] = &lfudaState{k: e.age, hits: 0, size: size}
}

func (e *LFUDAEngine) RecordHit(name string, size int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.files[name]
	if !ok {
		st = &lfudaState{}
		e.files[name] = st
	}
	st.hits++
	st.size = size
	st.k = e.priority(st.hits, st.size)
}

func (e *LFUDAEngine) RecordRemove(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.files[name]
	if !ok {
		return
	}
	if st.k > e.age {
		e.age = st.k
	}
	delete(e.files, name)
}

func (e *LFUDAEngine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.files)
}

func (e *LFUDAEngine) Snapshot() Sidecar {
	e.mu.Lock()
	defer e.mu.Unlock()
	entries := make([]LFUDAEntry, 0, len(e.files))
	for name, st := range e.files {
		entries = append(entries, LFUDAEntry{
			Name:      name,
			KMinusAge: st.k - e.age,
			Hits:      st.hits,
			LastSize:  st.size,
		})
	}
	return Sidecar{Kind: e.Kind(), Age: e.age, LFUDA: entries}
}

// Restore rebases a loaded sidecar's entries against this engine's
// current age: each entry's K is age-relative (KMinusAge), so it is
// simply re-added on top of the current age rather than the saved
// one, matching spec.md §4.4's "restores relative to current age"
// rule for reloaded indices.
func (e *LFUDAEngine) Restore(s Sidecar) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range s.LFUDA {
		e.files[entry.Name] = &lfudaState{
			k:    e.age + entry.KMinusAge,
			hits: entry.Hits,
			size: entry.LastSize,
		}
	}
	return nil
}
