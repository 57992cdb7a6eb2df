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

// LFUDAEntry is one file's persisted priority state under the LFUDA or
// GDSF formula: the offset of its K above the engine's age at save
// time, plus its raw hit count (spec.md §4.4 "Persistence").
type LFUDAEntry struct {
	Name      string  `json:"name"`
	KMinusAge float64 `json:"k_minus_age"`
	Hits      int64   `json:"hits"`
	LastSize  int64   `json:"last_size"`
}

// LRUEntry is one file's persisted last-access timestamp.
type LRUEntry struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// Sidecar is the tagged tuple format spec.md §4.4 persists the
// replacement index as: a policy tag plus the entries shaped for that
// policy. Exactly one of LFUDA or LRU is populated, matching Kind.
type Sidecar struct {
	Kind  Kind         `json:"kind"`
	Age   float64      `json:"age,omitempty"`
	Start int64        `json:"start,omitempty"`
	LFUDA []LFUDAEntry `json:"lfuda_entries,omitempty"`
	LRU   []LRUEntry   `json:"lru_entries,omitempty"`
}
