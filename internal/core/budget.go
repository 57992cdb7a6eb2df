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

// Budget enforces the optional global byte ceiling across in-memory
// file contents (spec.md §4.3). A zero-value Budget (Ceiling == nil)
// never rejects anything.
type Budget struct {
	Ceiling *int64 // bytes; nil means unbounded
	Usage   int64
}

// Admit computes spec.md §4.3's prospective usage - current usage
// minus the file's previous size (if any), plus its new size - and
// reports whether it fits under the ceiling. It does not mutate Usage;
// callers apply the delta themselves once the write that required
// this check has actually succeeded.
func (b *Budget) Admit(oldSize, newSize int64) (prospective int64, ok bool) {
	prospective = b.Usage - oldSize + newSize
	if b.Ceiling != nil && prospective > *b.Ceiling {
		return prospective, false
	}
	return prospective, true
}

// Apply commits a previously admitted size change to Usage.
func (b *Budget) Apply(oldSize, newSize int64) {
	b.Usage += newSize - oldSize
}
