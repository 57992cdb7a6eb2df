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

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// New constructs the engine named by kind. GDSF and LFUDA share an
// implementation distinguished only by the priority formula; LRU is
// its own.
func New(kind Kind) (Engine, error) {
	switch kind {
	case KindLFUDA:
		return NewLFUDA(false), nil
	case KindGDSF:
		return NewLFUDA(true), nil
	case KindLRU:
		return NewLRU(), nil
	default:
		return nil, fmt.Errorf("replacement: unknown policy kind %q", kind)
	}
}

// WriteSidecar persists an engine's index to path using the
// write-to-temp-then-rename pattern spec.md §4.4 requires so a reader
// never observes a partially written sidecar. The temp file's suffix
// is a random UUID to avoid collisions between concurrent writers
// targeting the same root.
func WriteSidecar(path string, eng Engine) error {
	data, err := json.Marshal(eng.Snapshot())
	if err != nil {
		return fmt.Errorf("replacement: marshal sidecar: %w", err)
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(path), uuid.NewString()))

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("replacement: write temp sidecar: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacement: rename sidecar into place: %w", err)
	}
	return nil
}

// ReadSidecar loads a previously persisted index. A missing file is
// not an error: callers should treat it the same as a cold start.
func ReadSidecar(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("replacement: read sidecar: %w", err)
	}
	var s Sidecar
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("replacement: unmarshal sidecar: %w", err)
	}
	return &s, nil
}

// LoadInto restores a sidecar into a freshly constructed engine of the
// matching kind. A sidecar whose kind doesn't match eng is ignored
// (logged by the caller): spec.md §4.4 treats a policy change across
// restarts as a cold start, not an error.
func LoadInto(eng Engine, s *Sidecar) (applied bool, err error) {
	if s == nil || s.Kind != eng.Kind() {
		return false, nil
	}
	r, ok := eng.(Restorable)
	if !ok {
		return false, nil
	}
	if err := r.Restore(*s); err != nil {
		return false, err
	}
	return true, nil
}
