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

package metrics

import (
	"context"
	"time"
)

// multi fans one set of recorded measurements out to every wrapped
// Handle, so the OTel and OpenCensus stacks can run side by side
// against a single set of call sites in the actor loop.
type multi struct {
	handles []Handle
}

// Multi combines handles into one Handle that records against all of
// them. A nil entry in handles is skipped, so callers can build the
// list conditionally (e.g. only include the OTel handle when a
// MeterProvider was configured).
func Multi(handles ...Handle) Handle {
	var nonNil []Handle
	for _, h := range handles {
		if h != nil {
			nonNil = append(nonNil, h)
		}
	}
	if len(nonNil) == 0 {
		return NewNoopHandle()
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}
	return &multi{handles: nonNil}
}

func (m *multi) RecordRequest(ctx context.Context, endpoint, method string, status int, latency time.Duration) {
	for _, h := range m.handles {
		h.RecordRequest(ctx, endpoint, method, status, latency)
	}
}

func (m *multi) RecordCacheHit(ctx context.Context, endpoint string) {
	for _, h := range m.handles {
		h.RecordCacheHit(ctx, endpoint)
	}
}

func (m *multi) RecordCacheMiss(ctx context.Context, endpoint string) {
	for _, h := range m.handles {
		h.RecordCacheMiss(ctx, endpoint)
	}
}

func (m *multi) RecordCacheEvict(ctx context.Context, reason string, count int) {
	for _, h := range m.handles {
		h.RecordCacheEvict(ctx, reason, count)
	}
}

func (m *multi) RecordRefresh(ctx context.Context, added, updated, removed, skippedOverBudget int) {
	for _, h := range m.handles {
		h.RecordRefresh(ctx, added, updated, removed, skippedOverBudget)
	}
}
