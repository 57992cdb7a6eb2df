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

type noopHandle struct{}

// NewNoopHandle returns a Handle whose every method is a no-op, for
// deployments that run without metrics collection.
func NewNoopHandle() Handle { return noopHandle{} }

func (noopHandle) RecordRequest(context.Context, string, string, int, time.Duration) {}
func (noopHandle) RecordCacheHit(context.Context, string)                            {}
func (noopHandle) RecordCacheMiss(context.Context, string)                           {}
func (noopHandle) RecordCacheEvict(context.Context, string, int)                     {}
func (noopHandle) RecordRefresh(context.Context, int, int, int, int)                 {}
