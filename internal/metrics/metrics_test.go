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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusProvider_WiresAllThreeStacks(t *testing.T) {
	p, err := NewPrometheusProvider("filecache_test_" + t.Name())
	require.NoError(t, err)
	require.NotNil(t, p.Handle)
	require.NotNil(t, p.Gather)
	require.NotNil(t, p.Shutdown)

	ctx := context.Background()
	p.Handle.RecordRequest(ctx, "/cache/a.txt/get", "get", 200, 5*time.Millisecond)
	p.Handle.RecordCacheHit(ctx, "/cache/a.txt/get")
	p.Handle.RecordCacheMiss(ctx, "/cache/missing.txt/get")
	p.Handle.RecordCacheEvict(ctx, "over_budget", 2)
	p.Handle.RecordRefresh(ctx, 1, 2, 3, 4)

	assert.NoError(t, p.Shutdown(ctx))
}

func TestMulti_FansOutToEveryHandle(t *testing.T) {
	a := &countingHandle{}
	b := &countingHandle{}
	m := Multi(a, nil, b)

	ctx := context.Background()
	m.RecordCacheHit(ctx, "/cache/a.txt/get")
	m.RecordCacheMiss(ctx, "/cache/a.txt/get")
	m.RecordCacheEvict(ctx, "deleted_on_disk", 1)
	m.RecordRefresh(ctx, 1, 0, 0, 0)
	m.RecordRequest(ctx, "/cache/a.txt/get", "get", 200, time.Millisecond)

	assert.Equal(t, 1, a.hits)
	assert.Equal(t, 1, b.hits)
	assert.Equal(t, 1, a.misses)
	assert.Equal(t, 1, a.evicts)
	assert.Equal(t, 1, a.refreshes)
	assert.Equal(t, 1, a.requests)
}

func TestMulti_SingleHandleIsReturnedUnwrapped(t *testing.T) {
	a := &countingHandle{}
	assert.Same(t, Handle(a), Multi(a))
}

func TestMulti_EmptyFallsBackToNoop(t *testing.T) {
	assert.Equal(t, NewNoopHandle(), Multi())
}

func TestJoinShutdownFunc_CollectsEveryError(t *testing.T) {
	boom := func(context.Context) error { return assertErr{"boom"} }
	ok := func(context.Context) error { return nil }

	err := JoinShutdownFunc(ok, boom, boom)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

type countingHandle struct {
	requests, hits, misses, evicts, refreshes int
}

func (c *countingHandle) RecordRequest(context.Context, string, string, int, time.Duration) { c.requests++ }
func (c *countingHandle) RecordCacheHit(context.Context, string)                            { c.hits++ }
func (c *countingHandle) RecordCacheMiss(context.Context, string)                           { c.misses++ }
func (c *countingHandle) RecordCacheEvict(context.Context, string, int)                     { c.evicts++ }
func (c *countingHandle) RecordRefresh(context.Context, int, int, int, int)                 { c.refreshes++ }

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
