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

// Package metrics instruments a running cache instance. It follows the
// same belt-and-suspenders shape as the system it's adapted from: a
// Handle interface with an OpenTelemetry implementation, a legacy
// OpenCensus implementation, and a no-op fallback, so a deployment can
// run either stack (or both, or neither) without the actor loop caring
// which.
package metrics

import (
	"context"
	"time"
)

// Attr is one name/value tag attached to a recorded measurement.
type Attr struct {
	Key   string
	Value string
}

const (
	// EndpointKey annotates the endpoint name a request resolved to
	// (e.g. "/cache/report.csv/get").
	EndpointKey = "endpoint"

	// MethodKey annotates the logical method of a request (get, head,
	// put, post, options, redirect).
	MethodKey = "method"

	// OutcomeKey annotates why a refresh changed the file table
	// (added, updated, removed, skipped_over_budget).
	OutcomeKey = "outcome"
)

// Handle is the metrics surface the actor loop records against. A nil
// Handle is never passed around; callers that don't want metrics wire
// NewNoopHandle() instead.
type Handle interface {
	// RecordRequest counts one dispatched request and its latency,
	// tagged by endpoint, method, and response status.
	RecordRequest(ctx context.Context, endpoint, method string, status int, latency time.Duration)

	// RecordCacheHit counts a GET/HEAD that resolved to an existing
	// file (status 200, 206, or 304).
	RecordCacheHit(ctx context.Context, endpoint string)

	// RecordCacheMiss counts a GET/HEAD that resolved to no such file
	// (status 404).
	RecordCacheMiss(ctx context.Context, endpoint string)

	// RecordCacheEvict counts files a refresh's removal pass dropped
	// from the table, tagged by reason (the actor uses
	// "removed_on_refresh").
	RecordCacheEvict(ctx context.Context, reason string, count int)

	// RecordRefresh counts one directory-scan reconcile cycle's
	// outcome tallies.
	RecordRefresh(ctx context.Context, added, updated, removed, skippedOverBudget int)
}

// defaultLatencyBuckets mirrors the millisecond-scale histogram
// boundaries used for request-latency distributions: fine-grained
// near the common case, coarser in the tail.
var defaultLatencyBuckets = []float64{
	0.5, 1, 2, 4, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000,
}
