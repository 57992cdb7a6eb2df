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
	"fmt"
	"time"

	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/fsorigin/filecache/internal/logger"
)

// ocHandle is the legacy OpenCensus side of the metrics stack, kept
// alongside the OTel one rather than in place of it: existing
// OpenCensus-based collection pipelines keep working unmodified while
// a deployment migrates to the OTel exporter.
type ocHandle struct {
	requestCount   *stats.Int64Measure
	requestLatency *stats.Float64Measure
	cacheHitCount  *stats.Int64Measure
	cacheMissCount *stats.Int64Measure
	evictCount     *stats.Int64Measure
	refreshOutcome *stats.Int64Measure
}

// NewOCHandle registers the OpenCensus measures and views and returns
// a Handle recording against them. Safe to call once per process;
// calling it twice will fail view.Register with an "already
// registered" error.
func NewOCHandle() (Handle, error) {
	requestCount := stats.Int64("filecache/request_count", "The number of requests dispatched.", stats.UnitDimensionless)
	requestLatency := stats.Float64("filecache/request_latency", "The latency of a dispatched request.", stats.UnitMilliseconds)
	cacheHitCount := stats.Int64("filecache/cache_hit_count", "The number of requests resolved against an existing file.", stats.UnitDimensionless)
	cacheMissCount := stats.Int64("filecache/cache_miss_count", "The number of requests for a file not in the table.", stats.UnitDimensionless)
	evictCount := stats.Int64("filecache/cache_evict_count", "The number of files dropped from the table.", stats.UnitDimensionless)
	refreshOutcome := stats.Int64("filecache/refresh_outcome_count", "The number of files each refresh cycle added, updated, removed, or skipped.", stats.UnitDimensionless)

	endpointKey := tag.MustNewKey(EndpointKey)
	methodKey := tag.MustNewKey(MethodKey)
	reasonKey := tag.MustNewKey("reason")
	outcomeKey := tag.MustNewKey(OutcomeKey)

	if err := view.Register(
		&view.View{Name: "filecache/request_count", Measure: requestCount, Aggregation: view.Sum(), TagKeys: []tag.Key{endpointKey, methodKey}},
		&view.View{Name: "filecache/request_latency", Measure: requestLatency, Aggregation: ochttp.DefaultLatencyDistribution, TagKeys: []tag.Key{endpointKey, methodKey}},
		&view.View{Name: "filecache/cache_hit_count", Measure: cacheHitCount, Aggregation: view.Sum(), TagKeys: []tag.Key{endpointKey}},
		&view.View{Name: "filecache/cache_miss_count", Measure: cacheMissCount, Aggregation: view.Sum(), TagKeys: []tag.Key{endpointKey}},
		&view.View{Name: "filecache/cache_evict_count", Measure: evictCount, Aggregation: view.Sum(), TagKeys: []tag.Key{reasonKey}},
		&view.View{Name: "filecache/refresh_outcome_count", Measure: refreshOutcome, Aggregation: view.Sum(), TagKeys: []tag.Key{outcomeKey}},
	); err != nil {
		return nil, fmt.Errorf("metrics: registering opencensus views: %w", err)
	}

	return &ocHandle{
		requestCount:   requestCount,
		requestLatency: requestLatency,
		cacheHitCount:  cacheHitCount,
		cacheMissCount: cacheMissCount,
		evictCount:     evictCount,
		refreshOutcome: refreshOutcome,
	}, nil
}

func (h *ocHandle) RecordRequest(ctx context.Context, endpoint, method string, status int, latency time.Duration) {
	mutators := []tag.Mutator{tag.Upsert(tag.MustNewKey(EndpointKey), endpoint), tag.Upsert(tag.MustNewKey(MethodKey), method)}
	h.record(ctx, mutators, h.requestCount.M(1), "request count")
	h.record(ctx, mutators, h.requestLatency.M(float64(latency.Microseconds())/1000), "request latency")
}

func (h *ocHandle) RecordCacheHit(ctx context.Context, endpoint string) {
	h.record(ctx, []tag.Mutator{tag.Upsert(tag.MustNewKey(EndpointKey), endpoint)}, h.cacheHitCount.M(1), "cache hit count")
}

func (h *ocHandle) RecordCacheMiss(ctx context.Context, endpoint string) {
	h.record(ctx, []tag.Mutator{tag.Upsert(tag.MustNewKey(EndpointKey), endpoint)}, h.cacheMissCount.M(1), "cache miss count")
}

func (h *ocHandle) RecordCacheEvict(ctx context.Context, reason string, count int) {
	if count == 0 {
		return
	}
	h.record(ctx, []tag.Mutator{tag.Upsert(tag.MustNewKey("reason"), reason)}, h.evictCount.M(int64(count)), "cache evict count")
}

func (h *ocHandle) RecordRefresh(ctx context.Context, added, updated, removed, skippedOverBudget int) {
	h.record(ctx, []tag.Mutator{tag.Upsert(tag.MustNewKey(OutcomeKey), "added")}, h.refreshOutcome.M(int64(added)), "refresh outcome")
	h.record(ctx, []tag.Mutator{tag.Upsert(tag.MustNewKey(OutcomeKey), "updated")}, h.refreshOutcome.M(int64(updated)), "refresh outcome")
	h.record(ctx, []tag.Mutator{tag.Upsert(tag.MustNewKey(OutcomeKey), "removed")}, h.refreshOutcome.M(int64(removed)), "refresh outcome")
	h.record(ctx, []tag.Mutator{tag.Upsert(tag.MustNewKey(OutcomeKey), "skipped_over_budget")}, h.refreshOutcome.M(int64(skippedOverBudget)), "refresh outcome")
}

func (h *ocHandle) record(ctx context.Context, mutators []tag.Mutator, m stats.Measurement, what string) {
	if err := stats.RecordWithTags(ctx, mutators, m); err != nil {
		logger.Errorf("metrics: cannot record %s: %v", what, err)
	}
}
