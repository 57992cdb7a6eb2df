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
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// attrCache memoizes attribute.Set construction per distinct tag
// combination, the same sync.Map-backed trick the rest of the
// OpenTelemetry-instrumented stack uses to avoid reallocating a
// metric.MeasurementOption on every recorded sample.
type attrCache struct {
	sets sync.Map
}

func (c *attrCache) option(key string, build func() attribute.Set) metric.MeasurementOption {
	if v, ok := c.sets.Load(key); ok {
		return v.(metric.MeasurementOption)
	}
	v, _ := c.sets.LoadOrStore(key, metric.WithAttributeSet(build()))
	return v.(metric.MeasurementOption)
}

type otelHandle struct {
	requestCount   metric.Int64Counter
	requestLatency metric.Float64Histogram
	cacheHitCount  metric.Int64Counter
	cacheMissCount metric.Int64Counter
	evictCount     metric.Int64Counter
	refreshOutcome metric.Int64Counter

	endpointMethodSets attrCache
	endpointSets       attrCache
	reasonSets         attrCache
	outcomeSets        attrCache
}

// NewOTelHandle builds a Handle backed by the given otel.Meter. The
// caller owns the MeterProvider the meter came from (construction,
// exporter wiring, and shutdown happen in NewPrometheusProvider).
func NewOTelHandle(meter metric.Meter) (Handle, error) {
	requestCount, err1 := meter.Int64Counter("filecache/request_count",
		metric.WithDescription("The number of requests dispatched, by endpoint, method, and status."))
	requestLatency, err2 := meter.Float64Histogram("filecache/request_latency",
		metric.WithDescription("The latency of a dispatched request."),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(defaultLatencyBuckets...))
	cacheHitCount, err3 := meter.Int64Counter("filecache/cache_hit_count",
		metric.WithDescription("The number of GET/HEAD requests resolved against an existing file."))
	cacheMissCount, err4 := meter.Int64Counter("filecache/cache_miss_count",
		metric.WithDescription("The number of GET/HEAD requests for a file not in the table."))
	evictCount, err5 := meter.Int64Counter("filecache/cache_evict_count",
		metric.WithDescription("The number of files dropped from the table, by reason."))
	refreshOutcome, err6 := meter.Int64Counter("filecache/refresh_outcome_count",
		metric.WithDescription("The number of files each refresh cycle added, updated, removed, or skipped over budget."))

	if err := errors.Join(err1, err2, err3, err4, err5, err6); err != nil {
		return nil, fmt.Errorf("metrics: building otel instruments: %w", err)
	}

	return &otelHandle{
		requestCount:   requestCount,
		requestLatency: requestLatency,
		cacheHitCount:  cacheHitCount,
		cacheMissCount: cacheMissCount,
		evictCount:     evictCount,
		refreshOutcome: refreshOutcome,
	}, nil
}

func (h *otelHandle) RecordRequest(ctx context.Context, endpoint, method string, status int, latency time.Duration) {
	opt := h.endpointMethodSets.option(fmt.Sprintf("%s|%s|%d", endpoint, method, status), func() attribute.Set {
		return attribute.NewSet(
			attribute.String(EndpointKey, endpoint),
			attribute.String(MethodKey, method),
			attribute.Int("status", status),
		)
	})
	h.requestCount.Add(ctx, 1, opt)
	h.requestLatency.Record(ctx, float64(latency.Microseconds())/1000, opt)
}

func (h *otelHandle) RecordCacheHit(ctx context.Context, endpoint string) {
	h.cacheHitCount.Add(ctx, 1, h.endpointSets.option(endpoint, func() attribute.Set {
		return attribute.NewSet(attribute.String(EndpointKey, endpoint))
	}))
}

func (h *otelHandle) RecordCacheMiss(ctx context.Context, endpoint string) {
	h.cacheMissCount.Add(ctx, 1, h.endpointSets.option(endpoint, func() attribute.Set {
		return attribute.NewSet(attribute.String(EndpointKey, endpoint))
	}))
}

func (h *otelHandle) RecordCacheEvict(ctx context.Context, reason string, count int) {
	if count == 0 {
		return
	}
	h.evictCount.Add(ctx, int64(count), h.reasonSets.option(reason, func() attribute.Set {
		return attribute.NewSet(attribute.String("reason", reason))
	}))
}

func (h *otelHandle) RecordRefresh(ctx context.Context, added, updated, removed, skippedOverBudget int) {
	h.refreshOutcome.Add(ctx, int64(added), h.outcomeSets.option("added", func() attribute.Set {
		return attribute.NewSet(attribute.String(OutcomeKey, "added"))
	}))
	h.refreshOutcome.Add(ctx, int64(updated), h.outcomeSets.option("updated", func() attribute.Set {
		return attribute.NewSet(attribute.String(OutcomeKey, "updated"))
	}))
	h.refreshOutcome.Add(ctx, int64(removed), h.outcomeSets.option("removed", func() attribute.Set {
		return attribute.NewSet(attribute.String(OutcomeKey, "removed"))
	}))
	h.refreshOutcome.Add(ctx, int64(skippedOverBudget), h.outcomeSets.option("skipped_over_budget", func() attribute.Set {
		return attribute.NewSet(attribute.String(OutcomeKey, "skipped_over_budget"))
	}))
}

func statusClass(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
