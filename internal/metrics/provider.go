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
	"net/http"

	ocprom "contrib.go.opencensus.io/exporter/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownFn releases resources a provider set up (exporters, running
// goroutines). Joined shutdown funcs run in sequence and report every
// error they hit rather than stopping at the first.
type ShutdownFn func(ctx context.Context) error

// JoinShutdownFunc combines several ShutdownFns into one that runs all
// of them and joins their errors.
func JoinShutdownFunc(fns ...ShutdownFn) ShutdownFn {
	return func(ctx context.Context) error {
		var errs []error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// Provider bundles the wired Handle with the /metrics HTTP handler and
// a shutdown function, everything NewPrometheusProvider built.
type Provider struct {
	Handle   Handle
	Gather   http.Handler
	Shutdown ShutdownFn
}

// NewPrometheusProvider builds the full belt-and-suspenders metrics
// stack: one prometheus.Registry backing both an OTel MeterProvider
// reader and a legacy OpenCensus exporter, so either instrumentation
// path ends up on the same /metrics page. meterName scopes the OTel
// meter (e.g. "filecached").
func NewPrometheusProvider(meterName string) (*Provider, error) {
	reg := prometheus.NewRegistry()

	otelExporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("metrics: building otel prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(otelExporter))
	otelHandle, err := NewOTelHandle(mp.Meter(meterName))
	if err != nil {
		return nil, fmt.Errorf("metrics: building otel handle: %w", err)
	}

	ocExporter, err := ocprom.NewExporter(ocprom.Options{Registry: reg})
	if err != nil {
		return nil, fmt.Errorf("metrics: building opencensus prometheus exporter: %w", err)
	}
	ocHandle, err := NewOCHandle()
	if err != nil {
		return nil, fmt.Errorf("metrics: building opencensus handle: %w", err)
	}

	return &Provider{
		Handle: Multi(otelHandle, ocHandle),
		Gather: ocExporter,
		Shutdown: JoinShutdownFunc(
			func(ctx context.Context) error { return mp.Shutdown(ctx) },
		),
	}, nil
}
