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

// Package clock provides the time source the core actor uses for
// mtime_i bookkeeping, the refresh ticker, and per-id multipart
// timeouts, so that all three can be driven deterministically in
// tests.
package clock

import "time"

// Clock is the time source used throughout internal/core. Production
// code uses RealClock; tests use SimulatedClock so that refresh
// intervals and multipart timeouts can be advanced without sleeping.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel on which the current time is sent once d
	// has elapsed according to this clock.
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock atop the standard library.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
