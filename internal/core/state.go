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

import (
	"time"

	"github.com/fsorigin/filecache/internal/clock"
	"github.com/fsorigin/filecache/internal/core/httpcache"
	"github.com/fsorigin/filecache/internal/core/replacement"
)

// NotifyRule is one configured notify_one/notify_all entry: files
// whose logical name matches Pattern get a NotifySub appended
// pointing at Target (spec.md §4.9, §6).
type NotifyRule struct {
	Pattern   string
	Target    string
	Multicast bool
	Timeout   time.Duration
	Priority  int
}

// RedirectRule is one configured redirect entry (spec.md §4.8):
// files matching Pattern get Redirect set to TargetPattern with the
// pattern's captured parameters substituted in.
type RedirectRule struct {
	Pattern       string
	TargetPattern string
}

// State is the actor's entire mutable world (spec.md §3 "Global
// state", §5: "the actor owns its state"). Nothing outside the actor
// goroutine may read or write it.
type State struct {
	Prefix string
	Root   string

	MethodRoutingEnabled bool
	UseContentTypes      bool
	UseContentDisposition bool

	Budget *Budget

	RefreshInterval time.Duration
	Toggle          bool
	Allowlist       []AllowEntry // nil means recursive scan mode

	Cache        httpcache.CacheConfig
	ClockSkewMax time.Duration

	Table *FileTable

	Replacement      replacement.Engine // nil disables eviction-aware refresh
	ReplaceIndexPath string             // empty disables sidecar persistence

	WriteTruncatePatterns []string
	WriteAppendPatterns   []string
	Redirects             []RedirectRule
	NotifyOne             []NotifyRule
	NotifyAll             []NotifyRule
	NotifyOnStart         bool

	AppendTimeout time.Duration

	Clock clock.Clock

	// ScheduleTimeout arranges for fire to run after d elapses and
	// returns a cancel function, safe to call even after fire has
	// already run (spec.md §9 "Timer handles ... cancelling a timer
	// must be safe if the timer has already fired"). Wired by Actor at
	// construction; nil in tests that never start a non-terminal
	// append.
	ScheduleTimeout func(d time.Duration, fire func()) (cancel func() bool)
}
