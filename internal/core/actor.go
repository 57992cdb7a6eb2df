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
	"context"
	"sync"
	"time"

	"github.com/fsorigin/filecache/internal/logger"
	"github.com/fsorigin/filecache/internal/metrics"
)

// Actor serializes every mutation of a State behind a single goroutine
// (spec.md §5: "the actor owns its state; nothing outside the actor
// goroutine may read or write it"). Requests, refresh ticks, and
// append-timeout firings are all ordinary messages on the same inbox,
// so the three can never race with each other.
type Actor struct {
	state   *State
	n       Notifier
	metrics metrics.Handle

	inbox chan actorMessage

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// actorMessage is the tagged sum of everything the actor loop accepts
// (spec.md §9: "a tagged sum over {options, head, get, put, post,
// redirect}" describes one request's shape; the actor adds the three
// internal message kinds that drive it: refresh tick, append-timeout
// firing, and status query).
type actorMessage interface {
	isActorMessage()
}

type requestMsg struct {
	req   Request
	reply chan Response
}

func (requestMsg) isActorMessage() {}

type refreshTickMsg struct{}

func (refreshTickMsg) isActorMessage() {}

// timerFiredMsg carries a scheduleTimeout callback back onto the
// actor's own inbox, so a per-id append timeout runs serialized with
// every other mutation of State instead of racing it from the bare
// timer goroutine it was armed on.
type timerFiredMsg struct {
	fire func()
}

func (timerFiredMsg) isActorMessage() {}

// statusMsg requests a StatusSnapshot of the actor's State, read and
// built on the actor's own goroutine so the status_endpoint (see
// SPEC_FULL.md's supplemented features) never touches State directly.
type statusMsg struct {
	reply chan StatusSnapshot
}

func (statusMsg) isActorMessage() {}

// StatusSnapshot is the diagnostic view exposed by the optional
// status_endpoint: current byte usage against the configured ceiling,
// how many names are currently served, and which replacement policy
// (if any) is active.
type StatusSnapshot struct {
	BudgetUsage   int64
	BudgetCeiling *int64
	FileCount     int
	Replacement   string
}

// NewActor constructs an Actor around state, wiring state.ScheduleTimeout
// so dispatchPost's per-id append timers deliver their expiry back
// through this actor's own inbox instead of running inline on whatever
// goroutine the timer fires on.
func NewActor(state *State, n Notifier) *Actor {
	a := &Actor{
		state:   state,
		n:       n,
		metrics: metrics.NewNoopHandle(),
		inbox:   make(chan actorMessage, 64),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	state.ScheduleTimeout = a.scheduleTimeout
	return a
}

// WithMetrics attaches h as the destination for this actor's request,
// cache hit/miss, eviction, and refresh-outcome measurements, replacing
// the no-op default. Call before Run.
func (a *Actor) WithMetrics(h metrics.Handle) *Actor {
	a.metrics = h
	return a
}

// Run processes messages until Stop is called. It is meant to be the
// body of the single goroutine that owns this Actor's State; callers
// typically do "go actor.Run()" once at startup.
func (a *Actor) Run() {
	defer close(a.done)

	var refreshCh <-chan time.Time
	if a.state.RefreshInterval > 0 {
		refreshCh = a.state.Clock.After(a.state.RefreshInterval)
	}

	for {
		select {
		case <-a.stop:
			return
		case <-refreshCh:
			a.handle(refreshTickMsg{})
			refreshCh = a.state.Clock.After(a.state.RefreshInterval)
		case msg := <-a.inbox:
			a.handle(msg)
		}
	}
}

// Stop signals Run to return and waits for it to do so.
func (a *Actor) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
	<-a.done
}

// Handle submits req to the actor and blocks for its Response. Safe to
// call from any goroutine; requests are serialized against each other
// and against refresh ticks and append timeouts by Run's select loop.
func (a *Actor) Handle(req Request) Response {
	reply := make(chan Response, 1)
	a.inbox <- requestMsg{req: req, reply: reply}
	return <-reply
}

// Status returns a snapshot of the actor's State. Safe to call from
// any goroutine, same as Handle.
func (a *Actor) Status() StatusSnapshot {
	reply := make(chan StatusSnapshot, 1)
	a.inbox <- statusMsg{reply: reply}
	return <-reply
}

func (a *Actor) handle(msg actorMessage) {
	switch m := msg.(type) {
	case requestMsg:
		start := a.state.Clock.Now()
		resp := Dispatch(a.state, a.n, m.req)
		a.recordRequest(m.req, resp, a.state.Clock.Now().Sub(start))
		m.reply <- resp
	case refreshTickMsg:
		stats, err := Refresh(a.state, a.n)
		if err != nil {
			logger.Errorf("core: actor: refresh failed: %v", err)
			return
		}
		a.metrics.RecordRefresh(context.Background(), stats.Added, stats.Updated, stats.Removed, stats.SkippedOverBudget)
		if stats.Removed > 0 {
			a.metrics.RecordCacheEvict(context.Background(), "removed_on_refresh", stats.Removed)
		}
		logger.Debugf("core: actor: refresh complete: +%d ~%d -%d (%d over budget)",
			stats.Added, stats.Updated, stats.Removed, stats.SkippedOverBudget)
	case timerFiredMsg:
		m.fire()
	case statusMsg:
		m.reply <- a.snapshotStatus()
	default:
		panic((&UnknownMessageError{Kind: "unrecognized actorMessage"}).Error())
	}
}

// recordRequest tags a dispatched request's measurements by its
// logical method (the path suffix after the last slash, e.g. "get" or
// "post") so a /options, /head, /get, /put, /post, or redirect target
// can be told apart on a dashboard.
func (a *Actor) recordRequest(req Request, resp Response, latency time.Duration) {
	ctx := context.Background()
	method := req.Name
	if i := lastSlash(req.Name); i >= 0 {
		method = req.Name[i+1:]
	}
	a.metrics.RecordRequest(ctx, req.Name, method, resp.Status, latency)

	switch method {
	case MethodGet, MethodHead:
		switch resp.Status {
		case 404:
			a.metrics.RecordCacheMiss(ctx, req.Name)
		case 200, 206, 304:
			a.metrics.RecordCacheHit(ctx, req.Name)
		}
	}
}

func (a *Actor) snapshotStatus() StatusSnapshot {
	snap := StatusSnapshot{
		BudgetUsage:   a.state.Budget.Usage,
		BudgetCeiling: a.state.Budget.Ceiling,
		FileCount:     len(a.state.Table.Records()),
	}
	if a.state.Replacement != nil {
		snap.Replacement = string(a.state.Replacement.Kind())
	}
	return snap
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

// scheduleTimeout implements State.ScheduleTimeout: it arms a clock
// timer before returning, waits for it on its own goroutine, and
// delivers the expiry as a timerFiredMsg on the actor's inbox, so fire
// always runs on the actor's own goroutine, serialized with every
// request and refresh tick.
func (a *Actor) scheduleTimeout(d time.Duration, fire func()) func() bool {
	stopTimer := make(chan struct{})
	var once sync.Once
	cancel := func() bool {
		once.Do(func() { close(stopTimer) })
		return true
	}

	expired := a.state.Clock.After(d)
	go func() {
		select {
		case <-expired:
			select {
			case <-stopTimer:
			default:
				select {
				case a.inbox <- timerFiredMsg{fire: fire}:
				case <-a.stop:
				}
			}
		case <-stopTimer:
		}
	}()

	return cancel
}
