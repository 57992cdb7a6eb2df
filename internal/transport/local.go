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

// Package transport is the dispatching framework core.Actor expects
// to sit behind: it turns a resolved endpoint name into a request
// delivered to the right Actor, and turns a notify target name back
// into a unicast or multicast send. Local is a same-process
// implementation for a single cache instance; it also doubles as the
// Subscriber the file table calls as endpoints come and go.
package transport

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsorigin/filecache/internal/core"
)

// Local routes requests to a single, in-process Actor, and answers
// notify sends to any of that actor's own endpoints without leaving
// the process. Multiple filecached instances sharing one process -
// the common case is a single Config per process, but tests build
// several - register under distinct prefixes on a shared Local so
// notify/redirect targets can cross between them.
type Local struct {
	mu        sync.RWMutex
	actors    map[string]*core.Actor // endpoint name prefix -> owning actor
	subscribed map[string]bool
}

// NewLocal constructs an empty router.
func NewLocal() *Local {
	return &Local{
		actors:     make(map[string]*core.Actor),
		subscribed: make(map[string]bool),
	}
}

// Register makes every endpoint name under prefix route to actor.
// Call once per cache instance before its first refresh.
func (l *Local) Register(prefix string, actor *core.Actor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actors[prefix] = actor
}

// Subscribe and Unsubscribe implement core.Subscriber: the file table
// calls these as endpoints are added, removed, or change write
// capability. Local tracks the subscribed names so a multicast Send
// can enumerate them; routing a request or unicast send to its actor
// is done by prefix lookup in Handle/Send.
func (l *Local) Subscribe(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribed[name] = true
}

func (l *Local) Unsubscribe(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.subscribed, name)
}

// Handle finds the actor owning req.Name's prefix and hands req to it.
func (l *Local) Handle(req core.Request) (core.Response, error) {
	actor, ok := l.actorFor(req.Name)
	if !ok {
		return core.Response{Status: 404, Headers: map[string]string{}}, nil
	}
	return actor.Handle(req), nil
}

// Send implements core.Notifier: it resolves target to an actor by
// prefix and delivers body as a request to the endpoint name target
// (whose method suffix decides how the actor handles it). Multicast
// sends go to every subscribed endpoint name that begins with target,
// one request each; unicast sends go to exactly the one owning actor. A target with no matching
// registration is a no-op in a single-process deployment, tolerating
// an unreachable pub/sub peer rather than failing the request that
// triggered the notification.
func (l *Local) Send(target string, multicast bool, timeout time.Duration, priority int, body []byte) error {
	if multicast {
		return l.sendAll(target, timeout, body)
	}
	return l.sendOne(target, timeout, body)
}

func (l *Local) sendOne(target string, timeout time.Duration, body []byte) error {
	actor, ok := l.actorFor(target)
	if !ok {
		return nil
	}
	resp := actor.Handle(core.Request{Name: target, Body: body, Timeout: timeout})
	if resp.Status >= 400 {
		return fmt.Errorf("transport: notify %q: status %d", target, resp.Status)
	}
	return nil
}

func (l *Local) sendAll(targetPrefix string, timeout time.Duration, body []byte) error {
	l.mu.RLock()
	names := make([]string, 0, len(l.subscribed))
	for n := range l.subscribed {
		if len(n) >= len(targetPrefix) && n[:len(targetPrefix)] == targetPrefix {
			names = append(names, n)
		}
	}
	l.mu.RUnlock()

	var firstErr error
	for _, n := range names {
		if err := l.sendOne(n, timeout, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (l *Local) actorFor(name string) (*core.Actor, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var best *core.Actor
	bestLen := -1
	for prefix, actor := range l.actors {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix && len(prefix) > bestLen {
			best = actor
			bestLen = len(prefix)
		}
	}
	return best, best != nil
}
