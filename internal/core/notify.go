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
	"path"
	"time"

	"github.com/fsorigin/filecache/internal/logger"
)

// Notifier is the dispatching framework's delivery surface for
// spec.md §4.9's file_notify entries: a unicast or multicast send of
// body to target, bounded by timeout, at the given priority.
type Notifier interface {
	Send(target string, multicast bool, timeout time.Duration, priority int, body []byte) error
}

func notifyRecord(n Notifier, rec *FileRecord) {
	for _, sub := range rec.Notify {
		if err := n.Send(sub.Name, sub.Multicast, sub.Timeout, sub.Priority, rec.Contents); err != nil {
			logger.Warnf("core: notify %q for %q failed: %v", sub.Name, rec.Name, err)
		}
	}
}

// applyNotifyRules assigns NotifySub entries to every record whose
// logical name matches a configured notify_one/notify_all pattern
// (spec.md §6). Called by admitOne for every newly admitted record,
// before its redirect rules are applied.
func applyNotifyRules(rec *FileRecord, oneRules, allRules []NotifyRule) {
	for _, r := range oneRules {
		if matched, _ := path.Match(r.Pattern, rec.Name); matched {
			rec.Notify = append(rec.Notify, NotifySub{
				Multicast: false,
				Name:      r.Target,
				Timeout:   r.Timeout,
				Priority:  r.Priority,
			})
		}
	}
	for _, r := range allRules {
		if matched, _ := path.Match(r.Pattern, rec.Name); matched {
			rec.Notify = append(rec.Notify, NotifySub{
				Multicast: true,
				Name:      r.Target,
				Timeout:   r.Timeout,
				Priority:  r.Priority,
			})
		}
	}
}

// notifyPatternsMatchSomething returns every pattern in rules that
// matches none of the given logical names, for the init-time
// "pattern matched zero files" failure spec.md §6 requires.
func notifyPatternsMatchSomething(rules []NotifyRule, names []string) (unmatched []string) {
	for _, r := range rules {
		matchedAny := false
		for _, n := range names {
			if matched, _ := path.Match(r.Pattern, n); matched {
				matchedAny = true
				break
			}
		}
		if !matchedAny {
			unmatched = append(unmatched, r.Pattern)
		}
	}
	return unmatched
}
