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
	"io"
	"os"
	"path"
	"sort"

	"github.com/fsorigin/filecache/internal/core/replacement"
	"github.com/fsorigin/filecache/internal/logger"
)

// RefreshStats summarizes one refresh cycle for logging/metrics.
type RefreshStats struct {
	Added, Updated, Removed, SkippedOverBudget int
}

// Refresh runs one full scan/reconcile cycle against s (spec.md §4.2,
// §4.4 "Eviction-aware refresh", §4.8 notify-on-change). n may be nil,
// in which case content-change notifications are skipped (used by
// callers, such as tests, that don't wire a transport).
func Refresh(s *State, n Notifier) (RefreshStats, error) {
	s.Toggle = !s.Toggle

	var entries []ScanEntry
	if s.Allowlist != nil {
		entries = ScanAllowlist(s.Root, s.Allowlist)
	} else {
		var err error
		entries, err = ScanRecursive(s.Root)
		if err != nil {
			return RefreshStats{}, err
		}
	}

	if s.Replacement != nil {
		orderByPriority(entries, s.Replacement)
	}

	var stats RefreshStats
	for _, e := range entries {
		outcome, err := admitOne(s, e)
		if err != nil {
			logger.Warnf("core: refresh: skipping %q: %v", e.Logical, err)
			continue
		}

		switch outcome {
		case admitSkippedOverBudget:
			stats.SkippedOverBudget++
			continue
		case admitNew:
			stats.Added++
		case admitUpdated:
			stats.Updated++
		}

		rec, _ := s.Table.LookupLogical(e.Logical)
		rec.Toggle = s.Toggle
		if (outcome == admitUpdated || outcome == admitNew) && n != nil {
			notifyRecord(n, rec)
		}
	}

	removeStale(s, &stats)

	if s.ReplaceIndexPath != "" && s.Replacement != nil {
		if err := replacement.WriteSidecar(s.ReplaceIndexPath, s.Replacement); err != nil {
			logger.Errorf("core: refresh: failed to persist replacement index: %v", err)
		}
	}

	return stats, nil
}

// orderByPriority sorts scan entries by the replacement engine's
// current priority key descending, size ascending as tiebreak
// (spec.md §4.4 step 3), so the admission loop in Refresh preferably
// keeps high-priority files inside the budget.
func orderByPriority(entries []ScanEntry, eng replacement.Engine) {
	sort.SliceStable(entries, func(i, j int) bool {
		ki := eng.PriorityKey(entries[i].Logical)
		kj := eng.PriorityKey(entries[j].Logical)
		if ki != kj {
			return ki > kj
		}
		return entries[i].Size < entries[j].Size
	})
}

// writeCapForName computes a newly admitted record's write capability
// from the configured write_truncate/write_append pattern lists
// (spec.md §6): a name matching any truncate pattern gets WriteTruncate,
// matching any append pattern gets WriteAppend, and both can apply at
// once.
func writeCapForName(name string, truncatePatterns, appendPatterns []string) WriteCap {
	var w WriteCap
	for _, p := range truncatePatterns {
		if matched, _ := path.Match(p, name); matched {
			w |= WriteTruncate
			break
		}
	}
	for _, p := range appendPatterns {
		if matched, _ := path.Match(p, name); matched {
			w |= WriteAppend
			break
		}
	}
	return w
}

// writePatternsMatchSomething mirrors notifyPatternsMatchSomething for
// the write_truncate/write_append pattern lists (spec.md §6, §7: "a
// write pattern ... matching zero files" is a fatal init error).
func writePatternsMatchSomething(patterns []string, names []string) (unmatched []string) {
	for _, p := range patterns {
		matchedAny := false
		for _, n := range names {
			if matched, _ := path.Match(p, n); matched {
				matchedAny = true
				break
			}
		}
		if !matchedAny {
			unmatched = append(unmatched, p)
		}
	}
	return unmatched
}

// admitOutcome is what admitOne did with one scan entry.
type admitOutcome int

const (
	admitSkippedOverBudget admitOutcome = iota
	admitUnchanged
	admitNew
	admitUpdated
)

// admitOne decides whether entry fits the budget and, if so, (re)reads
// its contents when its mtime has changed and installs the resulting
// record.
func admitOne(s *State, e ScanEntry) (admitOutcome, error) {
	existing, hadRecord := s.Table.LookupLogical(e.Logical)

	oldSize := int64(0)
	if hadRecord {
		oldSize = existing.Size
	}

	mtimeChanged := !hadRecord || !existing.MTimeI.MTime.Equal(e.MTime)

	newSize := e.Size
	if !mtimeChanged {
		newSize = oldSize // nothing to re-read; size can't have changed without mtime changing
	}

	if _, ok := s.Budget.Admit(oldSize, newSize); !ok {
		logger.Warnf("core: refresh: %q would exceed the byte ceiling, skipping", e.Logical)
		return admitSkippedOverBudget, nil
	}

	if !mtimeChanged {
		return admitUnchanged, nil
	}

	contents, err := readSegment(e)
	if err != nil {
		return admitSkippedOverBudget, err
	}

	if _, ok := s.Budget.Admit(oldSize, int64(len(contents))); !ok {
		logger.Warnf("core: refresh: %q would exceed the byte ceiling after read, skipping", e.Logical)
		return admitSkippedOverBudget, nil
	}

	if hadRecord {
		s.Budget.Apply(oldSize, int64(len(contents)))
		existing.Contents = contents
		existing.Size = int64(len(contents))
		existing.MTimeI = existing.MTimeI.NextForMTime(e.MTime)
		existing.Access = e.Access
		existing.Path = e.AbsPath
		if s.Replacement != nil {
			s.Replacement.RecordHit(e.Logical, existing.Size)
		}
		return admitUpdated, nil
	}

	rec := &FileRecord{
		Name:          e.Logical,
		Contents:      contents,
		Size:          int64(len(contents)),
		Path:          e.AbsPath,
		Headers:       staticHeaders(e.Logical, s.UseContentTypes, s.UseContentDisposition),
		Access:        e.Access,
		MTimeI:        MTimeI{MTime: e.MTime},
		Toggle:        s.Toggle,
		SegmentOffset: e.SegmentOffset,
		SegmentLength: e.SegmentLength,
		Write:         writeCapForName(e.Logical, s.WriteTruncatePatterns, s.WriteAppendPatterns),
	}
	applyNotifyRules(rec, s.NotifyOne, s.NotifyAll)
	applyRedirectRules(rec, s.Redirects)

	s.Budget.Apply(0, rec.Size)
	s.Table.Add(rec)
	if s.Replacement != nil {
		s.Replacement.RecordAdmit(e.Logical, rec.Size)
	}
	return admitNew, nil
}

// readSegment reads the bytes a ScanEntry selects: the whole file in
// recursive mode, or the configured byte window in allow-list mode.
func readSegment(e ScanEntry) ([]byte, error) {
	if e.SegmentOffset == 0 && e.SegmentLength == -1 {
		return os.ReadFile(e.AbsPath)
	}

	f, err := os.Open(e.AbsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(e.SegmentOffset, 0); err != nil {
		return nil, err
	}
	if e.SegmentLength < 0 {
		return io.ReadAll(f)
	}
	return io.ReadAll(io.LimitReader(f, e.SegmentLength))
}

// removeStale removes any table record untouched by this refresh
// cycle and without a declared write capability (spec.md §3
// lifecycle: "write-declared records persist as empty files through
// transient filesystem absence").
func removeStale(s *State, stats *RefreshStats) {
	for _, rec := range s.Table.Records() {
		if rec.Toggle == s.Toggle {
			continue
		}
		if rec.Write != WriteNone {
			continue
		}

		s.Budget.Apply(rec.Size, 0)
		s.Table.Remove(rec.Name)
		if s.Replacement != nil {
			s.Replacement.RecordRemove(rec.Name)
		}
		stats.Removed++
	}
}
