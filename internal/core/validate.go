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
	"errors"
	"fmt"
	"strings"
)

// ValidatePatterns checks every configured notify_one/notify_all,
// write_truncate/write_append, and redirect pattern against the
// logical names currently in s.Table, and cross-checks every record a
// write pattern matched against its observed filesystem access mode
// (spec.md §6/§7: "a notify/write/redirect pattern matching zero
// files" and "a read target whose access mode is not read-write but
// writes were requested" are both fatal initialization errors, not
// per-request ones). Call once after the first Refresh has populated
// the table.
func ValidatePatterns(s *State) error {
	names := make([]string, 0, len(s.Table.Records()))
	for _, rec := range s.Table.Records() {
		names = append(names, rec.Name)
	}

	var bad []string
	bad = append(bad, notifyPatternsMatchSomething(s.NotifyOne, names)...)
	bad = append(bad, notifyPatternsMatchSomething(s.NotifyAll, names)...)
	bad = append(bad, writePatternsMatchSomething(s.WriteTruncatePatterns, names)...)
	bad = append(bad, writePatternsMatchSomething(s.WriteAppendPatterns, names)...)
	bad = append(bad, redirectPatternsMatchSomething(s.Redirects, names)...)

	var errs []error
	if len(bad) > 0 {
		errs = append(errs, &ConfigError{
			Code:   "enoent",
			Detail: fmt.Sprintf("pattern(s) matched zero files: %s", strings.Join(bad, ", ")),
		})
	}

	if notWritable := writeTargetsNotWritable(s.Table.Records()); len(notWritable) > 0 {
		errs = append(errs, &ConfigError{
			Code:   "eacces",
			Detail: fmt.Sprintf("write pattern matched read-only target(s): %s", strings.Join(notWritable, ", ")),
		})
	}

	return errors.Join(errs...)
}

// writeTargetsNotWritable returns the logical name of every record a
// write_truncate/write_append pattern matched whose observed
// AccessMode (set by the scanner's open probe, not just its mode
// bits) can't actually be written to.
func writeTargetsNotWritable(records []*FileRecord) (bad []string) {
	for _, rec := range records {
		if rec.Write != WriteNone && !rec.Access.CanWrite() {
			bad = append(bad, rec.Name)
		}
	}
	return bad
}
