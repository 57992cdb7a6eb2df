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

import "strings"

// applyRedirectRules sets rec.Redirect from the first configured
// redirect rule whose pattern matches rec.Name (spec.md §4.8): the
// portion of the logical name captured by the pattern's single "*"
// wildcard is substituted into the target pattern's own "*".
func applyRedirectRules(rec *FileRecord, rules []RedirectRule) {
	for _, r := range rules {
		if captured, ok := matchWildcard(r.Pattern, rec.Name); ok {
			rec.Redirect = strings.Replace(r.TargetPattern, "*", captured, 1)
			return
		}
	}
}

// redirectPatternsMatchSomething mirrors notifyPatternsMatchSomething
// for redirect rules (spec.md §6, §7: "a write pattern or redirect
// pattern matching zero files" is a fatal init error).
func redirectPatternsMatchSomething(rules []RedirectRule, names []string) (unmatched []string) {
	for _, r := range rules {
		matchedAny := false
		for _, n := range names {
			if _, ok := matchWildcard(r.Pattern, n); ok {
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

// matchWildcard matches name against pattern, which may contain at
// most one "*" capturing everything between a fixed prefix and
// suffix. A pattern with no "*" must match name exactly.
func matchWildcard(pattern, name string) (captured string, ok bool) {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return "", pattern == name
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	if len(name) < len(prefix)+len(suffix) {
		return "", false
	}
	return name[len(prefix) : len(name)-len(suffix)], true
}
