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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchWildcard(t *testing.T) {
	captured, ok := matchWildcard("old/*", "old/report.csv")
	assert.True(t, ok)
	assert.Equal(t, "report.csv", captured)

	_, ok = matchWildcard("old/*", "new/report.csv")
	assert.False(t, ok)

	captured, ok = matchWildcard("exact.txt", "exact.txt")
	assert.True(t, ok)
	assert.Equal(t, "", captured)

	_, ok = matchWildcard("exact.txt", "other.txt")
	assert.False(t, ok)

	captured, ok = matchWildcard("a*b", "axxxb")
	assert.True(t, ok)
	assert.Equal(t, "xxx", captured)

	_, ok = matchWildcard("a*b", "ax")
	assert.False(t, ok)
}

func TestApplyRedirectRules_FirstMatchWins(t *testing.T) {
	rec := &FileRecord{Name: "old/report.csv"}
	applyRedirectRules(rec, []RedirectRule{
		{Pattern: "new/*", TargetPattern: "/cache/*/get"},
		{Pattern: "old/*", TargetPattern: "/cache/new/*/get"},
		{Pattern: "old/*", TargetPattern: "/cache/other/*/get"},
	})
	assert.Equal(t, "/cache/new/report.csv/get", rec.Redirect)
}

func TestApplyRedirectRules_NoMatchLeavesRedirectEmpty(t *testing.T) {
	rec := &FileRecord{Name: "a.txt"}
	applyRedirectRules(rec, []RedirectRule{{Pattern: "old/*", TargetPattern: "/cache/*/get"}})
	assert.Empty(t, rec.Redirect)
}

func TestRedirectPatternsMatchSomething(t *testing.T) {
	unmatched := redirectPatternsMatchSomething(
		[]RedirectRule{{Pattern: "old/*"}, {Pattern: "missing/*"}},
		[]string{"old/a.txt", "b.txt"},
	)
	assert.Equal(t, []string{"missing/*"}, unmatched)
}

func TestWritePatternsMatchSomething(t *testing.T) {
	unmatched := writePatternsMatchSomething([]string{"up.bin", "missing.bin"}, []string{"up.bin", "other.txt"})
	assert.Equal(t, []string{"missing.bin"}, unmatched)
}
