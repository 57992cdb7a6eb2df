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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsorigin/filecache/internal/core/replacement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	sent []string
}

func (r *recordingNotifier) Send(target string, multicast bool, timeout time.Duration, priority int, body []byte) error {
	r.sent = append(r.sent, target)
	return nil
}

func newTestState(t *testing.T, dir string) *State {
	t.Helper()
	sub := newFakeSubscriber()
	return &State{
		Root:                 dir,
		MethodRoutingEnabled: true,
		Budget:               &Budget{},
		Table:                NewFileTable("/cache/", true, sub),
	}
}

func TestRefresh_AddsNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abc")
	s := newTestState(t, dir)

	stats, err := Refresh(s, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Added)
	rec, ok := s.Table.LookupLogical("a.txt")
	require.True(t, ok)
	assert.Equal(t, "abc", string(rec.Contents))
	assert.Equal(t, int64(3), s.Budget.Usage)
}

func TestRefresh_DetectsContentChangeAndNotifies(t *testing.T) {
	dir := t.TempDir()
	p := writeTestFile(t, dir, "a.txt", "abc")
	s := newTestState(t, dir)
	_, err := Refresh(s, nil)
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.WriteFile(p, []byte("abcdef"), 0o644))
	require.NoError(t, os.Chtimes(p, future, future))

	notifier := &recordingNotifier{}
	stats, err := Refresh(s, notifier)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Updated)
	rec, _ := s.Table.LookupLogical("a.txt")
	assert.Equal(t, "abcdef", string(rec.Contents))
}

func TestRefresh_RemovesVanishedFilesWithoutWriteCapability(t *testing.T) {
	dir := t.TempDir()
	p := writeTestFile(t, dir, "a.txt", "abc")
	s := newTestState(t, dir)
	_, err := Refresh(s, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(p))

	stats, err := Refresh(s, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Removed)
	_, ok := s.Table.LookupLogical("a.txt")
	assert.False(t, ok)
	assert.Equal(t, int64(0), s.Budget.Usage)
}

func TestRefresh_WriteDeclaredRecordSurvivesTransientAbsence(t *testing.T) {
	dir := t.TempDir()
	p := writeTestFile(t, dir, "a.txt", "abc")
	s := newTestState(t, dir)
	_, err := Refresh(s, nil)
	require.NoError(t, err)
	s.Table.SetWriteCap("a.txt", WriteTruncate)

	require.NoError(t, os.Remove(p))
	stats, err := Refresh(s, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Removed)
	_, ok := s.Table.LookupLogical("a.txt")
	assert.True(t, ok)
}

func TestRefresh_SkipsCandidateThatWouldExceedCeiling(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abcdefghij") // 10 bytes
	s := newTestState(t, dir)
	ceiling := int64(5)
	s.Budget.Ceiling = &ceiling

	stats, err := Refresh(s, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SkippedOverBudget)
	_, ok := s.Table.LookupLogical("a.txt")
	assert.False(t, ok)
}

func TestRefresh_AllowlistModeHonorsSegment(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "0123456789")
	length := int64(3)
	s := newTestState(t, dir)
	s.Allowlist = []AllowEntry{{Name: "a.txt", Offset: 2, Length: &length}}

	_, err := Refresh(s, nil)
	require.NoError(t, err)

	rec, ok := s.Table.LookupLogical("a.txt")
	require.True(t, ok)
	assert.Equal(t, "234", string(rec.Contents))
}

func TestRefresh_PersistsReplacementSidecarWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abc")
	s := newTestState(t, dir)
	s.Replacement = replacement.NewLRU()
	s.ReplaceIndexPath = filepath.Join(dir, SidecarPrefix+"0")

	_, err := Refresh(s, nil)
	require.NoError(t, err)

	_, err = os.Stat(s.ReplaceIndexPath)
	assert.NoError(t, err)
}

func TestRefresh_AppliesWriteCapPatternsOnAdmission(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "up.bin", "abc")
	writeTestFile(t, dir, "report.csv", "x,y")
	s := newTestState(t, dir)
	s.WriteTruncatePatterns = []string{"report.csv"}
	s.WriteAppendPatterns = []string{"up.bin"}

	_, err := Refresh(s, nil)
	require.NoError(t, err)

	up, ok := s.Table.LookupLogical("up.bin")
	require.True(t, ok)
	assert.Equal(t, WriteAppend, up.Write)

	report, ok := s.Table.LookupLogical("report.csv")
	require.True(t, ok)
	assert.Equal(t, WriteTruncate, report.Write)

	_, ok = s.Table.Lookup("/cache/up.bin/put")
	assert.False(t, ok, "up.bin only declared append, not truncate")
	_, ok = s.Table.Lookup("/cache/up.bin/post")
	assert.True(t, ok)
}

func TestRefresh_AppliesRedirectRulesOnAdmission(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "old/report.csv", "x")
	s := newTestState(t, dir)
	s.Redirects = []RedirectRule{{Pattern: "old/*", TargetPattern: "/cache/new/*/get"}}

	_, err := Refresh(s, nil)
	require.NoError(t, err)

	rec, ok := s.Table.LookupLogical("old/report.csv")
	require.True(t, ok)
	assert.Equal(t, "/cache/new/report.csv/get", rec.Redirect)
}
