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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name string, contents string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestScanRecursive_FindsNestedFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abc")
	writeTestFile(t, dir, "sub/b.txt", "xy")

	entries, err := ScanRecursive(dir)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Logical] = true
	}
	assert.True(t, names["a.txt"])
	assert.True(t, names["sub/b.txt"])
}

func TestScanRecursive_SkipsSidecarFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abc")
	writeTestFile(t, dir, SidecarPrefix+"0", "{}")

	entries, err := ScanRecursive(dir)
	require.NoError(t, err)

	for _, e := range entries {
		assert.NotContains(t, e.Logical, SidecarPrefix)
	}
}

func TestScanRecursive_SkipsNamesWithPatternMetacharacters(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abc")
	writeTestFile(t, dir, "weird[1].txt", "abc")

	entries, err := ScanRecursive(dir)
	require.NoError(t, err)

	for _, e := range entries {
		assert.NotEqual(t, "weird[1].txt", e.Logical)
	}
}

func TestScanAllowlist_HonorsDeclaredSegments(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abcdefgh")
	length := int64(4)

	entries := ScanAllowlist(dir, []AllowEntry{
		{Name: "a.txt", Offset: 2, Length: &length},
	})

	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].SegmentOffset)
	assert.Equal(t, int64(4), entries[0].SegmentLength)
}

func TestScanAllowlist_MissingLengthMeansToEOF(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abcdefgh")

	entries := ScanAllowlist(dir, []AllowEntry{{Name: "a.txt"}})

	require.Len(t, entries, 1)
	assert.Equal(t, int64(-1), entries[0].SegmentLength)
}

func TestScanAllowlist_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()

	entries := ScanAllowlist(dir, []AllowEntry{{Name: "nope.txt"}})

	assert.Empty(t, entries)
}
