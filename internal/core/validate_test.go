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
	"github.com/stretchr/testify/require"
)

func TestValidatePatterns_NoRulesIsFine(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abc")
	s := newTestState(t, dir)
	_, err := Refresh(s, nil)
	require.NoError(t, err)

	assert.NoError(t, ValidatePatterns(s))
}

func TestValidatePatterns_ReportsEveryUnmatchedPattern(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "abc")
	s := newTestState(t, dir)
	s.NotifyOne = []NotifyRule{{Pattern: "missing-notify", Target: "/cache/x/post"}}
	s.WriteTruncatePatterns = []string{"missing-write"}
	s.Redirects = []RedirectRule{{Pattern: "missing-redirect/*", TargetPattern: "/cache/*/get"}}
	_, err := Refresh(s, nil)
	require.NoError(t, err)

	err = ValidatePatterns(s)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Detail, "missing-notify")
	assert.Contains(t, cfgErr.Detail, "missing-write")
	assert.Contains(t, cfgErr.Detail, "missing-redirect/*")
}

func TestValidatePatterns_RejectsWritePatternOnReadOnlyTarget(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "readonly.bin", "abc")
	s := newTestState(t, dir)
	s.WriteAppendPatterns = []string{"readonly.bin"}
	_, err := Refresh(s, nil)
	require.NoError(t, err)

	rec, ok := s.Table.LookupLogical("readonly.bin")
	require.True(t, ok)
	require.Equal(t, WriteAppend, rec.Write)
	rec.Access = AccessRead // simulate the scanner's open-probe finding no write access

	err = ValidatePatterns(s)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "eacces", cfgErr.Code)
	assert.Contains(t, cfgErr.Detail, "readonly.bin")
}

func TestWriteTargetsNotWritable(t *testing.T) {
	writable := &FileRecord{Name: "a.bin", Write: WriteTruncate, Access: AccessReadWrite}
	readOnly := &FileRecord{Name: "b.bin", Write: WriteAppend, Access: AccessRead}
	noWriteDeclared := &FileRecord{Name: "c.bin", Write: WriteNone, Access: AccessRead}

	bad := writeTargetsNotWritable([]*FileRecord{writable, readOnly, noWriteDeclared})
	assert.Equal(t, []string{"b.bin"}, bad)
}
