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

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrashWriter_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filecached.crash.log")
	w := NewCrashWriter(path)

	fmt.Fprintf(w, "panic: boom\nstack\n")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "panic: boom\nstack\n", string(content))
}

func TestCrashWriter_AppendsAcrossWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filecached.crash.log")
	w := NewCrashWriter(path)

	fmt.Fprintf(w, "first\n")
	fmt.Fprintf(w, "second\n")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(content))
}
