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

package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LoggerTest struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

func redirectLogsToBuffer(buf *bytes.Buffer, format string, level string) {
	programLevel := new(slog.LevelVar)
	defaultLoggerFactory = &factory{format: format}
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(buf, programLevel, ""))
	setLoggingLevel(level, programLevel)
}

func runAtLevel(format, level string) []string {
	var buf bytes.Buffer
	redirectLogsToBuffer(&buf, format, level)

	var fns = []func(){
		func() { Tracef("trace-msg") },
		func() { Debugf("debug-msg") },
		func() { Infof("info-msg") },
		func() { Warnf("warn-msg") },
		func() { Errorf("error-msg") },
	}
	var out []string
	for _, fn := range fns {
		fn()
		out = append(out, buf.String())
		buf.Reset()
	}
	return out
}

func (t *LoggerTest) TestTextFormat_LevelError() {
	out := runAtLevel("text", ERROR)
	t.Equal("", out[0])
	t.Equal("", out[1])
	t.Equal("", out[2])
	t.Equal("", out[3])
	t.Regexp(regexp.MustCompile(`severity=ERROR msg=error-msg`), out[4])
}

func (t *LoggerTest) TestTextFormat_LevelTrace() {
	out := runAtLevel("text", TRACE)
	t.Regexp(regexp.MustCompile(`severity=TRACE msg=trace-msg`), out[0])
	t.Regexp(regexp.MustCompile(`severity=DEBUG msg=debug-msg`), out[1])
	t.Regexp(regexp.MustCompile(`severity=INFO msg=info-msg`), out[2])
	t.Regexp(regexp.MustCompile(`severity=WARNING msg=warn-msg`), out[3])
	t.Regexp(regexp.MustCompile(`severity=ERROR msg=error-msg`), out[4])
}

func (t *LoggerTest) TestJSONFormat_LevelInfo() {
	out := runAtLevel("json", INFO)
	t.Equal("", out[0])
	t.Equal("", out[1])
	t.Contains(out[2], `"severity":"INFO"`)
	t.Contains(out[2], `"msg":"info-msg"`)
	t.Contains(out[3], `"severity":"WARNING"`)
	t.Contains(out[4], `"severity":"ERROR"`)
}

func (t *LoggerTest) TestJSONFormat_LevelOff() {
	out := runAtLevel("json", OFF)
	for _, o := range out {
		t.Equal("", o)
	}
}

func TestSeverityFromString(t *testing.T) {
	assert.Equal(t, LevelOff, severityFromString(OFF))
	assert.Equal(t, LevelError, severityFromString(ERROR))
	assert.Equal(t, LevelWarning, severityFromString(WARNING))
	assert.Equal(t, LevelInfo, severityFromString(INFO))
	assert.Equal(t, LevelDebug, severityFromString(DEBUG))
	assert.Equal(t, LevelTrace, severityFromString(TRACE))
	// Unknown strings fall back to INFO rather than panicking.
	assert.Equal(t, LevelInfo, severityFromString("bogus"))
}

func TestInit_EmptyFileLogsToStderr(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, Close()) })

	Init("text", INFO, "")

	assert.Nil(t, defaultAsyncLogger)
}

func TestInit_FilePathRotatesThroughAsyncLogger(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, Close()) })

	dir := t.TempDir()
	path := filepath.Join(dir, "filecached.log")
	Init("text", INFO, path)

	require.NotNil(t, defaultAsyncLogger)
	Infof("hello from the log file")
	require.NoError(t, Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from the log file")
}

func TestClose_NoOpWithoutFile(t *testing.T) {
	Init("text", INFO, "")
	assert.NoError(t, Close())
	assert.Nil(t, defaultAsyncLogger)
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "TRACE", levelName(LevelTrace))
	assert.Equal(t, "DEBUG", levelName(LevelDebug))
	assert.Equal(t, "INFO", levelName(LevelInfo))
	assert.Equal(t, "WARNING", levelName(LevelWarning))
	assert.Equal(t, "ERROR", levelName(LevelError))
	assert.Equal(t, "OFF", levelName(LevelOff))
}
