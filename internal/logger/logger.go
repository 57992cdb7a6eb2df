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

// Package logger is a thin wrapper around log/slog that maps the five
// severities the core actor needs (TRACE, DEBUG, INFO, WARNING, ERROR)
// onto slog levels, and supports either a text or a JSON handler. The
// scanner, replacement engine, and protocol state machine all log
// through the package-level functions rather than holding their own
// *slog.Logger, mirroring how the rest of the core shares one actor.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity levels, ordered least to most severe. TRACE is more verbose
// than slog's built-in LevelDebug, so it is mapped one step below it.
const (
	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelWarning = slog.LevelWarn
	LevelError   = slog.LevelError
	// LevelOff suppresses every record; slog has no named level above
	// Error high enough, so we pick an arbitrarily high one.
	LevelOff = slog.Level(12)
)

const (
	OFF     = "off"
	ERROR   = "error"
	WARNING = "warning"
	INFO    = "info"
	DEBUG   = "debug"
	TRACE   = "trace"
)

func severityFromString(level string) slog.Level {
	switch level {
	case OFF:
		return LevelOff
	case ERROR:
		return LevelError
	case WARNING:
		return LevelWarning
	case INFO:
		return LevelInfo
	case DEBUG:
		return LevelDebug
	case TRACE:
		return LevelTrace
	default:
		return LevelInfo
	}
}

func levelName(l slog.Level) string {
	switch {
	case l >= LevelOff:
		return "OFF"
	case l >= LevelError:
		return "ERROR"
	case l >= LevelWarning:
		return "WARNING"
	case l >= LevelInfo:
		return "INFO"
	case l >= LevelDebug:
		return "DEBUG"
	default:
		return "TRACE"
	}
}

// factory builds the slog.Handler used by the default logger; kept as
// a struct (rather than constructing the handler inline) so tests can
// swap the destination writer without recreating the level var.
type factory struct {
	format string // "text" or "json"
}

func (f *factory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.LevelKey:
				a.Key = "severity"
				a.Value = slog.StringValue(levelName(a.Value.Any().(slog.Level)))
			case slog.MessageKey:
				a.Value = slog.StringValue(prefix + a.Value.String())
			case slog.TimeKey:
				if f.format == "text" {
					a.Key = "time"
				} else {
					a.Key = "timestamp"
				}
			}
			return a
		},
	}

	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

var (
	defaultLoggerFactory = &factory{format: "text"}
	defaultProgramLevel  = new(slog.LevelVar)
	defaultLogger        = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, defaultProgramLevel, ""))

	// defaultAsyncLogger is non-nil only when Init was given a log
	// file; Close shuts it down so its writer goroutine doesn't
	// outlive the process's last flush.
	defaultAsyncLogger *AsyncLogger
)

// setLoggingLevel maps a textual severity onto the package's shared
// slog.LevelVar, which every handler created by this package observes.
func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	programLevel.Set(severityFromString(level))
}

// Init (re)configures the default logger for the process: format is
// "text" or "json", level is one of the OFF/ERROR/.../TRACE constants.
// If file is non-empty, records are written asynchronously to a
// rotating file there instead of directly to stderr; a busy server
// would otherwise stall request handling behind log file I/O.
func Init(format string, level string, file string) {
	defaultLoggerFactory = &factory{format: format}
	defaultProgramLevel = new(slog.LevelVar)

	if defaultAsyncLogger != nil {
		defaultAsyncLogger.Close()
		defaultAsyncLogger = nil
	}

	var dest io.Writer = os.Stderr
	if file != "" {
		defaultAsyncLogger = NewAsyncLogger(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}, 256)
		dest = defaultAsyncLogger
	}

	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(dest, defaultProgramLevel, ""))
	setLoggingLevel(level, defaultProgramLevel)
}

// Close flushes and releases the rotating log file opened by Init, if
// any. A no-op when Init was never given a file.
func Close() error {
	if defaultAsyncLogger == nil {
		return nil
	}
	err := defaultAsyncLogger.Close()
	defaultAsyncLogger = nil
	return err
}

func logf(ctx context.Context, level slog.Level, format string, v ...any) {
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	defaultLogger.Log(ctx, level, fmt.Sprintf(format, v...))
}

func Tracef(format string, v ...any) { logf(context.Background(), LevelTrace, format, v...) }
func Debugf(format string, v ...any) { logf(context.Background(), LevelDebug, format, v...) }
func Infof(format string, v ...any)  { logf(context.Background(), LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { logf(context.Background(), LevelWarning, format, v...) }
func Errorf(format string, v ...any) { logf(context.Background(), LevelError, format, v...) }
