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
	"fmt"
	"io"
	"os"
)

// AsyncLogger decouples slog's synchronous handler Write calls from
// whatever the destination writer actually does (rotate a file,
// flush to disk) by handing each record to a bounded channel and
// writing from a single background goroutine. A handler that blocked
// on disk I/O on every record would stall the core actor it shares a
// goroutine with nowhere near; AsyncLogger exists so the cache's
// logging destination can be a rotating file without that risk.
type AsyncLogger struct {
	dest     io.WriteCloser
	messages chan []byte
	done     chan struct{}
}

// NewAsyncLogger starts the background writer goroutine. bufferSize is
// the number of pending records the channel holds before Write starts
// dropping records rather than blocking the caller.
func NewAsyncLogger(dest io.WriteCloser, bufferSize int) *AsyncLogger {
	l := &AsyncLogger{
		dest:     dest,
		messages: make(chan []byte, bufferSize),
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for p := range l.messages {
		if _, err := l.dest.Write(p); err != nil {
			fmt.Fprintf(os.Stderr, "asynclogger: write failed: %v\n", err)
		}
	}
}

// Write copies p (slog reuses its formatting buffer across calls) and
// hands it to the writer goroutine, dropping it instead of blocking
// the caller when the buffer is full.
func (l *AsyncLogger) Write(p []byte) (n int, err error) {
	buf := make([]byte, len(p))
	copy(buf, p)

	select {
	case l.messages <- buf:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close drains any buffered records, then closes the destination
// writer. Safe to call once; a second call panics on a closed
// channel, matching the rest of this package's no-reuse-after-close
// conventions.
func (l *AsyncLogger) Close() error {
	close(l.messages)
	<-l.done
	return l.dest.Close()
}
