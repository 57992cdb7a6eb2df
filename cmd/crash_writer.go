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

import "gopkg.in/natefinch/lumberjack.v2"

// CrashWriter appends whatever a recovered panic writes to it onto a
// rotating file (serve.go places it inside the cache root directory),
// so a panic in the actor
// goroutine (which would otherwise just take down the process with
// nothing but a stack trace on stderr) leaves a record that survives
// without growing unbounded across a long-running process's restarts.
type CrashWriter struct {
	lj *lumberjack.Logger
}

func NewCrashWriter(fileName string) *CrashWriter {
	return &CrashWriter{lj: &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	}}
}

func (w *CrashWriter) Write(p []byte) (n int, err error) {
	return w.lj.Write(p)
}
