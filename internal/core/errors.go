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

import "fmt"

// ConfigError is fatal: it is only ever produced during
// initialization, and the caller (cmd/filecached) is expected to
// terminate the process rather than retry (spec.md §7).
type ConfigError struct {
	Code   string // e.g. "eacces", "enoent"
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("filecache: configuration error (%s): %s", e.Code, e.Detail)
}

// ProtocolError carries an HTTP status the dispatch layer should
// answer with directly, for failures that are isolated to one request
// rather than fatal to the process (spec.md §7 "Protocol errors").
type ProtocolError struct {
	Status int
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("filecache: protocol error %d: %s", e.Status, e.Detail)
}

// UnknownMessageError describes a message kind other than a request,
// a refresh tick, an append timeout, or a status query; the actor loop
// panics with its message when it meets one (spec.md §7), since it
// means a bug in the wiring above it, not a transient condition.
type UnknownMessageError struct {
	Kind string
}

func (e *UnknownMessageError) Error() string {
	return fmt.Sprintf("filecache: unknown internal message kind %q", e.Kind)
}
