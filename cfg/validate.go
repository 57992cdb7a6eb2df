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

package cfg

import (
	"fmt"
	"os"
	"time"
)

// ValidationError is a fatal configuration error (spec.md §7): it
// terminates the process at startup rather than being isolated to one
// request or one file.
type ValidationError struct {
	Code    string // e.g. "enoent", "eacces", matching spec.md §6's exit-code examples
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validate checks everything that can be checked without the scanner
// or file table: the structural constraints in spec.md §6. Pattern
// cross-checks (a write/redirect/notify pattern matching zero files)
// happen later, once the file table exists, and are reported the same
// way (see core.ValidatePatterns and its core.ConfigError values).
func Validate(c Config) error {
	if c.Directory == "" {
		return invalid("enoent", "directory is required")
	}

	info, err := os.Stat(c.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing directory is only fatal when refresh is disabled
			// (spec.md §6: "directory configured but unreachable when
			// refresh disabled"); otherwise the first refresh may find it.
			if c.Refresh <= 0 {
				return invalid("enoent", "directory %s does not exist", c.Directory)
			}
		} else if os.IsPermission(err) {
			return invalid("eacces", "cannot stat directory %s", c.Directory)
		} else {
			return invalid("enoent", "cannot stat directory %s: %v", c.Directory, err)
		}
	} else if !info.IsDir() {
		return invalid("enotdir", "%s is not a directory", c.Directory)
	}

	if c.Refresh < 0 || c.Refresh > maxRefresh {
		return invalid("einval", "refresh must be within [1s, %s]", maxRefresh)
	}

	if !c.Cache.UseRefresh {
		if c.Cache.Seconds < 0 || c.Cache.Seconds > maxCacheSeconds {
			return invalid("einval", "cache must be within [1, %d] seconds", maxCacheSeconds)
		}
	}

	switch c.Replace {
	case ReplaceNone, ReplaceLFUDA, ReplaceLFUDAGDSF, ReplaceLRU:
	default:
		return invalid("einval", "unknown replace policy %q", c.Replace)
	}

	if c.Replace != ReplaceNone {
		if c.FilesSizeKiB <= 0 {
			return invalid("einval", "replace requires files_size to be set")
		}
		if c.Refresh <= 0 {
			return invalid("einval", "replace requires refresh to be set")
		}
	}

	for _, r := range c.Read {
		if r.Name == "" {
			return invalid("einval", "read entry with empty name")
		}
		if r.Length != nil && *r.Length < 0 {
			return invalid("einval", "read entry %s has negative length", r.Name)
		}
	}

	return nil
}

const (
	maxRefresh      time.Duration = 4294967 * time.Second
	maxCacheSeconds               = 31536000
)
