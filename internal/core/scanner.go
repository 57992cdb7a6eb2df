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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsorigin/filecache/internal/logger"
)

// SidecarPrefix is the reserved filename prefix of the replacement
// index sidecar (spec.md §4.2, §6): names starting with it are never
// surfaced by the recursive scan. ScanAllowlist does not filter them.
const SidecarPrefix = ".filecache-replace-"

// patternMetacharacters are the characters the subscription/pattern
// layer treats specially; a scanned filename containing one is
// rejected rather than silently mis-subscribed (spec.md §4.2).
const patternMetacharacters = "*?["

// ScanEntry is one file the scanner surfaced: absolute path, logical
// name relative to the root, filesystem metadata, and the byte
// segment this scan mode selected (spec.md §4.2).
type ScanEntry struct {
	AbsPath       string
	Logical       string
	MTime         time.Time
	Size          int64
	Access        AccessMode
	SegmentOffset int64
	SegmentLength int64 // -1 means "to EOF"
}

// AllowEntry is one (name, offset, length) triple from the read
// allowlist (spec.md §3 global state, §6 "read" config key). A nil
// Length means "to EOF"; Offset may be negative, meaning "from EOF".
type AllowEntry struct {
	Name   string
	Offset int64
	Length *int64
}

// ScanRecursive enumerates every regular file under root, skipping
// sidecar files and anything whose name contains a pattern
// metacharacter (spec.md §4.2 mode (a)). Non-regular files and
// entries that fail to stat are logged and skipped rather than
// aborting the scan.
func ScanRecursive(root string) ([]ScanEntry, error) {
	var entries []ScanEntry

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("core: scan error at %q: %v", p, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), SidecarPrefix) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			logger.Warnf("core: scan: could not relativize %q: %v", p, err)
			return nil
		}
		logical := filepath.ToSlash(rel)

		if strings.ContainsAny(logical, patternMetacharacters) {
			logger.Warnf("core: scan: skipping %q, contains a pattern metacharacter", logical)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warnf("core: scan: stat failed for %q: %v", p, err)
			return nil
		}
		if !info.Mode().IsRegular() {
			logger.Debugf("core: scan: skipping non-regular file %q", logical)
			return nil
		}

		entries = append(entries, ScanEntry{
			AbsPath:       p,
			Logical:       logical,
			MTime:         info.ModTime(),
			Size:          info.Size(),
			Access:        accessModeOf(p, info.Mode()),
			SegmentOffset: 0,
			SegmentLength: -1,
		})
		return nil
	})

	return entries, err
}

// ScanAllowlist reads metadata for exactly the names in allow, each
// with its declared byte segment, rather than recursing the whole
// tree (spec.md §4.2 mode (b)). A missing or unreadable entry is
// logged and skipped, mirroring ScanRecursive.
func ScanAllowlist(root string, allow []AllowEntry) []ScanEntry {
	entries := make([]ScanEntry, 0, len(allow))
	for _, a := range allow {
		if strings.ContainsAny(a.Name, patternMetacharacters) {
			logger.Warnf("core: allowlist: skipping %q, contains a pattern metacharacter", a.Name)
			continue
		}

		p := filepath.Join(root, filepath.FromSlash(a.Name))
		info, err := os.Stat(p)
		if err != nil {
			logger.Warnf("core: allowlist: stat failed for %q: %v", a.Name, err)
			continue
		}
		if !info.Mode().IsRegular() {
			logger.Warnf("core: allowlist: %q is not a regular file", a.Name)
			continue
		}

		offset := a.Offset
		if offset < 0 {
			offset += info.Size()
		}
		length := int64(-1)
		if a.Length != nil {
			length = *a.Length
		}
		size := length
		if size < 0 {
			size = info.Size() - offset
		}

		entries = append(entries, ScanEntry{
			AbsPath:       p,
			Logical:       a.Name,
			MTime:         info.ModTime(),
			Size:          size,
			Access:        accessModeOf(p, info.Mode()),
			SegmentOffset: offset,
			SegmentLength: length,
		})
	}
	return entries
}

// accessModeOf derives a filesystem AccessMode by probing openability
// rather than trusting the mode bits alone, since ownership and ACLs
// can make a "readable" mode bit unreadable in practice.
func accessModeOf(path string, mode fs.FileMode) AccessMode {
	canRead := false
	if f, err := os.Open(path); err == nil {
		canRead = true
		f.Close()
	}

	canWrite := mode&0o200 != 0
	if canWrite {
		if f, err := os.OpenFile(path, os.O_WRONLY, 0); err == nil {
			f.Close()
		} else {
			canWrite = false
		}
	}

	switch {
	case canRead && canWrite:
		return AccessReadWrite
	case canRead:
		return AccessRead
	case canWrite:
		return AccessWrite
	default:
		return AccessNone
	}
}
