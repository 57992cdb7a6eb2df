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
	"fmt"
	"path"
	"sort"
	"strings"
)

// Method tags a file's endpoint suffixes are built from (spec.md §4.1).
const (
	MethodOptions = "options"
	MethodHead    = "head"
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
)

// Subscriber is the dispatching framework's name-registration surface
// (spec.md §6 "subscribe(suffix) and unsubscribe(suffix)"). The table
// only ever calls it with full endpoint names, not bare suffixes; the
// caller is responsible for prefixing if its transport needs it.
type Subscriber interface {
	Subscribe(name string)
	Unsubscribe(name string)
}

// indexAlias reports the directory-level alias a file named name
// synthesizes when its last path segment is index.htm or index.html
// (spec.md §4.1): the filename minus the index segment, or the empty
// string for a root-level index file. ok is false when name does not
// end in a recognized index filename.
func indexAlias(name string) (alias string, ok bool) {
	base := path.Base(name)
	if base != "index.htm" && base != "index.html" {
		return "", false
	}
	if len(name) == len(base) {
		return "", true
	}
	return name[:len(name)-len(base)], true
}

// endpointSuffixes returns the method tags a record with the given
// write capability and method-routing setting should expose.
func endpointSuffixes(write WriteCap, methodRoutingEnabled bool) []string {
	if !methodRoutingEnabled {
		return nil
	}
	methods := []string{MethodOptions, MethodHead, MethodGet}
	if write.Has(WriteTruncate) {
		methods = append(methods, MethodPut)
	}
	if write.Has(WriteAppend) {
		methods = append(methods, MethodPost)
	}
	return methods
}

// endpointName joins a table's prefix, a logical name, and a method
// tag into the subscription string spec.md's GLOSSARY calls the
// "endpoint name". A non-empty method is suffixed with "/method", or
// with just "method" when logical is empty or already ends in "/" (an
// index alias); an empty method (method routing disabled) yields the
// bare name.
func endpointName(prefix, logical, method string) string {
	if method == "" {
		return prefix + logical
	}
	if logical == "" || strings.HasSuffix(logical, "/") {
		return prefix + logical + method
	}
	return prefix + logical + "/" + method
}

// FileTable is the prefix-keyed mapping from endpoint name to file
// record (spec.md §4.1, §4.1 invariant). Not safe for concurrent
// access: the owning Actor is the sole caller, per spec.md §5.
type FileTable struct {
	/////////////////////////
	// Dependencies
	/////////////////////////

	sub Subscriber

	/////////////////////////
	// Constant data
	/////////////////////////

	prefix               string
	methodRoutingEnabled bool

	/////////////////////////
	// Mutable state
	/////////////////////////

	// byName indexes every subscribed endpoint name to its backing
	// record. Several keys (one per method, plus an index alias) may
	// point at the same *FileRecord.
	//
	// INVARIANT: for every (name, rec) here, name is one of
	// endpointNamesFor(rec.Name, rec.Write).
	byName map[string]*FileRecord

	// byLogical indexes the canonical logical name to its record.
	//
	// INVARIANT: byLogical and byName agree: every record reachable
	// from byLogical is reachable from byName and vice versa.
	byLogical map[string]*FileRecord
}

// NewFileTable constructs an empty table that registers and
// deregisters endpoint names with sub.
func NewFileTable(prefix string, methodRoutingEnabled bool, sub Subscriber) *FileTable {
	return &FileTable{
		sub:                  sub,
		prefix:               prefix,
		methodRoutingEnabled: methodRoutingEnabled,
		byName:               make(map[string]*FileRecord),
		byLogical:            make(map[string]*FileRecord),
	}
}

// endpointNamesFor enumerates every endpoint name a record with the
// given logical name and write capability occupies, including its
// index-file alias if any.
func (t *FileTable) endpointNamesFor(logical string, write WriteCap) []string {
	methods := endpointSuffixes(write, t.methodRoutingEnabled)
	names := make([]string, 0, 2*(len(methods)+1))

	addFor := func(name string) {
		if len(methods) == 0 {
			names = append(names, endpointName(t.prefix, name, ""))
			return
		}
		for _, m := range methods {
			names = append(names, endpointName(t.prefix, name, m))
		}
	}

	addFor(logical)
	if alias, ok := indexAlias(logical); ok {
		addFor(alias)
	}

	return names
}

// Add registers rec under every endpoint name it occupies, firing
// Subscribe for each. Add panics if rec.Name is already present: the
// caller must use SetWriteCap/Replace to mutate an existing record's
// membership.
func (t *FileTable) Add(rec *FileRecord) {
	if _, exists := t.byLogical[rec.Name]; exists {
		panic(fmt.Sprintf("core: Add called for already-present file %q", rec.Name))
	}

	for _, name := range t.endpointNamesFor(rec.Name, rec.Write) {
		t.byName[name] = rec
		t.sub.Subscribe(name)
	}
	t.byLogical[rec.Name] = rec
}

// Remove unsubscribes and deletes every endpoint name belonging to the
// logical file, a no-op if the name isn't present.
func (t *FileTable) Remove(logical string) {
	rec, ok := t.byLogical[logical]
	if !ok {
		return
	}
	for _, name := range t.endpointNamesFor(logical, rec.Write) {
		t.sub.Unsubscribe(name)
		delete(t.byName, name)
	}
	delete(t.byLogical, logical)
}

// SetWriteCap changes a record's write capability, subscribing newly
// gained method suffixes and unsubscribing dropped ones (spec.md
// §4.1: "Adding a write capability ... must subscribe the
// corresponding write suffix; dropping a capability must
// unsubscribe").
func (t *FileTable) SetWriteCap(logical string, write WriteCap) {
	rec, ok := t.byLogical[logical]
	if !ok {
		return
	}
	if rec.Write == write {
		return
	}

	before := t.endpointNamesFor(logical, rec.Write)
	rec.Write = write
	after := t.endpointNamesFor(logical, write)

	afterSet := make(map[string]struct{}, len(after))
	for _, n := range after {
		afterSet[n] = struct{}{}
	}
	beforeSet := make(map[string]struct{}, len(before))
	for _, n := range before {
		beforeSet[n] = struct{}{}
	}

	for _, n := range before {
		if _, keep := afterSet[n]; !keep {
			t.sub.Unsubscribe(n)
			delete(t.byName, n)
		}
	}
	for _, n := range after {
		if _, existed := beforeSet[n]; !existed {
			t.sub.Subscribe(n)
			t.byName[n] = rec
		}
	}
}

// Lookup resolves a full endpoint name to its record.
func (t *FileTable) Lookup(name string) (*FileRecord, bool) {
	rec, ok := t.byName[name]
	return rec, ok
}

// LookupLogical resolves a bare logical filename to its record,
// bypassing method-suffix routing entirely.
func (t *FileTable) LookupLogical(logical string) (*FileRecord, bool) {
	rec, ok := t.byLogical[logical]
	return rec, ok
}

// Records returns every record currently in the table, for callers
// that need a snapshot to iterate (e.g. refresh's removal pass).
func (t *FileTable) Records() []*FileRecord {
	out := make([]*FileRecord, 0, len(t.byLogical))
	for _, rec := range t.byLogical {
		out = append(out, rec)
	}
	return out
}

// Fold calls fn for every endpoint name sharing the given prefix,
// implementing the "prefix-match fold" spec.md §4.1 and §9 require
// (e.g. OPTIONS' Allow-header enumeration). Iteration order is
// unspecified.
func (t *FileTable) Fold(namePrefix string, fn func(name string, rec *FileRecord)) {
	for name, rec := range t.byName {
		if strings.HasPrefix(name, namePrefix) {
			fn(name, rec)
		}
	}
}

// AllowedMethods returns the method tails (lower-case, as subscribed)
// of every endpoint under pathPrefix + "/", sorted, for the OPTIONS
// handler's Allow header, which httpcache.Allow uppercases (spec.md
// §4.5).
func (t *FileTable) AllowedMethods(pathPrefix string) []string {
	search := pathPrefix + "/"
	var methods []string
	t.Fold(search, func(name string, _ *FileRecord) {
		tail := name[len(search):]
		if tail == "" || strings.Contains(tail, "/") {
			return
		}
		methods = append(methods, tail)
	})
	sort.Strings(methods)
	return methods
}

// CheckInvariants panics if byName and byLogical have drifted apart,
// or if any record's own endpoint-name set doesn't match where it's
// indexed. Intended for use from tests and debug builds.
func (t *FileTable) CheckInvariants() {
	if t.byName == nil || t.byLogical == nil {
		panic("core: FileTable maps must be non-nil")
	}

	for logical, rec := range t.byLogical {
		if rec.Name != logical {
			panic(fmt.Sprintf("core: byLogical[%q].Name == %q", logical, rec.Name))
		}
		for _, name := range t.endpointNamesFor(logical, rec.Write) {
			if t.byName[name] != rec {
				panic(fmt.Sprintf("core: endpoint %q not indexed to %q's record", name, logical))
			}
		}
	}

	for name, rec := range t.byName {
		if _, ok := t.byLogical[rec.Name]; !ok {
			panic(fmt.Sprintf("core: byName[%q] points at unindexed logical name %q", name, rec.Name))
		}
	}
}
