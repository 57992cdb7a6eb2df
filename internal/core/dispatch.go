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
	"os"
	"strings"
	"time"

	"github.com/fsorigin/filecache/internal/core/httpcache"
	"github.com/fsorigin/filecache/internal/logger"
)

// Request is the core's only entry point for client traffic: the
// dispatching framework (spec.md §6) has already resolved the
// endpoint name, parsed any Range header into an httpcache.RangeRequest,
// and handed over the remaining conditional-request headers verbatim
// for the state machine in httpcache to interpret.
type Request struct {
	Name string

	IfMatch           string
	IfNoneMatch       string
	IfModifiedSince   string
	IfUnmodifiedSince string
	IfRange           string
	Range             httpcache.RangeRequest

	HasMultipartID    bool
	MultipartID       string
	HasMultipartIndex bool
	MultipartIndex    int
	MultipartLast     bool

	// Boundary is the multipart/byteranges boundary string to use if
	// this request resolves to a multi-range 206 response. Boundary
	// construction is the caller's concern (spec.md §1): the core only
	// lays parts out once a boundary exists.
	Boundary string

	Body     []byte
	Timeout  time.Duration
	Priority int
}

// Response is the core's reply: an HTTP status plus lower-case header
// map and body (spec.md §6 response_info).
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

func errorResponse(status int) Response {
	return Response{Status: status, Headers: map[string]string{}}
}

// Dispatch resolves req.Name to a file record and method, then routes
// to the matching handler (spec.md §4.10, §9 "tagged sum over
// {options, head, get, put, post, redirect}").
func Dispatch(s *State, n Notifier, req Request) Response {
	rec, method, ok := resolve(s, req.Name)
	if !ok {
		return errorResponse(404)
	}

	if rec.Redirect != "" && (method == MethodGet || method == MethodHead || method == "") {
		return Response{
			Status:  301,
			Headers: map[string]string{"location": rec.Redirect},
		}
	}

	switch method {
	case MethodOptions:
		return dispatchOptions(s, req.Name)
	case MethodHead:
		return dispatchRead(s, rec, req, true)
	case MethodGet, "":
		return dispatchRead(s, rec, req, false)
	case MethodPut:
		return dispatchPut(s, n, rec, req)
	case MethodPost:
		return dispatchPost(s, n, rec, req)
	default:
		return errorResponse(404)
	}
}

// resolve splits req.Name into (record, method) per spec.md §9 "The
// name-suffix routing is a string split on the last /". When method
// routing is disabled there is no suffix to split on: the bare name is
// looked up directly and treated as a read.
func resolve(s *State, name string) (*FileRecord, string, bool) {
	if !s.MethodRoutingEnabled {
		rec, ok := s.Table.LookupLogical(strings.TrimPrefix(name, s.Prefix))
		return rec, "", ok
	}

	rec, ok := s.Table.Lookup(name)
	if !ok {
		return nil, "", false
	}
	idx := strings.LastIndex(name, "/")
	return rec, name[idx+1:], true
}

func dispatchOptions(s *State, name string) Response {
	idx := strings.LastIndex(name, "/")
	base := name
	if idx >= 0 {
		base = name[:idx]
	}
	methods := s.Table.AllowedMethods(base)
	return Response{
		Status:  200,
		Headers: map[string]string{"allow": httpcache.Allow(methods)},
	}
}

func dispatchRead(s *State, rec *FileRecord, req Request, headOnly bool) Response {
	now := s.Clock.Now()

	condStatus := httpcache.EvaluateConditional(httpcache.ConditionalRequest{
		IfMatch:           req.IfMatch,
		IfNoneMatch:       req.IfNoneMatch,
		IfModifiedSince:   req.IfModifiedSince,
		IfUnmodifiedSince: req.IfUnmodifiedSince,
	}, rec.ETag(), rec.MTimeI.MTime, now, s.ClockSkewMax)

	headers := commonHeaders(s, rec, now)

	switch condStatus {
	case httpcache.StatusNotModified:
		return Response{Status: 304, Headers: headers}
	case httpcache.StatusPreconditionFailed:
		return Response{Status: 412, Headers: headers}
	}

	rangeResult := httpcache.EvaluateRanges(req.Range, req.IfRange, rec.ETag(), rec.MTimeI.MTime, rec.Size)

	switch rangeResult.Status {
	case httpcache.StatusBadRequest:
		return errorResponse(400)
	case httpcache.StatusRangeNotSatisfiable:
		headers["content-range"] = httpcache.ContentRangeUnsatisfiable(rec.Size)
		return Response{Status: 416, Headers: headers}
	case httpcache.StatusPartialContent:
		return dispatchPartial(rec, headers, rangeResult.Ranges, req.Boundary, headOnly)
	default:
		for k, v := range rec.Headers {
			headers[k] = v
		}
		body := rec.Contents
		if headOnly {
			body = nil
		}
		return Response{Status: 200, Headers: headers, Body: body}
	}
}

func dispatchPartial(rec *FileRecord, headers map[string]string, ranges []httpcache.ResolvedRange, boundary string, headOnly bool) Response {
	if len(ranges) == 1 {
		rng := ranges[0]
		headers["content-type"] = "application/octet-stream"
		headers["content-range"] = httpcache.ContentRange(rng, rec.Size)
		body := rec.Contents[rng.Start : rng.End+1]
		if headOnly {
			body = nil
		}
		return Response{Status: 206, Headers: headers, Body: body}
	}

	parts := make([]httpcache.MultipartPart, len(ranges))
	for i, rng := range ranges {
		parts[i] = httpcache.MultipartPart{Range: rng, Body: rec.Contents[rng.Start : rng.End+1]}
	}
	headers["content-type"] = httpcache.ContentTypeMultipartByteranges(boundary)

	var body []byte
	if !headOnly {
		body = httpcache.BuildMultipartByteranges(boundary, rec.Size, parts)
	}
	return Response{Status: 206, Headers: headers, Body: body}
}

func commonHeaders(s *State, rec *FileRecord, now time.Time) map[string]string {
	h := httpcache.CommonHeaders(rec.ETag(), rec.MTimeI.MTime, now, s.Cache, s.MethodRoutingEnabled)
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// dispatchPut implements PUT (truncate): spec.md §4.6.
func dispatchPut(s *State, n Notifier, rec *FileRecord, req Request) Response {
	if !rec.Write.Has(WriteTruncate) || req.Range.Outcome != httpcache.RangeAbsent {
		return errorResponse(400)
	}

	if _, ok := s.Budget.Admit(rec.Size, int64(len(req.Body))); !ok {
		logger.Warnf("core: PUT %q would exceed the byte ceiling", rec.Name)
		return errorResponse(400)
	}

	if err := os.WriteFile(rec.Path, req.Body, 0o644); err != nil {
		logger.Errorf("core: PUT %q: write failed: %v", rec.Name, err)
		return errorResponse(400)
	}

	info, err := os.Stat(rec.Path)
	if err != nil {
		logger.Errorf("core: PUT %q: restat failed: %v", rec.Name, err)
		return errorResponse(400)
	}

	s.Budget.Apply(rec.Size, int64(len(req.Body)))
	rec.MTimeI = rec.MTimeI.NextForMTime(info.ModTime())
	rec.Contents = req.Body
	rec.Size = int64(len(req.Body))
	rec.Access = accessModeOf(rec.Path, info.Mode())

	if n != nil {
		notifyRecord(n, rec)
	}

	now := s.Clock.Now()
	headers := commonHeaders(s, rec, now)
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return Response{Status: 200, Headers: headers, Body: rec.Contents}
}

// dispatchPost implements POST (append/range-write): spec.md §4.7.
func dispatchPost(s *State, n Notifier, rec *FileRecord, req Request) Response {
	if !rec.Write.Has(WriteAppend) {
		return errorResponse(400)
	}

	chunk, id, isLast, status := evaluatePostRange(req, rec)
	switch status {
	case postRangeBadRequest:
		return errorResponse(400)
	case postRangeNotSatisfiable:
		return errorResponse(416)
	case postRangeStaleIfRange:
		return errorResponse(410)
	}

	if rec.WriteAppends == nil {
		rec.WriteAppends = make(map[string]*PendingUpload)
	}
	pending, ok := rec.WriteAppends[id]
	if !ok {
		pending = &PendingUpload{CreatedAt: s.Clock.Now()}
		rec.WriteAppends[id] = pending
	}
	pending.InsertSorted(chunk)

	if !isLast {
		if pending.CancelFn == nil && s.ScheduleTimeout != nil {
			timeout := req.Timeout
			if timeout <= 0 {
				timeout = s.AppendTimeout
			}
			name, mid := rec.Name, id
			pending.CancelFn = s.ScheduleTimeout(timeout, func() {
				expirePendingAppend(s, n, name, mid)
			})
		}
		return Response{Status: 200, Headers: map[string]string{}}
	}

	if pending.CancelFn != nil {
		pending.CancelFn()
	}
	chunks := pending.Chunks
	delete(rec.WriteAppends, id)

	newContents := applyChunks(append([]byte(nil), rec.Contents...), chunks)

	if _, ok := s.Budget.Admit(rec.Size, int64(len(newContents))); !ok {
		logger.Warnf("core: POST %q would exceed the byte ceiling after applying appends", rec.Name)
		return errorResponse(400)
	}

	if err := os.WriteFile(rec.Path, newContents, 0o644); err != nil {
		logger.Errorf("core: POST %q: write failed: %v", rec.Name, err)
		return errorResponse(400)
	}
	info, err := os.Stat(rec.Path)
	if err != nil {
		logger.Errorf("core: POST %q: restat failed: %v", rec.Name, err)
		return errorResponse(400)
	}

	s.Budget.Apply(rec.Size, int64(len(newContents)))
	rec.MTimeI = rec.MTimeI.NextForMTime(info.ModTime())
	rec.Contents = newContents
	rec.Size = int64(len(newContents))
	rec.Access = accessModeOf(rec.Path, info.Mode())

	if n != nil {
		notifyRecord(n, rec)
	}

	now := s.Clock.Now()
	headers := commonHeaders(s, rec, now)
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return Response{Status: 200, Headers: headers, Body: rec.Contents}
}

// expirePendingAppend discards an incomplete multipart upload whose
// timer fired before its final chunk arrived (spec.md §4.7, §9: an
// append group that never completes within its timeout is abandoned
// rather than partially applied).
func expirePendingAppend(s *State, n Notifier, fileName, id string) {
	rec, ok := s.Table.LookupLogical(fileName)
	if !ok {
		return
	}
	if _, ok := rec.WriteAppends[id]; !ok {
		return
	}
	delete(rec.WriteAppends, id)
	logger.Warnf("core: POST %q: multipart upload %q timed out and was discarded", fileName, id)
}
