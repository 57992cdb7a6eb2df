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

// Package httpserver adapts net/http to the core package: it parses
// the raw Range header text and multipart append headers the core
// deliberately stays ignorant of, generates a multipart/byteranges
// boundary when one is needed, and translates a core.Response back
// into a ResponseWriter call.
package httpserver

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fsorigin/filecache/internal/core"
	"github.com/fsorigin/filecache/internal/core/httpcache"
	"github.com/fsorigin/filecache/internal/logger"
)

// Handler is the subset of transport.Local this package depends on,
// kept narrow so tests can fake it without pulling in an Actor.
type Handler interface {
	Handle(req core.Request) (core.Response, error)
}

// Server is a net/http.Handler in front of one Handler.
type Server struct {
	Backend       Handler
	DefaultTimeout time.Duration
}

func New(backend Handler) *Server {
	return &Server{Backend: backend, DefaultTimeout: 30 * time.Second}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := s.buildRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.Backend.Handle(req)
	if err != nil {
		logger.Errorf("httpserver: %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeResponse(w, resp)
}

func (s *Server) buildRequest(r *http.Request) (core.Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return core.Request{}, err
	}

	req := core.Request{
		Name:              r.URL.Path,
		IfMatch:           r.Header.Get("If-Match"),
		IfNoneMatch:       r.Header.Get("If-None-Match"),
		IfModifiedSince:   r.Header.Get("If-Modified-Since"),
		IfUnmodifiedSince: r.Header.Get("If-Unmodified-Since"),
		IfRange:           r.Header.Get("If-Range"),
		Range:             parseRangeHeader(r.Header.Get("Range")),
		Body:              body,
		Timeout:           s.DefaultTimeout,
	}

	if id := r.Header.Get("X-Multipart-Id"); id != "" {
		req.HasMultipartID = true
		req.MultipartID = id
		req.MultipartLast = r.Header.Get("X-Multipart-Last") == "true"
		if idx := r.Header.Get("X-Multipart-Index"); idx != "" {
			n, err := strconv.Atoi(idx)
			if err != nil {
				return core.Request{}, err
			}
			req.HasMultipartIndex = true
			req.MultipartIndex = n
		}
	}

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		req.Boundary = "filecache-" + uuid.NewString()
	}

	return req, nil
}

// parseRangeHeader is the "Range-header parsing" collaborator the
// core intentionally stays ignorant of (bytes=0-0,2-2 and friends).
func parseRangeHeader(value string) httpcache.RangeRequest {
	if value == "" {
		return httpcache.RangeRequest{Outcome: httpcache.RangeAbsent}
	}

	unit, rangesPart, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(unit) != "bytes" {
		return httpcache.RangeRequest{Outcome: httpcache.RangeNotByteUnit}
	}

	parts := strings.Split(rangesPart, ",")
	specs := make([]httpcache.RangeSpec, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		start, end, hasEnd, ok := parseOneRange(p)
		if !ok {
			return httpcache.RangeRequest{Outcome: httpcache.RangeMalformed}
		}
		specs = append(specs, httpcache.RangeSpec{Start: start, HasEnd: hasEnd, End: end})
	}

	return httpcache.RangeRequest{Outcome: httpcache.RangeParsed, Specs: specs}
}

func parseOneRange(p string) (start, end int64, hasEnd, ok bool) {
	dash := strings.IndexByte(p, '-')
	if dash < 0 {
		return 0, 0, false, false
	}
	startStr, endStr := p[:dash], p[dash+1:]

	if startStr == "" {
		// Suffix length: "-500".
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return 0, 0, false, false
		}
		return -n, 0, false, true
	}

	s, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return 0, 0, false, false
	}
	if endStr == "" {
		return s, 0, false, true
	}
	e, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return 0, 0, false, false
	}
	return s, e, true, true
}

func writeResponse(w http.ResponseWriter, resp core.Response) {
	header := w.Header()
	for k, v := range resp.Headers {
		header.Set(canonicalHeader(k), v)
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}

func canonicalHeader(lower string) string {
	return http.CanonicalHeaderKey(lower)
}
