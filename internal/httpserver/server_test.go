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

package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fsorigin/filecache/internal/core"
	"github.com/fsorigin/filecache/internal/core/httpcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	lastReq core.Request
	resp    core.Response
	err     error
}

func (f *fakeHandler) Handle(req core.Request) (core.Response, error) {
	f.lastReq = req
	return f.resp, f.err
}

func TestServeHTTP_UnconditionalGet(t *testing.T) {
	fh := &fakeHandler{resp: core.Response{Status: 200, Headers: map[string]string{"etag": `"x"`}, Body: []byte("abc")}}
	s := New(fh)

	req := httptest.NewRequest(http.MethodGet, "/cache/a.txt/get", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "abc", rec.Body.String())
	assert.Equal(t, `"x"`, rec.Header().Get("Etag"))
}

func TestBuildRequest_ParsesSingleByteRange(t *testing.T) {
	fh := &fakeHandler{resp: core.Response{Status: 206, Headers: map[string]string{}}}
	s := New(fh)

	req := httptest.NewRequest(http.MethodGet, "/cache/a.txt/get", nil)
	req.Header.Set("Range", "bytes=0-0")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, httpcache.RangeParsed, fh.lastReq.Range.Outcome)
	require.Len(t, fh.lastReq.Range.Specs, 1)
	assert.Equal(t, int64(0), fh.lastReq.Range.Specs[0].Start)
	assert.True(t, fh.lastReq.Range.Specs[0].HasEnd)
	assert.Equal(t, int64(0), fh.lastReq.Range.Specs[0].End)
}

func TestBuildRequest_ParsesMultiByteRange(t *testing.T) {
	fh := &fakeHandler{resp: core.Response{Status: 206, Headers: map[string]string{}}}
	s := New(fh)

	req := httptest.NewRequest(http.MethodGet, "/cache/a.txt/get", nil)
	req.Header.Set("Range", "bytes=0-0,2-2")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Len(t, fh.lastReq.Range.Specs, 2)
}

func TestBuildRequest_SuffixLengthRange(t *testing.T) {
	fh := &fakeHandler{resp: core.Response{Status: 206, Headers: map[string]string{}}}
	s := New(fh)

	req := httptest.NewRequest(http.MethodGet, "/cache/a.txt/get", nil)
	req.Header.Set("Range", "bytes=-500")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Len(t, fh.lastReq.Range.Specs, 1)
	assert.Equal(t, int64(-500), fh.lastReq.Range.Specs[0].Start)
	assert.False(t, fh.lastReq.Range.Specs[0].HasEnd)
}

func TestBuildRequest_NonByteUnitRange(t *testing.T) {
	fh := &fakeHandler{resp: core.Response{Status: 416, Headers: map[string]string{}}}
	s := New(fh)

	req := httptest.NewRequest(http.MethodGet, "/cache/a.txt/get", nil)
	req.Header.Set("Range", "lines=1-2")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, httpcache.RangeNotByteUnit, fh.lastReq.Range.Outcome)
}

func TestBuildRequest_MalformedRange(t *testing.T) {
	fh := &fakeHandler{resp: core.Response{Status: 400, Headers: map[string]string{}}}
	s := New(fh)

	req := httptest.NewRequest(http.MethodGet, "/cache/a.txt/get", nil)
	req.Header.Set("Range", "bytes=abc")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, httpcache.RangeMalformed, fh.lastReq.Range.Outcome)
}

func TestBuildRequest_MultipartHeadersForward(t *testing.T) {
	fh := &fakeHandler{resp: core.Response{Status: 200, Headers: map[string]string{}}}
	s := New(fh)

	req := httptest.NewRequest(http.MethodPost, "/cache/up.bin/post", nil)
	req.Header.Set("X-Multipart-Id", "m1")
	req.Header.Set("X-Multipart-Index", "2")
	req.Header.Set("X-Multipart-Last", "true")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.True(t, fh.lastReq.HasMultipartID)
	assert.Equal(t, "m1", fh.lastReq.MultipartID)
	assert.True(t, fh.lastReq.HasMultipartIndex)
	assert.Equal(t, 2, fh.lastReq.MultipartIndex)
	assert.True(t, fh.lastReq.MultipartLast)
}

func TestServeHTTP_BackendErrorBecomes500(t *testing.T) {
	fh := &fakeHandler{err: assertErr{}}
	s := New(fh)

	req := httptest.NewRequest(http.MethodGet, "/cache/a.txt/get", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, 500, rec.Code)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
