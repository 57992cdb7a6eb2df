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

package httpcache

import "bytes"

// MultipartPart is one body part of a multipart/byteranges response.
type MultipartPart struct {
	Range ResolvedRange
	Body  []byte
}

// BuildMultipartByteranges renders parts into a multipart/byteranges
// body using the supplied boundary (boundary construction itself is
// the out-of-scope collaborator named in spec.md §1 - this function
// only lays the parts out once a boundary string exists).
func BuildMultipartByteranges(boundary string, total int64, parts []MultipartPart) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.WriteString("--")
		buf.WriteString(boundary)
		buf.WriteString("\r\n")
		buf.WriteString("Content-Type: application/octet-stream\r\n")
		buf.WriteString("Content-Range: ")
		buf.WriteString(ContentRange(p.Range, total))
		buf.WriteString("\r\n\r\n")
		buf.Write(p.Body)
		buf.WriteString("\r\n")
	}
	buf.WriteString("--")
	buf.WriteString(boundary)
	buf.WriteString("--\r\n")
	return buf.Bytes()
}

// ContentTypeMultipartByteranges formats the Content-Type header value
// for a multipart/byteranges response with the given boundary.
func ContentTypeMultipartByteranges(boundary string) string {
	return "multipart/byteranges; boundary=" + boundary
}
