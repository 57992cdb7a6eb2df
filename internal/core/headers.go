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
	"mime"
	"path"
)

// staticHeaders computes the response headers that never change across
// a file's content generations: Content-Type (by extension lookup)
// and Content-Disposition (spec.md §3 FileRecord.headers, §6
// use_content_types/use_content_disposition toggles).
func staticHeaders(logicalName string, useContentTypes, useContentDisposition bool) map[string]string {
	h := make(map[string]string)

	if useContentTypes {
		if ct := mime.TypeByExtension(path.Ext(logicalName)); ct != "" {
			h["content-type"] = ct
		} else {
			h["content-type"] = "application/octet-stream"
		}
	}

	if useContentDisposition {
		h["content-disposition"] = fmt.Sprintf("attachment; filename=%q", path.Base(logicalName))
	}

	return h
}
