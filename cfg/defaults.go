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

import "time"

// Default returns the configuration used before any flags, config
// file, or decoded map have been applied.
func Default() Config {
	return Config{
		Refresh:          60 * time.Second,
		Cache:            CacheLifetime{UseRefresh: true},
		HTTPClockSkewMax: 5 * time.Minute,
		UseContentTypes:  true,
		UseHTTPGetSuffix: true,
		DebugLevel:       "info",
		LogFormat:        "text",
		AppendTimeout:    30 * time.Second,
	}
}
