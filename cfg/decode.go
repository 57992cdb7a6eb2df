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
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Decode builds a Config from a bare proplist-shaped map, the shape
// spec.md §6's configuration table describes (as would arrive over a
// wire protocol rather than through pflag/viper). Keys not present
// fall back to the supplied base (typically cfg.Default()).
//
// "cache" may be decoded either as a plain number of seconds or as the
// literal string "refresh"; this is the one field mapstructure's
// ordinary struct decoding can't express directly, so it gets a
// dedicated decode hook.
func Decode(base Config, raw map[string]any) (Config, error) {
	out := base

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDurationSecondsHookFunc(),
			cacheLifetimeHookFunc(),
		),
	})
	if err != nil {
		return Config{}, fmt.Errorf("cfg.Decode: building decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("cfg.Decode: %w", err)
	}

	return out, nil
}

// stringToDurationSecondsHookFunc decodes a bare number of seconds (as
// the "refresh" and "http_clock_skew_max" keys are specified in spec.md
// §6) into a time.Duration. A string is parsed with time.ParseDuration
// (the form viper hands back for a pflag Duration flag such as
// --refresh), or else as a number of seconds.
func stringToDurationSecondsHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			s := reflect.ValueOf(data).String()
			if d, err := time.ParseDuration(s); err == nil {
				return d, nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return time.Duration(f * float64(time.Second)), nil
			}
			return data, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			v := reflect.ValueOf(data).Convert(reflect.TypeOf(float64(0))).Float()
			return time.Duration(v * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

// cacheLifetimeHookFunc decodes either a number of seconds or the
// literal string "refresh" into a CacheLifetime.
func cacheLifetimeHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(CacheLifetime{}) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			if v == "refresh" {
				return CacheLifetime{UseRefresh: true}, nil
			}
			return nil, fmt.Errorf("cache: unrecognized string %q (only \"refresh\" is valid)", v)
		case int:
			return CacheLifetime{Seconds: int64(v)}, nil
		case int64:
			return CacheLifetime{Seconds: v}, nil
		case float64:
			return CacheLifetime{Seconds: int64(v)}, nil
		default:
			return data, nil
		}
	}
}
