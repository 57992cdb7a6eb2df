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
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BindFlags registers the cache's flags on flagSet and binds each one
// into v, binding one flag at a time so a missing binding fails loudly
// at startup instead of silently.
func BindFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	flagSet.String("directory", "", "Root directory to serve.")
	if err := v.BindPFlag("directory", flagSet.Lookup("directory")); err != nil {
		return err
	}

	flagSet.String("prefix", "", "Prefix prepended to every endpoint name.")
	if err := v.BindPFlag("prefix", flagSet.Lookup("prefix")); err != nil {
		return err
	}

	flagSet.Int64("files-size", 0, "Global byte ceiling in KiB (0 = unlimited).")
	if err := v.BindPFlag("files_size", flagSet.Lookup("files-size")); err != nil {
		return err
	}

	flagSet.Duration("refresh", 60_000_000_000, "Directory rescan period.")
	if err := v.BindPFlag("refresh", flagSet.Lookup("refresh")); err != nil {
		return err
	}

	flagSet.String("replace", "", `Eviction policy: "", "lfuda", "lfuda_gdsf", or "lru".`)
	if err := v.BindPFlag("replace", flagSet.Lookup("replace")); err != nil {
		return err
	}

	flagSet.Bool("replace-index", false, "Persist the replacement index across restarts.")
	if err := v.BindPFlag("replace_index", flagSet.Lookup("replace-index")); err != nil {
		return err
	}

	flagSet.Bool("notify-on-start", false, "Deliver notifications for every file during init.")
	if err := v.BindPFlag("notify_on_start", flagSet.Lookup("notify-on-start")); err != nil {
		return err
	}

	flagSet.Bool("use-content-types", true, "Set Content-Type from file extension.")
	if err := v.BindPFlag("use_content_types", flagSet.Lookup("use-content-types")); err != nil {
		return err
	}

	flagSet.Bool("use-content-disposition", false, "Set Content-Disposition.")
	if err := v.BindPFlag("use_content_disposition", flagSet.Lookup("use-content-disposition")); err != nil {
		return err
	}

	flagSet.Bool("use-expires", false, "Emit Expires instead of max-age.")
	if err := v.BindPFlag("use_expires", flagSet.Lookup("use-expires")); err != nil {
		return err
	}

	flagSet.Bool("use-http-get-suffix", true, "Enable per-method endpoint routing.")
	if err := v.BindPFlag("use_http_get_suffix", flagSet.Lookup("use-http-get-suffix")); err != nil {
		return err
	}

	flagSet.Bool("debug", false, "Enable verbose logging.")
	if err := v.BindPFlag("debug", flagSet.Lookup("debug")); err != nil {
		return err
	}

	flagSet.String("debug-level", "info", "Log severity: off, error, warning, info, debug, trace.")
	if err := v.BindPFlag("debug_level", flagSet.Lookup("debug-level")); err != nil {
		return err
	}

	flagSet.String("log-format", "text", `Log format: "text" or "json".`)
	if err := v.BindPFlag("log_format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.String("log-file", "", "Write logs to this rotating file instead of stderr.")
	if err := v.BindPFlag("log_file", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	return nil
}

// FromViper decodes the bound flags/config-file values in v into a
// Config layered over base, reusing the same mapstructure decode hooks
// Decode uses for the proplist path so both entry points agree on
// "cache": "refresh" and duration-from-seconds handling.
func FromViper(base Config, v *viper.Viper) (Config, error) {
	return Decode(base, v.AllSettings())
}
