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

// Package cmd wires the cobra/viper CLI surface onto cfg.Config and
// hands the decoded, validated result to the bootstrap in serve.go.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fsorigin/filecache/cfg"
)

var (
	cfgFile    string
	listenAddr string

	v = viper.New()

	bindErr error
	// readErr/decodeErr are captured in initConfig, which cobra calls
	// with no way to return an error itself, and surfaced from RunE.
	readErr   error
	decodeErr error

	resolved cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "filecached",
	Short: "Serve a directory as a conditional-GET, byte-range HTTP content cache",
	Long: `filecached periodically scans a directory and serves its files over
HTTP with conditional GET (ETag/If-Match/If-Modified-Since), 206
partial responses, multipart/byteranges, and multipart-append uploads,
optionally evicting under a byte budget with an LFUDA, GDSF, or LRU
replacement policy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(c *cobra.Command, args []string) error {
		if bindErr != nil {
			return fmt.Errorf("binding flags: %w", bindErr)
		}
		if readErr != nil {
			return readErr
		}
		if decodeErr != nil {
			return fmt.Errorf("decoding configuration: %w", decodeErr)
		}
		if err := cfg.Validate(resolved); err != nil {
			return err
		}
		return run(c.Context(), resolved)
	},
}

// Execute is the process entry point, called from cmd/filecached/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "filecached:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config-file", "", "Path to a YAML configuration file.")
	flags.StringVar(&listenAddr, "listen-addr", ":8080", "Address the HTTP listener binds.")

	bindErr = cfg.BindFlags(v, flags)
}

// initConfig layers, in increasing priority: cfg.Default(), an
// optional --config-file, and bound flags (handled by FromViper
// reading straight from v; no environment variables are bound). Errors are stashed rather than
// returned because cobra.OnInitialize's signature has no error path.
func initConfig() {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			readErr = fmt.Errorf("reading %s: %w", cfgFile, err)
			return
		}
	}

	resolved, decodeErr = cfg.FromViper(cfg.Default(), v)
}
