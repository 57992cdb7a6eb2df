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

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fsorigin/filecache/cfg"
	"github.com/fsorigin/filecache/internal/clock"
	"github.com/fsorigin/filecache/internal/core"
	"github.com/fsorigin/filecache/internal/core/httpcache"
	"github.com/fsorigin/filecache/internal/core/replacement"
	"github.com/fsorigin/filecache/internal/httpserver"
	"github.com/fsorigin/filecache/internal/logger"
	"github.com/fsorigin/filecache/internal/metrics"
	"github.com/fsorigin/filecache/internal/transport"
)

// run builds the full State/Actor/transport/HTTP stack from a
// validated Config, performs the first directory scan, and serves
// until ctx is cancelled (SIGINT/SIGTERM) or the listener fails.
func run(ctx context.Context, c cfg.Config) error {
	logger.Init(c.LogFormat, effectiveLogLevel(c), c.LogFile)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	local := transport.NewLocal()

	state, err := buildState(c, local)
	if err != nil {
		return err
	}

	actor := core.NewActor(state, local)
	local.Register(c.Prefix, actor)

	provider, err := metrics.NewPrometheusProvider("filecache")
	if err != nil {
		return fmt.Errorf("building metrics provider: %w", err)
	}
	actor.WithMetrics(provider.Handle)

	var initNotifier core.Notifier
	if c.NotifyOnStart {
		initNotifier = local
	}
	if _, err := core.Refresh(state, initNotifier); err != nil {
		return fmt.Errorf("initial directory scan: %w", err)
	}
	if err := core.ValidatePatterns(state); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/", httpserver.New(local))
	mux.Handle("/metrics", provider.Gather)
	if c.StatusEndpoint != "" {
		mux.HandleFunc(c.StatusEndpoint, statusHandler(actor))
	}

	httpSrv := &http.Server{Addr: listenAddr, Handler: mux}

	crash := NewCrashWriter(filepath.Join(c.Directory, "filecached.crash.log"))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer recoverIntoCrashLog(crash)
		actor.Run()
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		actor.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("filecached: metrics shutdown: %v", err)
		}
		return httpSrv.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		logger.Infof("filecached: listening on %s, serving %s under prefix %q", listenAddr, c.Directory, c.Prefix)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	return group.Wait()
}

// recoverIntoCrashLog writes a panicking actor goroutine's message and
// stack to crash before letting the panic continue to unwind and take
// the process down; a panic there would otherwise leave nothing but a
// stack trace on stderr, which may not survive under a supervisor that
// discards it.
func recoverIntoCrashLog(crash *CrashWriter) {
	if r := recover(); r != nil {
		fmt.Fprintf(crash, "panic: %v\n%s\n", r, debug.Stack())
		panic(r)
	}
}

func effectiveLogLevel(c cfg.Config) string {
	if c.Debug && c.DebugLevel == "info" {
		return "debug"
	}
	return c.DebugLevel
}

// buildState translates a validated cfg.Config into the core actor's
// State, the shape spec.md §6's configuration table maps onto spec.md
// §3's "Global state".
func buildState(c cfg.Config, sub core.Subscriber) (*core.State, error) {
	s := &core.State{
		Prefix:                c.Prefix,
		Root:                  c.Directory,
		MethodRoutingEnabled:  c.UseHTTPGetSuffix,
		UseContentTypes:       c.UseContentTypes,
		UseContentDisposition: c.UseContentDisposition,
		Budget:                &core.Budget{},
		RefreshInterval:       c.Refresh,
		Cache: httpcache.CacheConfig{
			Enabled:    true,
			UseExpires: c.UseExpires,
			Lifetime:   c.Cache.Resolve(c.Refresh),
		},
		ClockSkewMax:          c.HTTPClockSkewMax,
		WriteTruncatePatterns: c.WriteTruncate,
		WriteAppendPatterns:   c.WriteAppend,
		NotifyOnStart:         c.NotifyOnStart,
		AppendTimeout:         c.AppendTimeout,
		Clock:                 clock.RealClock{},
	}

	if c.FilesSizeKiB > 0 {
		ceiling := c.FilesSizeKiB * 1024
		s.Budget.Ceiling = &ceiling
	}

	for _, r := range c.Read {
		offset := int64(0)
		if r.Offset != nil {
			offset = *r.Offset
		}
		s.Allowlist = append(s.Allowlist, core.AllowEntry{Name: r.Name, Offset: offset, Length: r.Length})
	}

	for _, r := range c.Redirect {
		s.Redirects = append(s.Redirects, core.RedirectRule{Pattern: r.Pattern, TargetPattern: r.Target})
	}
	for _, n := range c.NotifyOne {
		s.NotifyOne = append(s.NotifyOne, core.NotifyRule{Pattern: n.Pattern, Target: n.Name})
	}
	for _, n := range c.NotifyAll {
		s.NotifyAll = append(s.NotifyAll, core.NotifyRule{Pattern: n.Pattern, Target: n.Name, Multicast: true})
	}

	s.Table = core.NewFileTable(c.Prefix, c.UseHTTPGetSuffix, sub)

	if c.Replace != cfg.ReplaceNone {
		eng, err := replacement.New(replacement.Kind(c.Replace))
		if err != nil {
			return nil, fmt.Errorf("building replacement engine: %w", err)
		}
		s.Replacement = eng

		if c.ReplaceIndex {
			s.ReplaceIndexPath = filepath.Join(c.Directory, core.SidecarPrefix+strconv.Itoa(c.ProcessIndex))
			if snap, err := replacement.ReadSidecar(s.ReplaceIndexPath); err == nil {
				if _, err := replacement.LoadInto(eng, snap); err != nil {
					logger.Warnf("filecached: discarding unusable replacement sidecar %s: %v", s.ReplaceIndexPath, err)
				}
			}
		}
	}

	return s, nil
}

// statusHandler serves the optional diagnostic endpoint (SPEC_FULL.md's
// supplemented features): current byte usage, file count, and
// replacement policy, read off the actor's own goroutine via
// Actor.Status so nothing outside the actor ever touches State.
func statusHandler(actor *core.Actor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := actor.Status()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			BudgetUsage   int64  `json:"budget_usage_bytes"`
			BudgetCeiling *int64 `json:"budget_ceiling_bytes,omitempty"`
			FileCount     int    `json:"file_count"`
			Replacement   string `json:"replacement,omitempty"`
		}{
			BudgetUsage:   snap.BudgetUsage,
			BudgetCeiling: snap.BudgetCeiling,
			FileCount:     snap.FileCount,
			Replacement:   snap.Replacement,
		})
	}
}
