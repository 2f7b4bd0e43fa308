// Copyright 2025 Marek Stolarz (mstolarz)
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
//
// SPDX-License-Identifier: Apache-2.0

// Package runner supervises a single external script process. It launches the
// child with stderr merged into stdout, drains the combined stream into an
// ordered buffer from a background reader, answers liveness queries without
// blocking, and terminates the child gracefully before escalating to a kill.
//
// At most one child is active per runner. All four operations are safe to
// call concurrently; the caller is expected to poll IsRunning and DrainOutput
// on a short interval.
package runner

import (
	"time"

	"github.com/mstolarz/launchpad/pkg/api"
)

// DefaultGracePeriod is how long Stop waits for a voluntary exit after the
// terminate request before killing the child.
const DefaultGracePeriod = 5 * time.Second

type Runner interface {
	// Start launches the script described by spec and returns once the
	// child and its reader are up. It fails with errdefs.ErrAlreadyRunning
	// while a child is active, errdefs.ErrScriptNotFound when the script
	// path does not exist, and errdefs.ErrSpawn when the OS refuses to
	// create the process. The latter two also queue a diagnostic line so
	// the failure shows up where process output is watched.
	Start(spec *api.LaunchSpec) error

	// Stop terminates the active child, escalating from SIGTERM to SIGKILL
	// after the grace period, and returns only once the child is reaped.
	// It is idempotent and a no-op when nothing is running.
	Stop()

	// IsRunning reports whether a child is active and its exit status has
	// not been observed yet. Never blocks.
	IsRunning() bool

	// State is IsRunning as an api.RunnerState, for status reporting.
	State() api.RunnerState

	// DrainOutput removes and returns everything currently buffered, in
	// arrival order. Never blocks; returns "" when nothing is queued.
	DrainOutput() string
}

// Option tweaks an Exec at construction time.
type Option func(*Exec)

// WithGracePeriod overrides DefaultGracePeriod.
func WithGracePeriod(d time.Duration) Option {
	return func(r *Exec) {
		if d > 0 {
			r.gracePeriod = d
		}
	}
}

// WithMaxPending caps the number of undrained output chunks; once full the
// oldest chunks are dropped. Zero (the default) keeps the buffer unbounded,
// which is safe as long as the caller keeps draining.
func WithMaxPending(n int) Option {
	return func(r *Exec) {
		r.out = NewBuffer(n)
	}
}
