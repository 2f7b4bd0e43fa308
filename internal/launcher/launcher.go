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

// Package launcher is the pull-side collaborator of the runner core: it
// resolves scripts, launches them and polls the runner on a fixed interval,
// streaming drained output to a writer and a trimmed log tail. The core stays
// poll-friendly; this package owns the timer.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mstolarz/launchpad/internal/errdefs"
	"github.com/mstolarz/launchpad/internal/runner"
	"github.com/mstolarz/launchpad/pkg/api"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval matches the original launcher's 100 ms redraw timer.
const DefaultPollInterval = 100 * time.Millisecond

// ScriptIndex resolves registered script names to paths. *config.Config
// implements it.
type ScriptIndex interface {
	Script(name string) (string, bool)
}

// ResolveScript maps a registry name or a filesystem path to a script path.
// Names win over paths so a registered script cannot be shadowed by a file of
// the same name in the working directory.
func ResolveScript(idx ScriptIndex, nameOrPath string) (string, error) {
	if idx != nil {
		if path, ok := idx.Script(nameOrPath); ok {
			return path, nil
		}
	}
	if _, err := os.Stat(nameOrPath); err == nil {
		return nameOrPath, nil
	}
	return "", fmt.Errorf("%w: %s", errdefs.ErrScriptUnknown, nameOrPath)
}

type Launcher struct {
	logger       *slog.Logger
	runner       runner.Runner
	pollInterval time.Duration

	mu   sync.Mutex // serializes flush between the poll and cancel goroutines
	out  io.Writer
	tail *LogTail
}

type Option func(*Launcher)

func WithPollInterval(d time.Duration) Option {
	return func(l *Launcher) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// New builds a launcher that streams output to out and keeps at most
// maxLines of accumulated log.
func New(logger *slog.Logger, r runner.Runner, out io.Writer, maxLines int, opts ...Option) *Launcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &Launcher{
		logger:       logger,
		runner:       r,
		pollInterval: DefaultPollInterval,
		out:          out,
		tail:         NewLogTail(maxLines),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch starts the script. Rejections (already running, missing script,
// spawn failure) come back as errdefs sentinels; the diagnostic line, if any,
// is flushed so the user sees it in the same place as process output.
func (l *Launcher) Launch(spec *api.LaunchSpec) error {
	err := l.runner.Start(spec)
	if err != nil {
		l.flush()
		return err
	}
	return nil
}

// Follow polls the runner until the child exits or ctx is cancelled. On
// cancellation the child is stopped (gracefully, then forcefully) and the
// remaining output is drained before returning. A cancelled ctx is a normal
// way to end a run and is not reported as an error.
func (l *Launcher) Follow(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	pollDone := make(chan struct{})

	g.Go(func() error {
		defer close(pollDone)
		ticker := time.NewTicker(l.pollInterval)
		defer ticker.Stop()

		for {
			l.flush()
			if !l.runner.IsRunning() {
				// one more drain for output that raced the exit
				l.flush()
				l.logger.Debug("follow loop finished, child no longer running")
				return nil
			}
			select {
			case <-ticker.C:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		select {
		case <-pollDone:
			return nil
		case <-gctx.Done():
			l.logger.Info("follow cancelled, stopping child")
			l.runner.Stop()
			l.flush()
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Tail returns the trimmed accumulated log.
func (l *Launcher) Tail() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tail.String()
}

func (l *Launcher) flush() {
	chunk := l.runner.DrainOutput()
	if chunk == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tail.Append(chunk)
	if l.out != nil {
		if _, err := io.WriteString(l.out, chunk); err != nil {
			l.logger.Warn("failed to write output chunk", "error", err, "chunk_len", len(chunk))
		}
	}
}
