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

package runner

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/mstolarz/launchpad/internal/errdefs"
	"github.com/mstolarz/launchpad/pkg/api"
	"golang.org/x/sys/unix"
)

// Exec is the production Runner. The child handle, the running flag and the
// wait channel are the only state shared between the caller and the reader
// goroutine; all of it is guarded by mu, which is never held across a
// blocking wait on the child.
type Exec struct {
	logger      *slog.Logger
	gracePeriod time.Duration

	mu       sync.Mutex // protects cmd, running and waitDone
	cmd      *exec.Cmd
	running  bool
	waitDone chan struct{} // closed by the reader once the child is reaped

	out *Buffer
}

func NewExec(logger *slog.Logger, opts ...Option) *Exec {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Exec{
		logger:      logger,
		gracePeriod: DefaultGracePeriod,
		out:         NewBuffer(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Exec) State() api.RunnerState {
	if r.IsRunning() {
		return api.RunnerRunning
	}
	return api.RunnerIdle
}

func (r *Exec) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil && r.running
}

func (r *Exec) DrainOutput() string {
	return r.out.Drain()
}

func (r *Exec) Start(spec *api.LaunchSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil && r.running {
		return fmt.Errorf("%w: pid %d", errdefs.ErrAlreadyRunning, r.cmd.Process.Pid)
	}
	if spec == nil || spec.ScriptPath == "" {
		return errdefs.ErrSpecScriptMissing
	}

	if _, err := os.Stat(spec.ScriptPath); err != nil {
		r.out.Append(fmt.Sprintf("Error: script not found: %s\n", spec.ScriptPath))
		r.logger.Warn("start rejected, script not found", "script", spec.ScriptPath, "error", err)
		return fmt.Errorf("%w: %s", errdefs.ErrScriptNotFound, spec.ScriptPath)
	}

	executable := spec.Executable
	argv := append([]string{spec.ScriptPath}, spec.Args...)

	//nolint:gosec,noctx // the caller decides what runs; the child must outlive any request context
	cmd := exec.Command(executable, argv...)
	if spec.WorkDir != "" {
		cmd.Dir = spec.WorkDir
	} else {
		cmd.Dir = filepath.Dir(spec.ScriptPath)
	}

	var src io.Reader
	var err error
	if spec.PTY {
		src, err = r.startPty(cmd)
	} else {
		src, err = r.startPiped(cmd)
	}
	if err != nil {
		r.out.Append(fmt.Sprintf("Error starting script: %v\n", err))
		r.logger.Error("failed to start script", "script", spec.ScriptPath, "executable", executable, "error", err)
		return fmt.Errorf("%w: %w", errdefs.ErrSpawn, err)
	}

	// previous child, if any, exited naturally and was already reaped by
	// its reader; the stale handle is simply replaced
	r.cmd = cmd
	r.running = true
	r.waitDone = make(chan struct{})

	go r.readLoop(src, cmd, r.waitDone)

	r.logger.Info("script started",
		"pid", cmd.Process.Pid,
		"executable", executable,
		"script", spec.ScriptPath,
		"workdir", cmd.Dir,
		"args", spec.Args,
		"pty", spec.PTY,
	)
	return nil
}

// startPiped wires the child's stdout and stderr into a single pipe. The
// child gets its own process group so termination reaches any grandchildren
// that inherited the pipe; otherwise end-of-stream would wait on them.
func (r *Exec) startPiped(cmd *exec.Cmd) (io.Reader, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout // same fd, OS delivery order preserved
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return stdout, nil
}

// readLoop drains the merged stream into the buffer, then reaps the child and
// flips the running flag. Read failures end the loop silently: a closing pipe
// or pty is the expected end-of-life signal, and partial output has already
// been delivered.
func (r *Exec) readLoop(src io.Reader, cmd *exec.Cmd, done chan struct{}) {
	br := bufio.NewReader(src)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			r.out.Append(line)
		}
		if err != nil {
			break
		}
	}
	if c, ok := src.(io.Closer); ok {
		_ = c.Close()
	}

	waitErr := cmd.Wait()

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	close(done)

	if waitErr != nil {
		r.logger.Debug("child exited", "pid", cmd.Process.Pid, "error", waitErr)
	} else {
		r.logger.Info("child exited", "pid", cmd.Process.Pid)
	}
}

func (r *Exec) Stop() {
	r.mu.Lock()
	cmd := r.cmd
	done := r.waitDone
	r.mu.Unlock()

	if cmd == nil {
		return
	}

	select {
	case <-done:
		// already exited and reaped, just clear the handle below
	default:
		r.terminate(cmd, done)
	}

	r.mu.Lock()
	if r.cmd == cmd {
		r.cmd = nil
		r.waitDone = nil
		r.running = false
	}
	r.mu.Unlock()

	r.logger.Info("runner idle", "pid", cmd.Process.Pid)
}

// terminate asks the child to exit, waits out the grace period and escalates
// to SIGKILL. It returns only once the reader has reaped the child; state
// cleanup in Stop happens regardless of any OS error seen here.
func (r *Exec) terminate(cmd *exec.Cmd, done chan struct{}) {
	pid := cmd.Process.Pid

	// signal the whole group: the child runs as a group (or session)
	// leader and may have spawned grandchildren holding the output stream
	if err := unix.Kill(-pid, unix.SIGTERM); err != nil {
		// child may have just exited on its own; the reader wins the race
		r.logger.Debug("terminate request failed", "pid", pid, "error", err)
	}

	select {
	case <-done:
		r.logger.Debug("child exited within grace period", "pid", pid)
		return
	case <-time.After(r.gracePeriod):
	}

	r.logger.Warn("grace period elapsed, killing child", "pid", pid, "grace_period", r.gracePeriod)
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		r.logger.Debug("kill failed", "pid", pid, "error", err)
	}
	<-done
}
