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
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mstolarz/launchpad/internal/errdefs"
	"github.com/mstolarz/launchpad/pkg/api"
)

const testShell = "/bin/sh"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte(body), 0o700); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestIsRunningFalseOnNew(t *testing.T) {
	r := NewExec(testLogger())
	if r.IsRunning() {
		t.Fatal("new runner reports running")
	}
	if got := r.DrainOutput(); got != "" {
		t.Fatalf("new runner has buffered output: %q", got)
	}
}

func TestStateFollowsLifecycle(t *testing.T) {
	r := NewExec(testLogger())
	if got := r.State(); got != api.RunnerIdle {
		t.Fatalf("new runner state = %v, want %v", got, api.RunnerIdle)
	}

	script := writeScript(t, "sleep 30\n")
	if err := r.Start(&api.LaunchSpec{Executable: testShell, ScriptPath: script}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := r.State(); got != api.RunnerRunning {
		t.Fatalf("state after start = %v, want %v", got, api.RunnerRunning)
	}

	r.Stop()
	if got := r.State(); got != api.RunnerIdle {
		t.Fatalf("state after stop = %v, want %v", got, api.RunnerIdle)
	}
}

func TestStopOnIdleIsNoop(t *testing.T) {
	r := NewExec(testLogger())
	start := time.Now()
	r.Stop()
	r.Stop()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("idle Stop took %v, expected immediate return", elapsed)
	}
	if r.IsRunning() {
		t.Fatal("runner reports running after idle Stop")
	}
}

func TestStartMissingScriptQueuesDiagnostic(t *testing.T) {
	r := NewExec(testLogger())

	err := r.Start(&api.LaunchSpec{
		Executable: testShell,
		ScriptPath: filepath.Join(t.TempDir(), "no-such-script.sh"),
	})
	if !errors.Is(err, errdefs.ErrScriptNotFound) {
		t.Fatalf("expected %v, got %v", errdefs.ErrScriptNotFound, err)
	}
	if r.IsRunning() {
		t.Fatal("runner reports running after rejected start")
	}
	if out := r.DrainOutput(); !strings.Contains(out, "script not found") {
		t.Fatalf("expected diagnostic line in output, got %q", out)
	}
}

func TestSpawnFailureQueuesDiagnostic(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, "echo never\n")

	err := r.Start(&api.LaunchSpec{
		Executable: "/nonexistent/interpreter",
		ScriptPath: script,
	})
	if !errors.Is(err, errdefs.ErrSpawn) {
		t.Fatalf("expected %v, got %v", errdefs.ErrSpawn, err)
	}
	if r.IsRunning() {
		t.Fatal("runner reports running after spawn failure")
	}
	if out := r.DrainOutput(); !strings.Contains(out, "Error starting script") {
		t.Fatalf("expected diagnostic line in output, got %q", out)
	}
}

func TestStartWhileRunningIsRejected(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, "sleep 5\n")

	spec := &api.LaunchSpec{Executable: testShell, ScriptPath: script}
	if err := r.Start(spec); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	t.Cleanup(r.Stop)

	err := r.Start(spec)
	if !errors.Is(err, errdefs.ErrAlreadyRunning) {
		t.Fatalf("expected %v, got %v", errdefs.ErrAlreadyRunning, err)
	}
	if !r.IsRunning() {
		t.Fatal("first child no longer running after rejected second start")
	}
}

func TestOutputOrderPreservedAcrossDrains(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, "echo A\necho B\necho C\n")

	if err := r.Start(&api.LaunchSpec{Executable: testShell, ScriptPath: script}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	var collected strings.Builder
	waitFor(t, 5*time.Second, func() bool {
		collected.WriteString(r.DrainOutput())
		return !r.IsRunning()
	}, "child exit")
	collected.WriteString(r.DrainOutput())

	if got := collected.String(); got != "A\nB\nC\n" {
		t.Fatalf("output reordered or lost: %q", got)
	}
}

func TestDrainTimingAroundSleep(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, "echo line1\nsleep 1\necho line2\n")

	if err := r.Start(&api.LaunchSpec{Executable: testShell, ScriptPath: script}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	t.Cleanup(r.Stop)

	var first string
	waitFor(t, 2*time.Second, func() bool {
		first = r.DrainOutput()
		return first != ""
	}, "first line")
	if first != "line1\n" {
		t.Fatalf("first drain = %q, want %q", first, "line1\n")
	}

	var rest strings.Builder
	waitFor(t, 5*time.Second, func() bool {
		rest.WriteString(r.DrainOutput())
		return !r.IsRunning()
	}, "child exit")
	rest.WriteString(r.DrainOutput())
	if got := rest.String(); got != "line2\n" {
		t.Fatalf("second drain = %q, want %q", got, "line2\n")
	}
}

func TestArgsDeliveredAsSeparateTokens(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, `echo "$#:$1:$2"`+"\n")

	err := r.Start(&api.LaunchSpec{
		Executable: testShell,
		ScriptPath: script,
		Args:       []string{"--flag", "value"},
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	var out strings.Builder
	waitFor(t, 5*time.Second, func() bool {
		out.WriteString(r.DrainOutput())
		return !r.IsRunning()
	}, "child exit")
	out.WriteString(r.DrainOutput())

	if got := out.String(); got != "2:--flag:value\n" {
		t.Fatalf("child saw args %q, want %q", got, "2:--flag:value\n")
	}
}

func TestWorkdirDefaultsToScriptDir(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, "pwd\n")

	if err := r.Start(&api.LaunchSpec{Executable: testShell, ScriptPath: script}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	var out strings.Builder
	waitFor(t, 5*time.Second, func() bool {
		out.WriteString(r.DrainOutput())
		return !r.IsRunning()
	}, "child exit")
	out.WriteString(r.DrainOutput())

	want := filepath.Dir(script)
	got := strings.TrimSpace(out.String())
	// macOS tempdirs live behind /private symlinks
	if got != want && !strings.HasSuffix(got, want) {
		t.Fatalf("child pwd = %q, want %q", got, want)
	}
}

func TestStopGracefulExit(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, "sleep 30\n")

	if err := r.Start(&api.LaunchSpec{Executable: testShell, ScriptPath: script}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, 2*time.Second, r.IsRunning, "child start")

	start := time.Now()
	r.Stop()
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("graceful stop took %v", elapsed)
	}
	if r.IsRunning() {
		t.Fatal("runner reports running after Stop")
	}
}

func TestStopEscalatesToKill(t *testing.T) {
	r := NewExec(testLogger(), WithGracePeriod(200*time.Millisecond))
	// child ignores the terminate request
	script := writeScript(t, "trap '' TERM\nwhile :; do sleep 1; done\n")

	if err := r.Start(&api.LaunchSpec{Executable: testShell, ScriptPath: script}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, 2*time.Second, r.IsRunning, "child start")
	// give the shell a moment to install the trap
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	r.Stop()
	elapsed := time.Since(start)

	if r.IsRunning() {
		t.Fatal("runner reports running after forced stop")
	}
	// bounded by grace period + kill latency
	if elapsed > 5*time.Second {
		t.Fatalf("forced stop took %v", elapsed)
	}

	r.Stop() // idempotent after forced path
}

func TestNaturalExitAllowsRestart(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, "echo once\n")
	spec := &api.LaunchSpec{Executable: testShell, ScriptPath: script}

	if err := r.Start(spec); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	waitFor(t, 5*time.Second, func() bool { return !r.IsRunning() }, "first exit")

	if err := r.Start(spec); err != nil {
		t.Fatalf("restart after natural exit failed: %v", err)
	}

	var out strings.Builder
	waitFor(t, 5*time.Second, func() bool {
		out.WriteString(r.DrainOutput())
		return !r.IsRunning()
	}, "second exit")
	out.WriteString(r.DrainOutput())

	if got := out.String(); got != "once\nonce\n" {
		t.Fatalf("output across restart = %q, want %q", got, "once\nonce\n")
	}
}

func TestStopRacesNaturalExit(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, "exit 0\n")

	if err := r.Start(&api.LaunchSpec{Executable: testShell, ScriptPath: script}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// stop immediately while the child is exiting on its own
	r.Stop()
	if r.IsRunning() {
		t.Fatal("runner reports running after Stop")
	}
	r.Stop()
}

func TestPTYModeDeliversOutput(t *testing.T) {
	r := NewExec(testLogger())
	script := writeScript(t, "echo pty-hello\n")

	err := r.Start(&api.LaunchSpec{
		Executable: testShell,
		ScriptPath: script,
		PTY:        true,
	})
	if err != nil {
		t.Fatalf("pty start failed: %v", err)
	}

	var out strings.Builder
	waitFor(t, 5*time.Second, func() bool {
		out.WriteString(r.DrainOutput())
		return !r.IsRunning()
	}, "child exit")
	out.WriteString(r.DrainOutput())

	// the pty rewrites \n as \r\n, so match on content only
	if !strings.Contains(out.String(), "pty-hello") {
		t.Fatalf("pty output missing marker: %q", out.String())
	}
}

func TestStartNilSpecRejected(t *testing.T) {
	r := NewExec(testLogger())
	if err := r.Start(nil); !errors.Is(err, errdefs.ErrSpecScriptMissing) {
		t.Fatalf("expected %v, got %v", errdefs.ErrSpecScriptMissing, err)
	}
}
