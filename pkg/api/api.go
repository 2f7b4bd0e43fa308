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

// Package api holds the types shared between the runner core and its callers.
package api

// LaunchSpec describes one script invocation. It is built by the caller and
// must not be mutated after being handed to the runner.
type LaunchSpec struct {
	// Executable is the interpreter that runs the script, e.g. /bin/sh or
	// /usr/bin/python3.
	Executable string `json:"executable" yaml:"executable"`

	// ScriptPath is the filesystem path of the script to run.
	ScriptPath string `json:"scriptPath" yaml:"scriptPath"`

	// WorkDir is the working directory for the child. Empty means the
	// directory containing the script.
	WorkDir string `json:"workDir,omitempty" yaml:"workDir,omitempty"`

	// Args are appended after the script path, already tokenized.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// PTY runs the child on a pseudo-terminal instead of a pipe. Children
	// that detect a tty keep their output line-buffered, which makes the
	// log view feel live.
	PTY bool `json:"pty,omitempty" yaml:"pty,omitempty"`
}

// RunnerState is the observable lifecycle state of the runner.
type RunnerState string

const (
	RunnerIdle    RunnerState = "idle"
	RunnerRunning RunnerState = "running"
)
