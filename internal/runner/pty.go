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
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// startPty runs the child on a pseudo-terminal. The slave becomes the child's
// stdin/stdout/stderr, so stdout and stderr are merged by the terminal itself
// and the child keeps line-buffering its output. The master is the read side;
// once the child exits the master read fails (EIO on Linux), which the read
// loop treats as end-of-stream.
func (r *Exec) startPty(cmd *exec.Cmd) (io.Reader, error) {
	ptmx, pts, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening pty: %w", err)
	}

	cmd.Stdin = pts
	cmd.Stdout = pts
	cmd.Stderr = pts
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true, // new session
		Setctty: true, // the pty slave becomes the controlling terminal
	}

	if errStart := cmd.Start(); errStart != nil {
		_ = pts.Close()
		_ = ptmx.Close()
		return nil, errStart
	}

	// pts is now owned by the child
	if errC := pts.Close(); errC != nil {
		r.logger.Warn("error closing pts file descriptor", "error", errC)
	}

	return ptmx, nil
}
