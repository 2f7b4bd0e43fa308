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

package launcher

import "strings"

// LogTail accumulates drained output and keeps only the newest maxLines
// lines. Trimming the accumulated log is a caller-side concern; the runner's
// own buffer is never truncated by it. Not safe for concurrent use; the
// Launcher serializes access.
type LogTail struct {
	maxLines int
	content  string
}

func NewLogTail(maxLines int) *LogTail {
	if maxLines <= 0 {
		maxLines = 1
	}
	return &LogTail{maxLines: maxLines}
}

func (lt *LogTail) Append(chunk string) {
	if chunk == "" {
		return
	}
	lt.content += chunk
	lines := strings.Split(lt.content, "\n")
	if len(lines) > lt.maxLines {
		lt.content = strings.Join(lines[len(lines)-lt.maxLines:], "\n")
	}
}

func (lt *LogTail) String() string {
	return lt.content
}

func (lt *LogTail) Reset() {
	lt.content = ""
}
