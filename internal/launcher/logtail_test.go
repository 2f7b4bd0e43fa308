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

import "testing"

func TestLogTailKeepsNewestLines(t *testing.T) {
	lt := NewLogTail(3)
	lt.Append("a\nb\nc\nd\ne\n")
	if got := lt.String(); got != "d\ne\n" {
		t.Fatalf("tail = %q, want %q", got, "d\ne\n")
	}
}

func TestLogTailAccumulatesAcrossAppends(t *testing.T) {
	lt := NewLogTail(100)
	lt.Append("one\n")
	lt.Append("two")
	lt.Append(" and a half\n")
	if got := lt.String(); got != "one\ntwo and a half\n" {
		t.Fatalf("tail = %q", got)
	}
}

func TestLogTailTrimsIncrementally(t *testing.T) {
	lt := NewLogTail(2)
	for _, line := range []string{"1\n", "2\n", "3\n", "4\n"} {
		lt.Append(line)
	}
	if got := lt.String(); got != "4\n" {
		t.Fatalf("tail = %q, want %q", got, "4\n")
	}
}

func TestLogTailReset(t *testing.T) {
	lt := NewLogTail(10)
	lt.Append("something\n")
	lt.Reset()
	if got := lt.String(); got != "" {
		t.Fatalf("tail after reset = %q, want empty", got)
	}
}
