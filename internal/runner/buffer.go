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
	"strings"
	"sync"
)

// Buffer is an ordered queue of output chunks: one producer (the reader
// goroutine) appends, one consumer drains. It carries its own lock so the
// reader never contends with Start/Stop on the runner mutex.
type Buffer struct {
	mu         sync.Mutex // protects chunks and dropped
	chunks     []string
	dropped    uint64
	maxPending int // 0 = unbounded
}

// NewBuffer returns a buffer that holds at most maxPending undrained chunks,
// dropping the oldest when full. maxPending <= 0 means unbounded.
func NewBuffer(maxPending int) *Buffer {
	return &Buffer{maxPending: maxPending}
}

func (b *Buffer) Append(chunk string) {
	if chunk == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.maxPending > 0 {
		for len(b.chunks) >= b.maxPending {
			b.chunks = b.chunks[1:]
			b.dropped++
		}
	}
	b.chunks = append(b.chunks, chunk)
}

// Drain removes and returns all queued chunks concatenated in arrival order.
func (b *Buffer) Drain() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range b.chunks {
		sb.WriteString(c)
	}
	b.chunks = nil
	return sb.String()
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// Dropped reports how many chunks were discarded due to the cap.
func (b *Buffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
