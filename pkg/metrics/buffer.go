/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics pkg/metrics/buffer.go
package metrics

// RingBuffer is a fixed-capacity FIFO of rate samples. When full, adding a
// sample overwrites the oldest one. It is not safe for concurrent use; History
// provides the locking.
type RingBuffer struct {
	points []float64
	head   int // index of the oldest sample
	size   int
}

// NewBuffer creates a new Store with the given capacity.
func NewBuffer(capacity int) Store {
	return NewRingBuffer(capacity)
}

// NewRingBuffer creates a RingBuffer holding at most capacity samples.
// A capacity below one is raised to one.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}

	return &RingBuffer{
		points: make([]float64, capacity),
	}
}

// Add appends a sample, evicting the oldest one first when at capacity.
func (b *RingBuffer) Add(v float64) {
	capacity := len(b.points)

	if b.size < capacity {
		b.points[(b.head+b.size)%capacity] = v
		b.size++

		return
	}

	b.points[b.head] = v
	b.head = (b.head + 1) % capacity
}

// Points returns a copy of the retained samples, oldest first.
func (b *RingBuffer) Points() []float64 {
	out := make([]float64, b.size)

	for i := range out {
		out[i] = b.points[(b.head+i)%len(b.points)]
	}

	return out
}

// Last returns the most recent sample.
func (b *RingBuffer) Last() (float64, bool) {
	if b.size == 0 {
		return 0, false
	}

	return b.points[(b.head+b.size-1)%len(b.points)], true
}

// Len returns the number of retained samples.
func (b *RingBuffer) Len() int {
	return b.size
}

// Cap returns the maximum number of retained samples.
func (b *RingBuffer) Cap() int {
	return len(b.points)
}
