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

package registry

import (
	"sync"
	"time"
)

// compactThreshold is the number of dead head slots tolerated before the
// backing slice is compacted.
const compactThreshold = 1024

// timeQueue is a FIFO of arrival timestamps in non-decreasing order.
type timeQueue struct {
	mu    sync.Mutex
	items []time.Time
	head  int
}

// push appends t. A timestamp earlier than the current tail is clamped to the
// tail so that the queue stays ordered.
func (q *timeQueue) push(t time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n := len(q.items); n > q.head && t.Before(q.items[n-1]) {
		t = q.items[n-1]
	}

	q.items = append(q.items, t)
}

// evictBefore drops every timestamp strictly earlier than cutoff and returns
// the number remaining and the number dropped.
func (q *timeQueue) evictBefore(cutoff time.Time) (remaining, evicted int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head < len(q.items) && q.items[q.head].Before(cutoff) {
		q.items[q.head] = time.Time{}
		q.head++
		evicted++
	}

	q.compact()

	return len(q.items) - q.head, evicted
}

func (q *timeQueue) compact() {
	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
}

func (q *timeQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items) - q.head
}

func (q *timeQueue) snapshot() []time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]time.Time, len(q.items)-q.head)
	copy(out, q.items[q.head:])

	return out
}
