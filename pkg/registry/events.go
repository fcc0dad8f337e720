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
	"sync/atomic"
	"time"

	"github.com/mfreeman451/ictmon/pkg/models"
)

// EventStore records transaction arrivals for one node. Every arrival is
// appended to both the short and the long queue; each queue is trimmed
// independently against its own horizon.
type EventStore struct {
	queues [2]timeQueue
	total  atomic.Uint64
}

// NewEventStore creates an empty EventStore.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// Record appends arrival time t to both windows.
func (s *EventStore) Record(t time.Time) {
	for i := range s.queues {
		s.queues[i].push(t)
	}

	s.total.Add(1)
}

// Evict removes every timestamp of window w strictly before cutoff.
func (s *EventStore) Evict(w models.Window, cutoff time.Time) (remaining, evicted int) {
	if !w.Valid() {
		return 0, 0
	}

	return s.queues[w].evictBefore(cutoff)
}

// Len returns the number of retained timestamps of window w.
func (s *EventStore) Len(w models.Window) int {
	if !w.Valid() {
		return 0
	}

	return s.queues[w].len()
}

// Timestamps returns a copy of window w's timestamps, oldest first.
func (s *EventStore) Timestamps(w models.Window) []time.Time {
	if !w.Valid() {
		return nil
	}

	return s.queues[w].snapshot()
}

// Total returns the number of arrivals ever recorded.
func (s *EventStore) Total() uint64 {
	return s.total.Load()
}
