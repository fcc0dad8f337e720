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

package metrics

import (
	"sync"

	"github.com/mfreeman451/ictmon/pkg/models"
)

// History is the per-node pair of bounded rate series, one per window.
// The aggregator is the only writer.
type History struct {
	mu     sync.RWMutex
	series [2]Store
}

// NewHistory creates a History whose series each retain capacity samples.
func NewHistory(capacity int) *History {
	return &History{
		series: [2]Store{
			models.WindowShort: NewBuffer(capacity),
			models.WindowLong:  NewBuffer(capacity),
		},
	}
}

// Append adds a rate sample to the series of window w.
func (h *History) Append(w models.Window, rate float64) {
	if !w.Valid() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.series[w].Add(rate)
}

// Latest returns the current rate of window w.
func (h *History) Latest(w models.Window) (float64, bool) {
	if !w.Valid() {
		return 0, false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.series[w].Last()
}

// Points returns a copy of window w's series, oldest first.
func (h *History) Points(w models.Window) []float64 {
	if !w.Valid() {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.series[w].Points()
}

// Series returns both series copied under a single read lock.
func (h *History) Series() (short, long []float64) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.series[models.WindowShort].Points(), h.series[models.WindowLong].Points()
}

// Len returns the number of samples retained for window w.
func (h *History) Len(w models.Window) int {
	if !w.Valid() {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.series[w].Len()
}
