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

package transport

import (
	"context"
	"time"
)

// PollSet multiplexes readiness across a fixed set of subscribers.
type PollSet struct {
	subs []Subscriber
	wake chan struct{}
}

// NewPollSet creates a PollSet over subs. Indices returned by Poll refer to
// the order given here.
func NewPollSet(subs ...Subscriber) *PollSet {
	p := &PollSet{
		subs: subs,
		wake: make(chan struct{}, 1),
	}

	for _, s := range subs {
		s.Watch(p.signal)
	}

	return p
}

func (p *PollSet) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of subscribers in the set.
func (p *PollSet) Len() int {
	return len(p.subs)
}

// Subscriber returns the subscriber at index i.
func (p *PollSet) Subscriber(i int) Subscriber {
	return p.subs[i]
}

// Poll waits at most timeout for any subscriber to become readable and
// returns the indices of all readable subscribers. An empty result means the
// wait timed out.
func (p *PollSet) Poll(ctx context.Context, timeout time.Duration) ([]int, error) {
	if ready := p.ready(); len(ready) > 0 {
		return ready, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.wake:
	case <-timer.C:
	}

	return p.ready(), nil
}

func (p *PollSet) ready() []int {
	var ready []int

	for i, s := range p.subs {
		if s.Readable() {
			ready = append(ready, i)
		}
	}

	return ready
}
