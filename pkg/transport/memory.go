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
	"fmt"
	"sync"

	"github.com/mfreeman451/ictmon/pkg/models"
)

// MemorySubscriber is an in-process Subscriber fed by Deliver. It backs dry
// runs and tests of the poll loop.
type MemorySubscriber struct {
	node       models.NodeConfig
	connectErr error

	mu        sync.Mutex
	pending   int
	failure   error
	connected bool
	closed    bool
	wake      func()
}

var _ Subscriber = (*MemorySubscriber)(nil)

// NewMemorySubscriber creates a MemorySubscriber for node. A non-nil
// connectErr is returned from Connect.
func NewMemorySubscriber(node models.NodeConfig, connectErr error) *MemorySubscriber {
	return &MemorySubscriber{node: node, connectErr: connectErr}
}

func (m *MemorySubscriber) Name() string {
	return m.node.Name
}

func (m *MemorySubscriber) Endpoint() string {
	return "inproc://" + m.node.Name
}

func (m *MemorySubscriber) Connect(context.Context) error {
	if m.connectErr != nil {
		return fmt.Errorf("%w: node %s at %s: %w", ErrConnect, m.node.Name, m.Endpoint(), m.connectErr)
	}

	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()

	return nil
}

func (m *MemorySubscriber) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.connected
}

// Deliver queues n messages and wakes the poll set.
func (m *MemorySubscriber) Deliver(n int) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()

		return
	}

	m.pending += n
	wake := m.wake
	m.mu.Unlock()

	if wake != nil && n > 0 {
		wake()
	}
}

// Fail queues a receive error and marks the subscriber disconnected.
func (m *MemorySubscriber) Fail(err error) {
	m.mu.Lock()
	m.failure = err
	m.connected = false
	wake := m.wake
	m.mu.Unlock()

	if wake != nil {
		wake()
	}
}

// Pending returns the number of queued messages.
func (m *MemorySubscriber) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pending
}

func (m *MemorySubscriber) Readable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pending > 0 || m.failure != nil
}

func (m *MemorySubscriber) TryRecv() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending > 0 {
		m.pending--

		return nil
	}

	if m.failure != nil {
		err := m.failure
		m.failure = nil

		return fmt.Errorf("%w: node %s: %w", ErrRecv, m.node.Name, err)
	}

	return ErrNoMessage
}

func (m *MemorySubscriber) Watch(wake func()) {
	m.mu.Lock()
	m.wake = wake
	m.mu.Unlock()
}

func (m *MemorySubscriber) Close() error {
	m.mu.Lock()
	m.closed = true
	m.connected = false
	m.pending = 0
	m.mu.Unlock()

	return nil
}
