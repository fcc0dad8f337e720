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

// Package poller records transaction arrivals from every node subscription.
package poller

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/mfreeman451/ictmon/pkg/registry"
	"github.com/mfreeman451/ictmon/pkg/transport"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultPollInterval = 10 * time.Millisecond
	defaultReceiveBatch = 1
	errorLogInterval    = time.Second
)

var (
	errNoSubscribers     = errors.New("no subscribers")
	errSubscriberMissing = errors.New("subscriber count does not match nodes")
)

// Config controls the poll loop.
type Config struct {
	// PollInterval is the tick between multiplexed readiness checks.
	PollInterval time.Duration
	// PollTimeout bounds each readiness wait. Zero means non-blocking.
	PollTimeout time.Duration
	// ReceiveBatch is the number of receives attempted per ready node per tick.
	ReceiveBatch int
}

// Poller multiplexes all node subscriptions and appends an arrival timestamp
// to the owning node's EventStore for each received message.
type Poller struct {
	config   Config
	nodes    []*registry.Node
	set      *transport.PollSet
	limiters []*rate.Limiter
	logger   logrus.FieldLogger
	now      func() time.Time

	ticks    atomic.Uint64
	received atomic.Uint64
}
