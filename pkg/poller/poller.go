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

package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfreeman451/ictmon/pkg/registry"
	"github.com/mfreeman451/ictmon/pkg/transport"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// New creates a Poller. subs[i] must be the subscription of nodes[i].
func New(config Config, nodes []*registry.Node, subs []transport.Subscriber, logger logrus.FieldLogger) (*Poller, error) {
	if len(subs) == 0 {
		return nil, errNoSubscribers
	}

	if len(subs) != len(nodes) {
		return nil, fmt.Errorf("%w: %d nodes, %d subscribers", errSubscriberMissing, len(nodes), len(subs))
	}

	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}

	if config.PollTimeout < 0 {
		config.PollTimeout = 0
	}

	if config.ReceiveBatch < 1 {
		config.ReceiveBatch = defaultReceiveBatch
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	limiters := make([]*rate.Limiter, len(subs))
	for i := range limiters {
		limiters[i] = rate.NewLimiter(rate.Every(errorLogInterval), 1)
	}

	return &Poller{
		config:   config,
		nodes:    nodes,
		set:      transport.NewPollSet(subs...),
		limiters: limiters,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start runs the poll loop until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.WithFields(logrus.Fields{
		"interval": p.config.PollInterval,
		"nodes":    len(p.nodes),
	}).Info("Starting poller")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poller stopped")

			return ctx.Err()
		case <-ticker.C:
			if err := p.PollOnce(ctx); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// PollOnce performs one multiplexed readiness check and records an arrival
// for every successful receive. Receive errors are contained to their node.
func (p *Poller) PollOnce(ctx context.Context) error {
	p.ticks.Add(1)

	ready, err := p.set.Poll(ctx, p.config.PollTimeout)
	if err != nil {
		return err
	}

	for _, i := range ready {
		p.drain(i)
	}

	for i, n := range p.nodes {
		n.SetConnected(p.set.Subscriber(i).Connected())
	}

	return nil
}

func (p *Poller) drain(i int) {
	sub := p.set.Subscriber(i)
	node := p.nodes[i]

	for n := p.config.ReceiveBatch; n > 0; n-- {
		err := sub.TryRecv()

		switch {
		case err == nil:
			node.Events.Record(p.now())
			p.received.Add(1)
		case errors.Is(err, transport.ErrNoMessage):
			return
		default:
			if p.limiters[i].Allow() {
				p.logger.WithError(err).WithField("node", node.Name()).Debug("Receive failed")
			}

			return
		}
	}
}

// Stats returns the number of ticks run and messages recorded.
func (p *Poller) Stats() (ticks, received uint64) {
	return p.ticks.Load(), p.received.Load()
}
