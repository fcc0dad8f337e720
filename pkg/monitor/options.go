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

package monitor

import (
	"io"
	"time"

	"github.com/mfreeman451/ictmon/pkg/chart"
	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/mfreeman451/ictmon/pkg/transport"
	"github.com/sirupsen/logrus"
)

// SubscriberFactory creates the subscription for one node.
type SubscriberFactory func(node models.NodeConfig, topic string, hwm int, logger logrus.FieldLogger) transport.Subscriber

// ZMQSubscriberFactory creates ZeroMQ SUB subscriptions.
func ZMQSubscriberFactory(node models.NodeConfig, topic string, hwm int, logger logrus.FieldLogger) transport.Subscriber {
	return transport.NewZMQSubscriber(node, topic, hwm, logger)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithSubscriberFactory replaces the ZeroMQ subscriber factory.
func WithSubscriberFactory(f SubscriberFactory) Option {
	return func(m *Monitor) {
		m.newSubscriber = f
	}
}

// WithReplier replaces the ZeroMQ REP socket of the query responder.
func WithReplier(r transport.Replier) Option {
	return func(m *Monitor) {
		m.replier = r
	}
}

// WithRenderer replaces the PNG chart renderer.
func WithRenderer(r chart.Renderer) Option {
	return func(m *Monitor) {
		m.renderer = r
	}
}

// WithOutput sets where the display table is written.
func WithOutput(w io.Writer) Option {
	return func(m *Monitor) {
		m.out = w
	}
}

// WithClock overrides the time source used for the uptime origin.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}
