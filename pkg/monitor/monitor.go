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

// Package monitor wires node subscriptions, rate aggregation and the query
// surfaces into one service.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mfreeman451/ictmon/pkg/aggregator"
	"github.com/mfreeman451/ictmon/pkg/api"
	"github.com/mfreeman451/ictmon/pkg/chart"
	"github.com/mfreeman451/ictmon/pkg/config"
	"github.com/mfreeman451/ictmon/pkg/display"
	"github.com/mfreeman451/ictmon/pkg/logger"
	"github.com/mfreeman451/ictmon/pkg/metrics"
	"github.com/mfreeman451/ictmon/pkg/poller"
	"github.com/mfreeman451/ictmon/pkg/registry"
	"github.com/mfreeman451/ictmon/pkg/responder"
	"github.com/mfreeman451/ictmon/pkg/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Monitor is the running ictmon service.
type Monitor struct {
	cfg    *config.Config
	logger logrus.FieldLogger

	registry *registry.Registry
	gatherer *prometheus.Registry
	started  time.Time

	newSubscriber SubscriberFactory
	replier       transport.Replier
	renderer      chart.Renderer
	out           io.Writer
	now           func() time.Time

	mu   sync.Mutex
	subs []transport.Subscriber

	ready atomic.Bool
}

// New builds a Monitor for a validated configuration.
func New(cfg *config.Config, log logrus.FieldLogger, opts ...Option) (*Monitor, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	m := &Monitor{
		cfg:           cfg,
		logger:        log,
		newSubscriber: ZMQSubscriberFactory,
		out:           os.Stdout,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	reg, err := registry.New(cfg.Nodes, cfg.Windows.HistoryCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to build node registry: %w", err)
	}

	m.registry = reg
	m.started = m.now()

	if m.renderer == nil {
		m.renderer = chart.NewPNGRenderer(cfg.ChartDir)
	}

	if m.replier == nil && cfg.Responder.Enabled {
		m.replier = transport.NewZMQReplier(transport.BindEndpoint(cfg.Responder.Bind, cfg.Responder.Port))
	}

	m.gatherer = prometheus.NewRegistry()
	m.gatherer.MustRegister(
		metrics.NewCollector(reg, m.started),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m, nil
}

// Registry returns the node registry.
func (m *Monitor) Registry() *registry.Registry {
	return m.registry
}

// Gatherer returns the Prometheus registry backing /metrics.
func (m *Monitor) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// StartedAt returns the uptime origin.
func (m *Monitor) StartedAt() time.Time {
	return m.started
}

// Start connects every node, binds the responder and runs all tasks until
// ctx is cancelled. Connection and bind failures are returned immediately.
func (m *Monitor) Start(ctx context.Context) error {
	subs, err := m.connect(ctx)
	if err != nil {
		return err
	}

	if m.cfg.Responder.Enabled {
		if err := m.replier.Listen(ctx); err != nil {
			return err
		}
	}

	p, err := poller.New(poller.Config{
		PollInterval: m.cfg.Windows.PollInterval,
		PollTimeout:  m.cfg.Windows.PollTimeout,
		ReceiveBatch: m.cfg.Transport.ReceiveBatch,
	}, m.registry.Nodes(), subs, logger.WithComponent(m.logger, "poller"))
	if err != nil {
		return err
	}

	agg := aggregator.New(m.registry.Nodes(), m.cfg.Windows, m.started, logger.WithComponent(m.logger, "aggregator"))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(p.Start(gctx))
	})

	g.Go(func() error {
		if !sleep(gctx, m.cfg.Windows.InitialDelay) {
			return nil
		}

		return ignoreCanceled(agg.Run(gctx))
	})

	if m.cfg.Display.Enabled {
		d := display.New(m.out, m.registry, m.cfg.Display.RefreshInterval,
			config.AppName, config.AppVersion, logger.WithComponent(m.logger, "display"))
		d.Welcome()

		g.Go(func() error {
			return d.Run(gctx)
		})
	}

	if m.cfg.Responder.Enabled {
		r := responder.New(m.registry.First().History, m.renderer, m.replier, logger.WithComponent(m.logger, "responder"))

		g.Go(func() error {
			return r.Serve(gctx)
		})
	}

	if m.cfg.HTTP.ListenAddr != "" {
		srv := api.NewServer(api.Config{
			ListenAddr:     m.cfg.HTTP.ListenAddr,
			MaxConns:       m.cfg.HTTP.MaxConns,
			StreamInterval: m.cfg.HTTP.StreamInterval,
			Windows:        m.cfg.Windows,
			StartedAt:      m.started,
		}, m.registry, m.gatherer, logger.WithComponent(m.logger, "api"))

		g.Go(func() error {
			return srv.ListenAndServe(gctx)
		})
	}

	m.ready.Store(true)
	m.logger.WithField("nodes", m.registry.Len()).Info("Monitor started")

	err = g.Wait()

	m.ready.Store(false)

	return err
}

func (m *Monitor) connect(ctx context.Context) ([]transport.Subscriber, error) {
	subs := make([]transport.Subscriber, 0, m.registry.Len())

	for _, n := range m.registry.Nodes() {
		sub := m.newSubscriber(n.Config, m.cfg.Topic, m.cfg.Transport.HighWaterMark,
			logger.WithComponent(m.logger, "transport"))

		m.mu.Lock()
		m.subs = append(m.subs, sub)
		m.mu.Unlock()

		if err := sub.Connect(ctx); err != nil {
			return nil, err
		}

		n.SetConnected(true)
		subs = append(subs, sub)
	}

	return subs, nil
}

// Stop closes every subscription and the query socket.
func (m *Monitor) Stop(context.Context) error {
	m.ready.Store(false)

	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()

	var errs []error

	for _, s := range subs {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", s.Name(), err))
		}
	}

	if m.replier != nil {
		if err := m.replier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing responder: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Healthy reports whether the monitor runs and every subscription is up.
func (m *Monitor) Healthy() bool {
	if !m.ready.Load() {
		return false
	}

	for _, n := range m.registry.Nodes() {
		if !n.Connected() {
			return false
		}
	}

	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}

	return err
}
