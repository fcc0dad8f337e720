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
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mfreeman451/ictmon/pkg/chart"
	"github.com/mfreeman451/ictmon/pkg/config"
	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/mfreeman451/ictmon/pkg/transport"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)

	return l
}

func testConfig() *config.Config {
	return &config.Config{
		Nodes: []models.NodeConfig{
			{Name: "ict-0", Address: "localhost", Port: 5561},
			{Name: "ict-1", Address: "localhost", Port: 5571},
		},
		Topic: config.DefaultTopic,
		Windows: models.WindowSpec{
			ShortHorizon:      time.Minute,
			LongHorizon:       10 * time.Minute,
			RecomputeInterval: 20 * time.Millisecond,
			PollInterval:      5 * time.Millisecond,
			PollTimeout:       5 * time.Millisecond,
			HistoryCapacity:   16,
		},
		Transport: config.TransportConfig{HighWaterMark: 16, ReceiveBatch: 1},
	}
}

// memoryFactory records the subscribers it hands out by node name.
type memoryFactory struct {
	mu     sync.Mutex
	subs   map[string]*transport.MemorySubscriber
	failOn string
}

func newMemoryFactory(failOn string) *memoryFactory {
	return &memoryFactory{subs: make(map[string]*transport.MemorySubscriber), failOn: failOn}
}

func (f *memoryFactory) create(node models.NodeConfig, _ string, _ int, _ logrus.FieldLogger) transport.Subscriber {
	var connectErr error
	if node.Name == f.failOn {
		connectErr = assert.AnError
	}

	sub := transport.NewMemorySubscriber(node, connectErr)

	f.mu.Lock()
	f.subs[node.Name] = sub
	f.mu.Unlock()

	return sub
}

func (f *memoryFactory) get(name string) *transport.MemorySubscriber {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.subs[name]
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func startMonitor(t *testing.T, m *Monitor) (cancel func(), done <-chan error) {
	t.Helper()

	ctx, cancelFn := context.WithCancel(context.Background())
	errCh := make(chan error, 1)

	go func() {
		errCh <- m.Start(ctx)
	}()

	t.Cleanup(func() {
		cancelFn()
		_ = m.Stop(context.Background())
	})

	return cancelFn, errCh
}

func TestNewRejectsInvalidNodes(t *testing.T) {
	cfg := testConfig()
	cfg.Nodes = append(cfg.Nodes, cfg.Nodes[0])

	_, err := New(cfg, quietLogger())
	require.Error(t, err)
}

func TestMonitorCountsArrivals(t *testing.T) {
	factory := newMemoryFactory("")

	m, err := New(testConfig(), quietLogger(), WithSubscriberFactory(factory.create))
	require.NoError(t, err)
	assert.False(t, m.Healthy())

	cancel, done := startMonitor(t, m)

	require.Eventually(t, m.Healthy, 2*time.Second, 5*time.Millisecond)

	factory.get("ict-0").Deliver(3)

	first := m.Registry().First()

	require.Eventually(t, func() bool {
		return first.Snapshot(time.Now()).ArrivalsTotal == 3
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return first.Rate(models.WindowShort) > 0
	}, 2*time.Second, 5*time.Millisecond)

	second, err := m.Registry().Lookup("ict-1")
	require.NoError(t, err)
	assert.Zero(t, second.Snapshot(time.Now()).ArrivalsTotal)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}

	assert.False(t, m.Healthy())
	require.NoError(t, m.Stop(context.Background()))
}

func TestMonitorDelaysAggregation(t *testing.T) {
	factory := newMemoryFactory("")

	cfg := testConfig()
	cfg.Windows.InitialDelay = time.Hour

	m, err := New(cfg, quietLogger(), WithSubscriberFactory(factory.create))
	require.NoError(t, err)

	startMonitor(t, m)

	require.Eventually(t, m.Healthy, 2*time.Second, 5*time.Millisecond)

	factory.get("ict-0").Deliver(2)

	first := m.Registry().First()

	require.Eventually(t, func() bool {
		return first.Snapshot(time.Now()).ArrivalsTotal == 2
	}, 2*time.Second, 5*time.Millisecond)

	assert.Never(t, func() bool {
		return first.History.Len(models.WindowShort) > 0
	}, 150*time.Millisecond, 10*time.Millisecond)
}

func TestMonitorUnhealthyAfterReceiveError(t *testing.T) {
	factory := newMemoryFactory("")

	m, err := New(testConfig(), quietLogger(), WithSubscriberFactory(factory.create))
	require.NoError(t, err)

	startMonitor(t, m)

	require.Eventually(t, m.Healthy, 2*time.Second, 5*time.Millisecond)

	factory.get("ict-1").Fail(assert.AnError)

	require.Eventually(t, func() bool {
		return !m.Healthy()
	}, 2*time.Second, 5*time.Millisecond)
}

func TestMonitorConnectFailureIsFatal(t *testing.T) {
	factory := newMemoryFactory("ict-1")

	m, err := New(testConfig(), quietLogger(), WithSubscriberFactory(factory.create))
	require.NoError(t, err)

	err = m.Start(context.Background())
	require.ErrorIs(t, err, transport.ErrConnect)
	assert.Contains(t, err.Error(), "ict-1")
	assert.False(t, m.Healthy())

	require.NoError(t, m.Stop(context.Background()))
	assert.False(t, factory.get("ict-0").Connected())
}

func TestMonitorBindFailureIsFatal(t *testing.T) {
	taken := transport.NewZMQReplier("tcp://127.0.0.1:0")
	require.NoError(t, taken.Listen(context.Background()))

	defer taken.Close()

	tcp, ok := taken.Addr().(*net.TCPAddr)
	require.True(t, ok)

	cfg := testConfig()
	cfg.Responder = config.ResponderConfig{Enabled: true, Bind: "127.0.0.1", Port: tcp.Port}

	m, err := New(cfg, quietLogger(), WithSubscriberFactory(newMemoryFactory("").create))
	require.NoError(t, err)

	err = m.Start(context.Background())
	require.ErrorIs(t, err, transport.ErrBind)
	require.NoError(t, m.Stop(context.Background()))
}

func TestMonitorAnswersQueries(t *testing.T) {
	factory := newMemoryFactory("")
	replier := transport.NewZMQReplier("tcp://127.0.0.1:0")

	cfg := testConfig()
	cfg.Responder.Enabled = true

	m, err := New(cfg, quietLogger(),
		WithSubscriberFactory(factory.create),
		WithReplier(replier),
		WithRenderer(chart.NewPNGRenderer(t.TempDir())),
	)
	require.NoError(t, err)

	startMonitor(t, m)

	require.Eventually(t, m.Healthy, 2*time.Second, 5*time.Millisecond)

	tcp, ok := replier.Addr().(*net.TCPAddr)
	require.True(t, ok)

	endpoint := transport.BindEndpoint("127.0.0.1", tcp.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, err := transport.Request(ctx, endpoint, "tps")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "tps;"), reply)

	reply, err = transport.Request(ctx, endpoint, "bogus")
	require.NoError(t, err)
	assert.Equal(t, "unknown;bogus", reply)
}

func TestMonitorDisplayAndMetrics(t *testing.T) {
	out := &lockedBuffer{}

	cfg := testConfig()
	cfg.Display = config.DisplayConfig{Enabled: true, RefreshInterval: 10 * time.Millisecond}

	m, err := New(cfg, quietLogger(),
		WithSubscriberFactory(newMemoryFactory("").create),
		WithOutput(out),
	)
	require.NoError(t, err)

	startMonitor(t, m)

	require.Eventually(t, func() bool {
		s := out.String()

		return strings.Contains(s, "Welcome to ictmon") && strings.Contains(s, "ict-1")
	}, 2*time.Second, 10*time.Millisecond)

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	assert.True(t, names["ictmon_tps"])
	assert.True(t, names["ictmon_uptime_seconds"])
}

func TestWithClockSetsUptimeOrigin(t *testing.T) {
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := New(testConfig(), quietLogger(), WithClock(func() time.Time { return origin }))
	require.NoError(t, err)
	assert.Equal(t, origin, m.StartedAt())
}
