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
	"sync"
	"testing"
	"time"

	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/mfreeman451/ictmon/pkg/registry"
	"github.com/mfreeman451/ictmon/pkg/transport"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)

	return l
}

func setup(t *testing.T, names ...string) (*registry.Registry, []*transport.MemorySubscriber, []transport.Subscriber) {
	t.Helper()

	cfgs := make([]models.NodeConfig, 0, len(names))
	for i, name := range names {
		cfgs = append(cfgs, models.NodeConfig{Name: name, Address: "localhost", Port: 5561 + i})
	}

	reg, err := registry.New(cfgs, 10)
	require.NoError(t, err)

	mems := make([]*transport.MemorySubscriber, 0, len(cfgs))
	subs := make([]transport.Subscriber, 0, len(cfgs))

	for _, cfg := range cfgs {
		m := transport.NewMemorySubscriber(cfg, nil)
		require.NoError(t, m.Connect(context.Background()))

		mems = append(mems, m)
		subs = append(subs, m)
	}

	return reg, mems, subs
}

func TestNewValidation(t *testing.T) {
	reg, _, subs := setup(t, "a", "b")

	_, err := New(Config{}, reg.Nodes(), nil, quietLogger())
	require.ErrorIs(t, err, errNoSubscribers)

	_, err = New(Config{}, reg.Nodes(), subs[:1], quietLogger())
	require.ErrorIs(t, err, errSubscriberMissing)

	p, err := New(Config{}, reg.Nodes(), subs, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, defaultPollInterval, p.config.PollInterval)
	assert.Equal(t, defaultReceiveBatch, p.config.ReceiveBatch)
}

func TestPollOnceOneReceivePerTick(t *testing.T) {
	reg, mems, subs := setup(t, "a")

	p, err := New(Config{PollTimeout: time.Millisecond}, reg.Nodes(), subs, quietLogger())
	require.NoError(t, err)

	fixed := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return fixed }

	mems[0].Deliver(3)

	require.NoError(t, p.PollOnce(context.Background()))
	assert.Equal(t, 1, reg.First().Events.Len(models.WindowShort))
	assert.Equal(t, 1, reg.First().Events.Len(models.WindowLong))
	assert.Equal(t, 2, mems[0].Pending())

	require.NoError(t, p.PollOnce(context.Background()))
	require.NoError(t, p.PollOnce(context.Background()))
	assert.Equal(t, 3, reg.First().Events.Len(models.WindowShort))

	ts := reg.First().Events.Timestamps(models.WindowShort)
	assert.True(t, ts[0].Equal(fixed))

	ticks, received := p.Stats()
	assert.Equal(t, uint64(3), ticks)
	assert.Equal(t, uint64(3), received)
}

func TestPollOnceBatch(t *testing.T) {
	reg, mems, subs := setup(t, "a")

	p, err := New(Config{PollTimeout: time.Millisecond, ReceiveBatch: 10}, reg.Nodes(), subs, quietLogger())
	require.NoError(t, err)

	mems[0].Deliver(4)

	require.NoError(t, p.PollOnce(context.Background()))
	assert.Equal(t, 4, reg.First().Events.Len(models.WindowShort))
}

func TestPollOnceNoCrossNodeContamination(t *testing.T) {
	reg, mems, subs := setup(t, "a", "b")

	p, err := New(Config{PollTimeout: time.Millisecond}, reg.Nodes(), subs, quietLogger())
	require.NoError(t, err)

	const perNode = 25

	var wg sync.WaitGroup

	for _, m := range mems {
		wg.Add(1)

		go func(m *transport.MemorySubscriber) {
			defer wg.Done()
			m.Deliver(perNode)
		}(m)
	}

	wg.Wait()

	for i := 0; i < perNode; i++ {
		require.NoError(t, p.PollOnce(context.Background()))
	}

	a, err := reg.Lookup("a")
	require.NoError(t, err)
	b, err := reg.Lookup("b")
	require.NoError(t, err)

	assert.Equal(t, perNode, a.Events.Len(models.WindowShort))
	assert.Equal(t, perNode, b.Events.Len(models.WindowShort))
	assert.Equal(t, uint64(perNode), a.Events.Total())
	assert.Equal(t, uint64(perNode), b.Events.Total())
}

func TestPollOnceReceiveErrorIsContained(t *testing.T) {
	reg, mems, subs := setup(t, "a", "b")

	p, err := New(Config{PollTimeout: time.Millisecond}, reg.Nodes(), subs, quietLogger())
	require.NoError(t, err)

	mems[0].Fail(errors.New("connection reset"))
	mems[1].Deliver(1)

	require.NoError(t, p.PollOnce(context.Background()))

	a, _ := reg.Lookup("a")
	b, _ := reg.Lookup("b")

	assert.Equal(t, 0, a.Events.Len(models.WindowShort))
	assert.False(t, a.Connected())
	assert.Equal(t, 1, b.Events.Len(models.WindowShort))
	assert.True(t, b.Connected())
}

func TestPollOnceWithMockSubscriber(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reg, err := registry.New(registry.FromSingle("a", "localhost", 5561), 10)
	require.NoError(t, err)

	sub := transport.NewMockSubscriber(ctrl)
	sub.EXPECT().Watch(gomock.Any())
	sub.EXPECT().Readable().Return(true)
	sub.EXPECT().TryRecv().Return(transport.ErrRecv)
	sub.EXPECT().Connected().Return(false)

	p, err := New(Config{PollTimeout: time.Millisecond, ReceiveBatch: 5}, reg.Nodes(), []transport.Subscriber{sub}, quietLogger())
	require.NoError(t, err)

	require.NoError(t, p.PollOnce(context.Background()))
	assert.Equal(t, 0, reg.First().Events.Len(models.WindowShort))
}

func TestStartStopsOnCancel(t *testing.T) {
	reg, mems, subs := setup(t, "a")

	p, err := New(Config{PollInterval: time.Millisecond, PollTimeout: time.Millisecond}, reg.Nodes(), subs, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- p.Start(ctx) }()

	mems[0].Deliver(3)

	assert.Eventually(t, func() bool {
		return reg.First().Events.Len(models.WindowShort) == 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}
