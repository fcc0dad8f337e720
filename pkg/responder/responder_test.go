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

package responder

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/mfreeman451/ictmon/pkg/chart"
	"github.com/mfreeman451/ictmon/pkg/metrics"
	"github.com/mfreeman451/ictmon/pkg/models"
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

type panickyHistory struct{}

func (panickyHistory) Latest(models.Window) (float64, bool) { panic("corrupt history") }
func (panickyHistory) Series() (short, long []float64)     { return nil, nil }

func TestHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := metrics.NewHistory(10)
	renderer := chart.NewMockRenderer(ctrl)
	r := New(history, renderer, nil, quietLogger())

	t.Run("empty history answers zero", func(t *testing.T) {
		assert.Equal(t, "tps;0.00", r.Handle("tps"))
		assert.Equal(t, "tps10;0.00", r.Handle("tps10"))
	})

	history.Append(models.WindowShort, 2.5)
	history.Append(models.WindowShort, 6)
	history.Append(models.WindowLong, 1.234)

	t.Run("latest samples", func(t *testing.T) {
		assert.Equal(t, "tps;6.00", r.Handle("tps"))
		assert.Equal(t, "tps10;1.23", r.Handle("tps10"))
	})

	t.Run("repeated queries without a tick agree", func(t *testing.T) {
		assert.Equal(t, r.Handle("tps"), r.Handle("tps"))
	})

	t.Run("unknown verbs echo the request", func(t *testing.T) {
		for _, req := range []string{"", "TPS", "tps ", "hello;world"} {
			assert.Equal(t, "unknown;"+req, r.Handle(req))
		}
	})

	t.Run("graph forwards both series", func(t *testing.T) {
		renderer.EXPECT().Render([]float64{2.5, 6}, []float64{1.234}).Return("graph.png", nil)

		assert.Equal(t, "graph;graph.png", r.Handle("graph"))
	})

	t.Run("graph failure is reported in-band", func(t *testing.T) {
		renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return("", chart.ErrNoData)

		verb, value := ParseReply(r.Handle("graph"))
		assert.Equal(t, VerbError, verb)
		assert.Equal(t, chart.ErrNoData.Error(), value)
	})
}

func TestHandleWithoutRenderer(t *testing.T) {
	r := New(metrics.NewHistory(1), nil, nil, quietLogger())

	verb, _ := ParseReply(r.Handle("graph"))
	assert.Equal(t, VerbError, verb)
}

func TestHandleRecoversPanic(t *testing.T) {
	r := New(panickyHistory{}, nil, nil, quietLogger())

	assert.Equal(t, "error;corrupt history", r.Handle("tps"))
}

func TestServeWithMockReplier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := metrics.NewHistory(10)
	history.Append(models.WindowShort, 3)

	replier := transport.NewMockReplier(ctrl)
	replier.EXPECT().Addr().Return(nil)

	gomock.InOrder(
		replier.EXPECT().Recv().Return("tps", nil),
		replier.EXPECT().Send("tps;3.00").Return(nil),
		replier.EXPECT().Recv().Return("", errors.New("interrupted")),
		replier.EXPECT().Recv().Return("bogus", nil),
		replier.EXPECT().Send("unknown;bogus").Return(nil),
		replier.EXPECT().Recv().Return("", transport.ErrClosed),
	)

	r := New(history, nil, replier, quietLogger())

	require.NoError(t, r.Serve(context.Background()))
	assert.Equal(t, uint64(2), r.Served())
}

func TestServeOverZMQ(t *testing.T) {
	history := metrics.NewHistory(10)
	history.Append(models.WindowShort, 15)
	history.Append(models.WindowLong, 6)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replier := transport.NewZMQReplier("tcp://127.0.0.1:0")
	require.NoError(t, replier.Listen(ctx))

	tcp, ok := replier.Addr().(*net.TCPAddr)
	require.True(t, ok)

	r := New(history, nil, replier, quietLogger())
	done := make(chan error, 1)

	go func() { done <- r.Serve(ctx) }()

	endpoint := transport.BindEndpoint("127.0.0.1", tcp.Port)

	reqCtx, reqCancel := context.WithTimeout(ctx, 5*time.Second)
	defer reqCancel()

	for req, want := range map[string]string{
		"tps":   "tps;15.00",
		"tps10": "tps10;6.00",
		"what":  "unknown;what",
	} {
		reply, err := transport.Request(reqCtx, endpoint, req)
		require.NoError(t, err)
		assert.Equal(t, want, reply)
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("responder did not stop")
	}
}

func TestParseReply(t *testing.T) {
	verb, value := ParseReply("graph;/tmp/graph.png")
	assert.Equal(t, "graph", verb)
	assert.Equal(t, "/tmp/graph.png", value)

	verb, value = ParseReply("unknown;a;b")
	assert.Equal(t, "unknown", verb)
	assert.Equal(t, "a;b", value)
}
