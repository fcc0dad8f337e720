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

package lifecycle

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mfreeman451/ictmon/pkg/grpc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	startErr error
	healthy  atomic.Bool
	stopped  atomic.Bool
}

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	<-ctx.Done()

	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)

	return nil
}

func (f *fakeService) Healthy() bool {
	return f.healthy.Load()
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)

	return l
}

func freeAddr(t *testing.T) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	return addr
}

func TestRunServerStopsOnCancel(t *testing.T) {
	svc := &fakeService{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- RunServer(ctx, &ServerOptions{ServiceName: "test", Service: svc, Logger: quietLogger()})
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunServer did not return")
	}

	assert.True(t, svc.stopped.Load())
}

func TestRunServerReturnsServiceError(t *testing.T) {
	boom := errors.New("cannot connect")
	svc := &fakeService{startErr: boom}

	err := RunServer(context.Background(), &ServerOptions{ServiceName: "test", Service: svc, Logger: quietLogger()})
	require.ErrorIs(t, err, boom)
	assert.True(t, svc.stopped.Load())
}

func TestRunServerHealth(t *testing.T) {
	svc := &fakeService{}
	addr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- RunServer(ctx, &ServerOptions{
			ListenAddr:     addr,
			ServiceName:    "ictmon",
			Service:        svc,
			HealthInterval: 10 * time.Millisecond,
			Logger:         quietLogger(),
		})
	}()

	client, err := grpc.NewClient(addr, grpc.WithMaxRetries(1), grpc.WithClientLogger(quietLogger()))
	require.NoError(t, err)

	defer client.Close()

	healthIs := func(want bool) func() bool {
		return func() bool {
			callCtx, callCancel := context.WithTimeout(ctx, time.Second)
			defer callCancel()

			ok, err := client.CheckHealth(callCtx, "ictmon")

			return err == nil && ok == want
		}
	}

	assert.Eventually(t, healthIs(false), 5*time.Second, 20*time.Millisecond)

	svc.healthy.Store(true)
	assert.Eventually(t, healthIs(true), 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("RunServer did not return")
	}
}
