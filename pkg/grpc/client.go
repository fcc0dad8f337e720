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

package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

const (
	defaultMaxRetries                 = 3
	retryInterceptorTimeoutDuration   = 100 * time.Millisecond
	retryInterceptorAttemptMultiplier = 1
	grpcKeepAliveTime                 = 10 * time.Second
	grpcKeepAliveTimeout              = 5 * time.Second
)

// ClientOption allows customization of the client.
type ClientOption func(*ClientConn)

// ClientConn wraps a gRPC client connection used to query the health service.
type ClientConn struct {
	conn         *grpc.ClientConn
	healthClient grpc_health_v1.HealthClient
	addr         string
	maxRetries   int
	logger       logrus.FieldLogger
}

// NewClient creates a new gRPC client connection. No network I/O happens
// until the first call.
func NewClient(addr string, opts ...ClientOption) (*ClientConn, error) {
	if addr == "" {
		return nil, errAddressRequired
	}

	c := &ClientConn{
		addr:       addr,
		maxRetries: defaultMaxRetries,
		logger:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			ClientLoggingInterceptor(c.logger),
			RetryInterceptor(c.maxRetries, c.logger),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                grpcKeepAliveTime,
			Timeout:             grpcKeepAliveTimeout,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", addr, err)
	}

	c.conn = conn
	c.healthClient = grpc_health_v1.NewHealthClient(conn)

	return c, nil
}

// WithMaxRetries sets the maximum number of attempts per call.
func WithMaxRetries(retries int) ClientOption {
	return func(c *ClientConn) {
		c.maxRetries = retries
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *ClientConn) {
		c.logger = logger
	}
}

// RetryInterceptor retries failed calls with a linear backoff.
func RetryInterceptor(maxRetries int, logger logrus.FieldLogger) grpc.UnaryClientInterceptor {
	if maxRetries < 1 {
		maxRetries = 1
	}

	return func(ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption) error {
		var lastErr error

		for attempt := 0; attempt < maxRetries; attempt++ {
			err := invoker(ctx, method, req, reply, cc, opts...)
			if err == nil {
				return nil
			}

			lastErr = err
			logger.WithError(err).Debugf("gRPC call attempt %d failed", attempt+1)

			delay := time.Duration((attempt+1)*retryInterceptorAttemptMultiplier) * retryInterceptorTimeoutDuration

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		return fmt.Errorf("all retry attempts failed: %w", lastErr)
	}
}

// GetConnection returns the underlying gRPC connection.
func (c *ClientConn) GetConnection() *grpc.ClientConn {
	return c.conn
}

// Close closes the client connection.
func (c *ClientConn) Close() error {
	return c.conn.Close()
}

// CheckHealth reports whether service is SERVING.
func (c *ClientConn) CheckHealth(ctx context.Context, service string) (bool, error) {
	resp, err := c.healthClient.Check(ctx, &grpc_health_v1.HealthCheckRequest{
		Service: service,
	})
	if err != nil {
		return false, fmt.Errorf("health check failed: %w", err)
	}

	return resp.Status == grpc_health_v1.HealthCheckResponse_SERVING, nil
}

// ClientLoggingInterceptor logs client-side RPC calls.
func ClientLoggingInterceptor(logger logrus.FieldLogger) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req interface{},
		reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)

		logger.WithFields(logrus.Fields{
			"method":   method,
			"duration": time.Since(start),
		}).WithError(err).Debug("gRPC client call")

		return err
	}
}
