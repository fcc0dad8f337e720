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

// Package lifecycle runs a long-lived service alongside its health server and
// handles shutdown on signals.
package lifecycle

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfreeman451/ictmon/pkg/grpc"
	"github.com/sirupsen/logrus"
)

const (
	ShutdownTimeout       = 10 * time.Second
	defaultHealthInterval = time.Second
)

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// HealthChecker is implemented by services that can report readiness.
type HealthChecker interface {
	Healthy() bool
}

// ServerOptions holds configuration for creating a server.
type ServerOptions struct {
	// ListenAddr is the gRPC health address; empty disables the health server.
	ListenAddr      string
	ServiceName     string
	Service         Service
	ShutdownTimeout time.Duration
	HealthInterval  time.Duration
	Logger          logrus.FieldLogger
}

// RunServer starts a service with the provided options and handles its
// lifecycle. It returns when a signal arrives, ctx is cancelled or the service
// fails; a service failure is returned as an error.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = ShutdownTimeout
	}

	if opts.HealthInterval <= 0 {
		opts.HealthInterval = defaultHealthInterval
	}

	opts.Logger.Infof("*** Starting service %s", opts.ServiceName)

	errChan := make(chan error, 2)

	go func() {
		err := opts.Service.Start(ctx)
		if err != nil {
			err = fmt.Errorf("service error: %w", err)
		}

		errChan <- err
	}()

	var grpcServer *grpc.Server

	if opts.ListenAddr != "" {
		srv, err := startHealthServer(ctx, opts, errChan)
		if err != nil {
			cancel()
			stopService(opts)

			return err
		}

		grpcServer = srv
	}

	return handleShutdown(ctx, cancel, grpcServer, opts, errChan)
}

func startHealthServer(ctx context.Context, opts *ServerOptions, errChan chan<- error) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", opts.ListenAddr, err)
	}

	srv := grpc.NewServer(opts.ListenAddr, grpc.WithLogger(opts.Logger))
	srv.AddService(opts.ServiceName)

	go func() {
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	if checker, ok := opts.Service.(HealthChecker); ok {
		go watchHealth(ctx, srv, opts, checker)
	} else {
		srv.SetServing(opts.ServiceName, true)
	}

	return srv, nil
}

func watchHealth(ctx context.Context, srv *grpc.Server, opts *ServerOptions, checker HealthChecker) {
	ticker := time.NewTicker(opts.HealthInterval)
	defer ticker.Stop()

	last := false

	for {
		healthy := checker.Healthy()
		if healthy != last {
			opts.Logger.WithField("serving", healthy).Info("Health status changed")
			last = healthy
		}

		srv.SetServing(opts.ServiceName, healthy)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func stopService(opts *ServerOptions) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()

	if err := opts.Service.Stop(shutdownCtx); err != nil {
		opts.Logger.WithError(err).Warn("Error during service shutdown")
	}
}

func handleShutdown(
	ctx context.Context, cancel context.CancelFunc, grpcServer *grpc.Server, opts *ServerOptions, errChan chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	var runErr error

	select {
	case sig := <-sigChan:
		opts.Logger.Infof("Received signal %v, initiating shutdown", sig)
	case runErr = <-errChan:
		if runErr != nil {
			opts.Logger.WithError(runErr).Error("Initiating shutdown")
		}
	case <-ctx.Done():
		opts.Logger.Info("Context canceled, initiating shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	if grpcServer != nil {
		grpcServer.Stop(shutdownCtx)
	}

	if err := opts.Service.Stop(shutdownCtx); err != nil {
		opts.Logger.WithError(err).Warn("Error during service shutdown")

		if runErr == nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return runErr
}
