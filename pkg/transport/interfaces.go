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

// Package transport provides the ZeroMQ sockets used to receive transaction
// events from nodes and to answer metric queries.
package transport

//go:generate mockgen -destination=mock_transport.go -package=transport github.com/mfreeman451/ictmon/pkg/transport Subscriber,Replier

import (
	"context"
	"net"
)

// Subscriber is one node's event subscription. Receives are non-blocking;
// readiness is observed through Readable and the wake callback.
type Subscriber interface {
	Name() string
	Endpoint() string
	// Connect establishes the subscription. A failure is fatal to startup.
	Connect(ctx context.Context) error
	// Connected reports whether the subscription is still healthy.
	Connected() bool
	// Readable reports whether TryRecv would return without ErrNoMessage.
	Readable() bool
	// TryRecv consumes one queued message, discarding its payload.
	TryRecv() error
	// Watch registers a callback invoked whenever the subscriber becomes
	// readable.
	Watch(wake func())
	Close() error
}

// Replier is the server side of the request/reply query channel.
type Replier interface {
	Listen(ctx context.Context) error
	Recv() (string, error)
	Send(reply string) error
	Addr() net.Addr
	Close() error
}
