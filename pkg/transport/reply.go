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

package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/go-zeromq/zmq4"
)

// ZMQReplier is a REP socket answering one request with one reply.
type ZMQReplier struct {
	endpoint string

	mu     sync.Mutex
	sock   zmq4.Socket
	cancel context.CancelFunc
	closed bool
}

var _ Replier = (*ZMQReplier)(nil)

// NewZMQReplier creates a replier that will bind endpoint, e.g.
// "tcp://*:5562".
func NewZMQReplier(endpoint string) *ZMQReplier {
	return &ZMQReplier{endpoint: endpoint}
}

// BindEndpoint returns the REP endpoint for host and port.
func BindEndpoint(host string, port int) string {
	return fmt.Sprintf("tcp://%s:%d", host, port)
}

// Listen binds the REP socket.
func (r *ZMQReplier) Listen(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sock != nil {
		return nil
	}

	sockCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sock := zmq4.NewRep(sockCtx)

	if err := sock.Listen(r.endpoint); err != nil {
		cancel()
		_ = sock.Close()

		return fmt.Errorf("%w: %s: %w", ErrBind, r.endpoint, err)
	}

	r.sock = sock
	r.cancel = cancel

	return nil
}

func (r *ZMQReplier) socket() (zmq4.Socket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	if r.sock == nil {
		return nil, ErrNotConnected
	}

	return r.sock, nil
}

// Recv blocks for the next request.
func (r *ZMQReplier) Recv() (string, error) {
	sock, err := r.socket()
	if err != nil {
		return "", err
	}

	msg, err := sock.Recv()
	if err != nil {
		if r.isClosed() {
			return "", ErrClosed
		}

		return "", fmt.Errorf("%w: %w", ErrRecv, err)
	}

	if len(msg.Frames) == 0 {
		return "", nil
	}

	return string(msg.Frames[0]), nil
}

// Send answers the pending request.
func (r *ZMQReplier) Send(reply string) error {
	sock, err := r.socket()
	if err != nil {
		return err
	}

	return sock.Send(zmq4.NewMsgString(reply))
}

// Addr returns the bound address, or nil before Listen.
func (r *ZMQReplier) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sock == nil {
		return nil
	}

	return r.sock.Addr()
}

func (r *ZMQReplier) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closed
}

func (r *ZMQReplier) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true

	var err error

	if r.sock != nil {
		err = r.sock.Close()
	}

	if r.cancel != nil {
		r.cancel()
	}

	return err
}

// Request sends one query to a REP endpoint and waits for its reply.
func Request(ctx context.Context, endpoint, request string) (string, error) {
	sock := zmq4.NewReq(ctx)
	defer sock.Close()

	if err := sock.Dial(endpoint); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrConnect, endpoint, err)
	}

	if err := sock.Send(zmq4.NewMsgString(request)); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	type result struct {
		msg zmq4.Msg
		err error
	}

	done := make(chan result, 1)

	go func() {
		msg, err := sock.Recv()
		done <- result{msg: msg, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %w", ErrRecv, res.err)
		}

		if len(res.msg.Frames) == 0 {
			return "", nil
		}

		return string(res.msg.Frames[0]), nil
	}
}

// Publisher is a PUB socket emitting "topic payload" single-frame messages,
// the format nodes use for transaction events.
type Publisher struct {
	sock zmq4.Socket
}

// NewPublisher binds a PUB socket on endpoint.
func NewPublisher(ctx context.Context, endpoint string) (*Publisher, error) {
	sock := zmq4.NewPub(ctx)

	if err := sock.Listen(endpoint); err != nil {
		_ = sock.Close()

		return nil, fmt.Errorf("%w: %s: %w", ErrBind, endpoint, err)
	}

	return &Publisher{sock: sock}, nil
}

// Publish sends one event.
func (p *Publisher) Publish(topic, payload string) error {
	return p.sock.Send(zmq4.NewMsgString(topic + " " + payload))
}

// Addr returns the bound address.
func (p *Publisher) Addr() net.Addr {
	return p.sock.Addr()
}

func (p *Publisher) Close() error {
	return p.sock.Close()
}
