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
	"sync"
	"sync/atomic"

	"github.com/go-zeromq/zmq4"
	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultHighWaterMark bounds the messages buffered per subscriber.
	DefaultHighWaterMark = 1000
)

// ZMQSubscriber is a SUB socket dialled to one node. A reader goroutine moves
// received messages into a bounded inbox; when the inbox is full further
// messages are dropped, as a ZeroMQ SUB socket does at its high-water mark.
type ZMQSubscriber struct {
	node   models.NodeConfig
	topic  string
	logger logrus.FieldLogger

	inbox   chan struct{}
	errs    chan error
	dropped atomic.Uint64

	mu     sync.Mutex
	sock   zmq4.Socket
	cancel context.CancelFunc
	wake   func()

	connected atomic.Bool
	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

var _ Subscriber = (*ZMQSubscriber)(nil)

// NewZMQSubscriber creates an unconnected subscriber for node filtered by topic.
func NewZMQSubscriber(node models.NodeConfig, topic string, hwm int, logger logrus.FieldLogger) *ZMQSubscriber {
	if hwm < 1 {
		hwm = DefaultHighWaterMark
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &ZMQSubscriber{
		node:   node,
		topic:  topic,
		logger: logger.WithField("node", node.Name),
		inbox:  make(chan struct{}, hwm),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (s *ZMQSubscriber) Name() string {
	return s.node.Name
}

func (s *ZMQSubscriber) Endpoint() string {
	return s.node.Endpoint()
}

// Connect dials the node's publisher and subscribes to the topic.
func (s *ZMQSubscriber) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sock != nil {
		return nil
	}

	sockCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sock := zmq4.NewSub(sockCtx)

	if err := sock.Dial(s.Endpoint()); err != nil {
		cancel()
		_ = sock.Close()

		return fmt.Errorf("%w: node %s at %s: %w", ErrConnect, s.node.Name, s.Endpoint(), err)
	}

	if err := sock.SetOption(zmq4.OptionSubscribe, s.topic); err != nil {
		cancel()
		_ = sock.Close()

		return fmt.Errorf("%w: node %s subscribe %q: %w", ErrConnect, s.node.Name, s.topic, err)
	}

	s.sock = sock
	s.cancel = cancel
	s.connected.Store(true)

	s.wg.Add(1)

	go s.readLoop(sock)

	s.logger.WithField("endpoint", s.Endpoint()).Info("Subscribed to node")

	return nil
}

func (s *ZMQSubscriber) readLoop(sock zmq4.Socket) {
	defer s.wg.Done()

	for {
		if _, err := sock.Recv(); err != nil {
			select {
			case <-s.closed:
				return
			default:
			}

			s.connected.Store(false)

			select {
			case s.errs <- err:
			default:
			}

			s.notify()

			return
		}

		select {
		case s.inbox <- struct{}{}:
		default:
			s.dropped.Add(1)
		}

		s.notify()
	}
}

func (s *ZMQSubscriber) notify() {
	s.mu.Lock()
	wake := s.wake
	s.mu.Unlock()

	if wake != nil {
		wake()
	}
}

func (s *ZMQSubscriber) Connected() bool {
	return s.connected.Load()
}

func (s *ZMQSubscriber) Readable() bool {
	return len(s.inbox) > 0 || len(s.errs) > 0
}

// TryRecv consumes one queued message. A socket failure is reported once
// wrapped in ErrRecv; afterwards the subscriber stays silent.
func (s *ZMQSubscriber) TryRecv() error {
	select {
	case <-s.inbox:
		return nil
	default:
	}

	select {
	case err := <-s.errs:
		return fmt.Errorf("%w: node %s: %w", ErrRecv, s.node.Name, err)
	default:
		return ErrNoMessage
	}
}

func (s *ZMQSubscriber) Watch(wake func()) {
	s.mu.Lock()
	s.wake = wake
	s.mu.Unlock()
}

// Dropped returns the number of messages discarded at the high-water mark.
func (s *ZMQSubscriber) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *ZMQSubscriber) Close() error {
	var err error

	s.closeOnce.Do(func() {
		close(s.closed)
		s.connected.Store(false)

		s.mu.Lock()
		sock, cancel := s.sock, s.cancel
		s.mu.Unlock()

		if sock != nil {
			err = sock.Close()
		}

		if cancel != nil {
			cancel()
		}

		s.wg.Wait()
	})

	return err
}
