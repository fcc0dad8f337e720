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

// Package responder answers metric queries over a request/reply socket.
package responder

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/mfreeman451/ictmon/pkg/chart"
	"github.com/mfreeman451/ictmon/pkg/metrics"
	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/mfreeman451/ictmon/pkg/transport"
	"github.com/sirupsen/logrus"
)

// Responder serves tps, tps10 and graph requests for one node's history.
type Responder struct {
	history  metrics.HistoryReader
	renderer chart.Renderer
	replier  transport.Replier
	logger   logrus.FieldLogger

	served atomic.Uint64
}

// New creates a Responder answering from history.
func New(history metrics.HistoryReader, renderer chart.Renderer, replier transport.Replier, logger logrus.FieldLogger) *Responder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Responder{
		history:  history,
		renderer: renderer,
		replier:  replier,
		logger:   logger,
	}
}

// Handle computes the reply for one request. It never fails: errors are
// reported in-band with the error verb.
func (r *Responder) Handle(req string) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithField("request", req).Errorf("Recovered panic handling request: %v", rec)
			reply = Reply(VerbError, fmt.Sprint(rec))
		}
	}()

	switch req {
	case VerbTPS:
		return Reply(VerbTPS, FormatRate(r.latest(models.WindowShort)))
	case VerbTPS10:
		return Reply(VerbTPS10, FormatRate(r.latest(models.WindowLong)))
	case VerbGraph:
		return r.graph()
	default:
		return Reply(VerbUnknown, req)
	}
}

func (r *Responder) latest(w models.Window) float64 {
	v, ok := r.history.Latest(w)
	if !ok {
		return 0
	}

	return v
}

func (r *Responder) graph() string {
	if r.renderer == nil {
		return Reply(VerbError, errNoRenderer.Error())
	}

	short, long := r.history.Series()

	id, err := r.renderer.Render(short, long)
	if err != nil {
		r.logger.WithError(err).Warn("Chart rendering failed")

		return Reply(VerbError, err.Error())
	}

	return Reply(VerbGraph, id)
}

// Serve answers requests until ctx is cancelled. Binding must already have
// happened through the replier's Listen.
func (r *Responder) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		if err := r.replier.Close(); err != nil {
			r.logger.WithError(err).Debug("Error closing replier")
		}
	})
	defer stop()

	if addr := r.replier.Addr(); addr != nil {
		r.logger.WithField("address", addr.String()).Info("Query responder listening")
	}

	for {
		req, err := r.replier.Recv()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
				return nil
			}

			if errors.Is(err, transport.ErrNotConnected) {
				return err
			}

			r.logger.WithError(err).Warn("Failed to receive request")

			continue
		}

		reply := r.Handle(req)

		if err := r.replier.Send(reply); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			r.logger.WithError(err).WithField("request", req).Warn("Failed to send reply")

			continue
		}

		r.served.Add(1)
		r.logger.WithFields(logrus.Fields{"request": req, "reply": reply}).Debug("Answered query")
	}
}

// Served returns the number of requests answered.
func (r *Responder) Served() uint64 {
	return r.served.Load()
}
