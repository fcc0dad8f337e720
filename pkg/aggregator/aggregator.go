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

// Package aggregator turns per-node arrival timestamps into windowed
// transactions-per-second rates.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/mfreeman451/ictmon/pkg/registry"
	"github.com/sirupsen/logrus"
)

// minElapsed keeps the rate denominator positive.
const minElapsed = time.Millisecond

// EffectiveWindow clamps horizon to the process uptime so that the rate is
// never diluted by time that has not yet elapsed.
func EffectiveWindow(horizon, uptime time.Duration) time.Duration {
	elapsed := min(horizon, uptime)

	return max(elapsed, minElapsed)
}

// ComputeRate returns count arrivals per second over the effective window.
func ComputeRate(count int, horizon, uptime time.Duration) float64 {
	if count <= 0 {
		return 0
	}

	return float64(count) / EffectiveWindow(horizon, uptime).Seconds()
}

// Aggregator recomputes every node's short and long rates on a fixed tick.
type Aggregator struct {
	nodes   []*registry.Node
	windows models.WindowSpec
	started time.Time
	logger  logrus.FieldLogger
}

// New creates an Aggregator. started is the instant uptime is measured from.
func New(nodes []*registry.Node, windows models.WindowSpec, started time.Time, logger logrus.FieldLogger) *Aggregator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Aggregator{
		nodes:   nodes,
		windows: windows,
		started: started,
		logger:  logger,
	}
}

// Run aggregates on every RecomputeInterval tick until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.windows.RecomputeInterval)
	defer ticker.Stop()

	a.logger.WithFields(logrus.Fields{
		"interval": a.windows.RecomputeInterval,
		"short":    a.windows.ShortHorizon,
		"long":     a.windows.LongHorizon,
	}).Info("Starting aggregator")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			a.Aggregate(now)
		}
	}
}

// Aggregate performs one recompute pass over every node at instant now.
func (a *Aggregator) Aggregate(now time.Time) {
	uptime := now.Sub(a.started)

	for _, n := range a.nodes {
		if err := a.aggregateNode(n, now, uptime); err != nil {
			n.RecordPanic()
			a.logger.WithError(err).WithField("node", n.Name()).Error("Aggregation failed")
		}
	}
}

func (a *Aggregator) aggregateNode(n *registry.Node, now time.Time, uptime time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errAggregationPanic, r)
		}
	}()

	for _, w := range models.Windows {
		horizon := a.windows.Horizon(w)
		remaining, evicted := n.Events.Evict(w, now.Add(-horizon))
		rate := ComputeRate(remaining, horizon, uptime)

		n.History.Append(w, rate)

		if evicted > 0 {
			a.logger.WithFields(logrus.Fields{
				"node":    n.Name(),
				"window":  w.String(),
				"evicted": evicted,
			}).Trace("Evicted stale arrivals")
		}
	}

	return nil
}
