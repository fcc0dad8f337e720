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

package registry

import (
	"sync/atomic"
	"time"

	"github.com/mfreeman451/ictmon/pkg/metrics"
	"github.com/mfreeman451/ictmon/pkg/models"
)

// Node is one monitored endpoint together with the state shared between the
// poller (writer of Events), the aggregator (writer of History) and readers.
type Node struct {
	Config  models.NodeConfig
	Events  *EventStore
	History *metrics.History

	connected atomic.Bool
	panics    atomic.Uint64
}

func newNode(cfg models.NodeConfig, historyCapacity int) *Node {
	return &Node{
		Config:  cfg,
		Events:  NewEventStore(),
		History: metrics.NewHistory(historyCapacity),
	}
}

// Name returns the node's display name.
func (n *Node) Name() string {
	return n.Config.Name
}

// SetConnected records whether the node's subscription is healthy.
func (n *Node) SetConnected(ok bool) {
	n.connected.Store(ok)
}

// Connected reports the last recorded subscription state.
func (n *Node) Connected() bool {
	return n.connected.Load()
}

// RecordPanic counts a recovered aggregation panic.
func (n *Node) RecordPanic() {
	n.panics.Add(1)
}

// Panics returns the number of recovered aggregation panics.
func (n *Node) Panics() uint64 {
	return n.panics.Load()
}

// Rate returns the latest rate of window w, or 0 when nothing has been
// computed yet.
func (n *Node) Rate(w models.Window) float64 {
	v, _ := n.History.Latest(w)

	return v
}

// Snapshot returns a point-in-time view of the node.
func (n *Node) Snapshot(now time.Time) models.NodeSnapshot {
	return models.NodeSnapshot{
		Name:              n.Config.Name,
		Address:           n.Config.Address,
		Port:              n.Config.Port,
		Connected:         n.Connected(),
		ShortTPS:          n.Rate(models.WindowShort),
		LongTPS:           n.Rate(models.WindowLong),
		Samples:           n.History.Len(models.WindowShort),
		ArrivalsTotal:     n.Events.Total(),
		AggregationPanics: n.Panics(),
		Timestamp:         now,
	}
}
