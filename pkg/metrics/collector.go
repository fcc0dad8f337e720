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

package metrics

import (
	"time"

	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ictmon"

var (
	tpsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "tps"),
		"Latest transactions-per-second rate by node and averaging window.",
		[]string{"node", "window"}, nil,
	)
	arrivalsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "arrivals_total"),
		"Transaction notifications received from a node.",
		[]string{"node"}, nil,
	)
	panicsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "aggregation_panics_total"),
		"Recovered panics while computing a node's rates.",
		[]string{"node"}, nil,
	)
	connectedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "node_connected"),
		"Whether the node's subscription is currently healthy (1) or not (0).",
		[]string{"node"}, nil,
	)
	uptimeDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "uptime_seconds"),
		"Seconds since the monitor started.",
		nil, nil,
	)
)

// Collector exports node snapshots as Prometheus metrics. Values are read
// at scrape time, so nothing is duplicated outside the registry.
type Collector struct {
	source  SnapshotSource
	started time.Time
	now     func() time.Time
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector reading from source.
func NewCollector(source SnapshotSource, started time.Time) *Collector {
	return &Collector{
		source:  source,
		started: started,
		now:     time.Now,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- tpsDesc
	ch <- arrivalsDesc
	ch <- panicsDesc
	ch <- connectedDesc
	ch <- uptimeDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.source.Snapshots() {
		ch <- prometheus.MustNewConstMetric(tpsDesc, prometheus.GaugeValue, s.ShortTPS, s.Name, models.WindowShort.String())
		ch <- prometheus.MustNewConstMetric(tpsDesc, prometheus.GaugeValue, s.LongTPS, s.Name, models.WindowLong.String())
		ch <- prometheus.MustNewConstMetric(arrivalsDesc, prometheus.CounterValue, float64(s.ArrivalsTotal), s.Name)
		ch <- prometheus.MustNewConstMetric(panicsDesc, prometheus.CounterValue, float64(s.AggregationPanics), s.Name)

		connected := 0.0
		if s.Connected {
			connected = 1
		}

		ch <- prometheus.MustNewConstMetric(connectedDesc, prometheus.GaugeValue, connected, s.Name)
	}

	ch <- prometheus.MustNewConstMetric(uptimeDesc, prometheus.GaugeValue, c.now().Sub(c.started).Seconds())
}
