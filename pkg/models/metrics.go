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

// Package models pkg/models/metrics.go
package models

import "time"

// Window identifies one of the two averaging horizons.
type Window int

const (
	WindowShort Window = iota
	WindowLong
)

// Windows lists every window in display order.
var Windows = []Window{WindowShort, WindowLong}

func (w Window) String() string {
	switch w {
	case WindowShort:
		return "short"
	case WindowLong:
		return "long"
	default:
		return "unknown"
	}
}

// Valid reports whether w names a known window.
func (w Window) Valid() bool {
	return w == WindowShort || w == WindowLong
}

// WindowSpec holds the process-wide horizons and tick intervals.
type WindowSpec struct {
	ShortHorizon      time.Duration `mapstructure:"short_horizon" json:"short_horizon"`
	LongHorizon       time.Duration `mapstructure:"long_horizon" json:"long_horizon"`
	RecomputeInterval time.Duration `mapstructure:"recompute_interval" json:"recompute_interval"`
	PollInterval      time.Duration `mapstructure:"poll_interval" json:"poll_interval"`
	PollTimeout       time.Duration `mapstructure:"poll_timeout" json:"poll_timeout"`
	InitialDelay      time.Duration `mapstructure:"initial_delay" json:"initial_delay"`
	HistoryCapacity   int           `mapstructure:"history_capacity" json:"history_capacity"`
}

// Horizon returns the trailing span averaged by w.
func (s WindowSpec) Horizon(w Window) time.Duration {
	if w == WindowLong {
		return s.LongHorizon
	}

	return s.ShortHorizon
}

// NodeSnapshot is a point-in-time view of one node's latest rates.
type NodeSnapshot struct {
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	Port              int       `json:"port"`
	Connected         bool      `json:"connected"`
	ShortTPS          float64   `json:"tps_short"`
	LongTPS           float64   `json:"tps_long"`
	Samples           int       `json:"samples"`
	ArrivalsTotal     uint64    `json:"arrivals_total"`
	AggregationPanics uint64    `json:"aggregation_panics"`
	Timestamp         time.Time `json:"timestamp"`
}

// NodeHistory carries both retained rate series of one node, oldest first.
type NodeHistory struct {
	Name  string    `json:"name"`
	Short []float64 `json:"short"`
	Long  []float64 `json:"long"`
}

// SystemStatus summarizes the running monitor.
type SystemStatus struct {
	TotalNodes     int       `json:"total_nodes"`
	ConnectedNodes int       `json:"connected_nodes"`
	StartedAt      time.Time `json:"started_at"`
	Uptime         string    `json:"uptime"`
	ShortHorizon   string    `json:"short_horizon"`
	LongHorizon    string    `json:"long_horizon"`
}
