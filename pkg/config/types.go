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

package config

import (
	"time"

	"github.com/mfreeman451/ictmon/pkg/models"
)

// Validator interface for configurations that need validation.
type Validator interface {
	Validate() error
}

// Config is the complete monitor configuration.
type Config struct {
	// Node is the single inline node used when no list is given.
	Node models.NodeConfig `mapstructure:"node" json:"node"`
	// UseNodeFile selects NodeFile over the inline node.
	UseNodeFile bool   `mapstructure:"use_node_file" json:"use_node_file"`
	NodeFile    string `mapstructure:"node_file" json:"node_file"`
	// Nodes, when set in a config file, takes precedence over both.
	Nodes []models.NodeConfig `mapstructure:"nodes" json:"nodes,omitempty"`

	Topic           string            `mapstructure:"topic" json:"topic"`
	Windows         models.WindowSpec `mapstructure:"windows" json:"windows"`
	Responder       ResponderConfig   `mapstructure:"responder" json:"responder"`
	Display         DisplayConfig     `mapstructure:"display" json:"display"`
	HTTP            HTTPConfig        `mapstructure:"http" json:"http"`
	Health          HealthConfig      `mapstructure:"health" json:"health"`
	Transport       TransportConfig   `mapstructure:"transport" json:"transport"`
	Logging         LoggingConfig     `mapstructure:"logging" json:"logging"`
	ChartDir        string            `mapstructure:"chart_dir" json:"chart_dir"`
	ShutdownTimeout time.Duration     `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

// ResponderConfig controls the query socket.
type ResponderConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Bind    string `mapstructure:"bind" json:"bind"`
	Port    int    `mapstructure:"port" json:"port"`
}

// DisplayConfig controls the terminal table.
type DisplayConfig struct {
	Enabled         bool          `mapstructure:"enabled" json:"enabled"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" json:"refresh_interval"`
}

// HTTPConfig controls the optional HTTP API. An empty ListenAddr disables it.
type HTTPConfig struct {
	ListenAddr     string        `mapstructure:"listen_addr" json:"listen_addr"`
	MaxConns       int           `mapstructure:"max_conns" json:"max_conns"`
	StreamInterval time.Duration `mapstructure:"stream_interval" json:"stream_interval"`
}

// HealthConfig controls the gRPC health server. An empty ListenAddr disables it.
type HealthConfig struct {
	ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
}

// TransportConfig tunes the subscriptions.
type TransportConfig struct {
	HighWaterMark int `mapstructure:"high_water_mark" json:"high_water_mark"`
	ReceiveBatch  int `mapstructure:"receive_batch" json:"receive_batch"`
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level"`
	JSON  bool   `mapstructure:"json" json:"json"`
}
