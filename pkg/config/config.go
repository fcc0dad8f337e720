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

// Package config pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/mfreeman451/ictmon/pkg/registry"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ICTMON_TOPIC.
const EnvPrefix = "ICTMON"

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("node.name", DefaultName)
	v.SetDefault("node.address", DefaultAddress)
	v.SetDefault("node.port", DefaultSubPort)
	v.SetDefault("use_node_file", false)
	v.SetDefault("node_file", DefaultNodeFile)
	v.SetDefault("topic", DefaultTopic)

	v.SetDefault("windows.short_horizon", DefaultShortHorizon)
	v.SetDefault("windows.long_horizon", DefaultLongHorizon)
	v.SetDefault("windows.recompute_interval", DefaultRecomputeInterval)
	v.SetDefault("windows.poll_interval", DefaultPollInterval)
	v.SetDefault("windows.poll_timeout", DefaultPollTimeout)
	v.SetDefault("windows.initial_delay", DefaultInitialDelay)
	v.SetDefault("windows.history_capacity", DefaultHistoryCapacity)

	v.SetDefault("responder.enabled", false)
	v.SetDefault("responder.bind", DefaultBindHost)
	v.SetDefault("responder.port", DefaultAPIPort)

	v.SetDefault("display.enabled", true)
	v.SetDefault("display.refresh_interval", DefaultRefreshInterval)

	v.SetDefault("http.listen_addr", "")
	v.SetDefault("http.max_conns", DefaultMaxConns)
	v.SetDefault("http.stream_interval", DefaultRefreshInterval)

	v.SetDefault("health.listen_addr", "")

	v.SetDefault("transport.high_water_mark", DefaultHighWaterMark)
	v.SetDefault("transport.receive_batch", DefaultReceiveBatch)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)

	v.SetDefault("chart_dir", "")
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)
}

// NewViper returns a viper instance with defaults and environment overrides
// installed.
func NewViper() *viper.Viper {
	v := viper.New()

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file at path into v and decodes the result.
// The returned Config is not yet validated.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// LoadAndValidate loads the configuration, resolves the node list and
// validates the result.
func LoadAndValidate(v *viper.Viper, path string) (*Config, error) {
	cfg, err := Load(v, path)
	if err != nil {
		return nil, err
	}

	if err := cfg.ResolveNodes(); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	if v, ok := cfg.(Validator); ok {
		return v.Validate()
	}

	return nil
}

// ResolveNodes fills Nodes from the node file or the inline node unless a
// config file already listed them.
func (c *Config) ResolveNodes() error {
	if len(c.Nodes) > 0 {
		return nil
	}

	if c.UseNodeFile {
		nodes, err := registry.LoadNodeFile(c.NodeFile)
		if err != nil {
			return err
		}

		c.Nodes = nodes

		return nil
	}

	c.Nodes = registry.FromSingle(c.Node.Name, c.Node.Address, c.Node.Port)

	return nil
}

// Validate implements Validator.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Nodes) == 0 {
		errs = append(errs, errNoNodes)
	}

	seen := make(map[string]struct{}, len(c.Nodes))

	for _, n := range c.Nodes {
		if _, dup := seen[n.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", errDuplicateNode, n.Name))
		}

		seen[n.Name] = struct{}{}

		if err := validateNode(n); err != nil {
			errs = append(errs, err)
		}
	}

	errs = append(errs, c.validateWindows()...)

	if c.Responder.Enabled && !validPort(c.Responder.Port) {
		errs = append(errs, fmt.Errorf("%w: responder port %d", errInvalidPort, c.Responder.Port))
	}

	if c.Display.Enabled && c.Display.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: display refresh interval", errNonPositive))
	}

	if c.Transport.HighWaterMark < 1 {
		errs = append(errs, fmt.Errorf("%w: high water mark", errNonPositive))
	}

	if c.Transport.ReceiveBatch < 1 {
		errs = append(errs, fmt.Errorf("%w: receive batch", errNonPositive))
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", errInvalidLogLevel, err))
	}

	return errors.Join(errs...)
}

func (c *Config) validateWindows() []error {
	var errs []error

	w := c.Windows

	for name, d := range map[string]int64{
		"short horizon":      int64(w.ShortHorizon),
		"long horizon":       int64(w.LongHorizon),
		"recompute interval": int64(w.RecomputeInterval),
		"poll interval":      int64(w.PollInterval),
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s", errNonPositive, name))
		}
	}

	if w.ShortHorizon > w.LongHorizon {
		errs = append(errs, errWindowOrder)
	}

	if w.PollTimeout < 0 || w.InitialDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: poll timeout and initial delay", errNegative))
	}

	if w.HistoryCapacity < 1 {
		errs = append(errs, fmt.Errorf("%w: history capacity", errNonPositive))
	}

	return errs
}

func validateNode(n models.NodeConfig) error {
	switch {
	case n.Name == "":
		return fmt.Errorf("%w: empty name", errInvalidNode)
	case n.Address == "":
		return fmt.Errorf("%w: %s has no address", errInvalidNode, n.Name)
	case !validPort(n.Port):
		return fmt.Errorf("%w: %s port %d", errInvalidPort, n.Name, n.Port)
	}

	return nil
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}
