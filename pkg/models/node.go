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

package models

import (
	"fmt"
	"net"
	"strconv"
)

// NodeConfig describes one monitored ledger node.
type NodeConfig struct {
	Name    string `mapstructure:"name" json:"name"`
	Address string `mapstructure:"address" json:"address"`
	Port    int    `mapstructure:"port" json:"port"`
}

// Endpoint returns the ZeroMQ endpoint of the node's publisher.
func (n NodeConfig) Endpoint() string {
	return "tcp://" + net.JoinHostPort(n.Address, strconv.Itoa(n.Port))
}

func (n NodeConfig) String() string {
	return fmt.Sprintf("%s (%s:%d)", n.Name, n.Address, n.Port)
}
