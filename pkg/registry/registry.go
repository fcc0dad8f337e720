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

// Package registry owns the set of monitored nodes and their per-node state.
package registry

import (
	"fmt"
	"time"

	"github.com/mfreeman451/ictmon/pkg/models"
)

// Registry is the fixed, ordered set of nodes built once at startup. Its
// membership never changes; per-node state is guarded by each Node.
type Registry struct {
	nodes  []*Node
	byName map[string]*Node
}

// New creates a Registry with a fresh EventStore and History per node.
func New(cfgs []models.NodeConfig, historyCapacity int) (*Registry, error) {
	if len(cfgs) == 0 {
		return nil, errNoNodes
	}

	r := &Registry{
		nodes:  make([]*Node, 0, len(cfgs)),
		byName: make(map[string]*Node, len(cfgs)),
	}

	for _, cfg := range cfgs {
		if err := validateNode(cfg); err != nil {
			return nil, err
		}

		if _, exists := r.byName[cfg.Name]; exists {
			return nil, fmt.Errorf("%w: %s", errDuplicateNode, cfg.Name)
		}

		n := newNode(cfg, historyCapacity)
		r.nodes = append(r.nodes, n)
		r.byName[cfg.Name] = n
	}

	return r, nil
}

func validateNode(cfg models.NodeConfig) error {
	switch {
	case cfg.Name == "":
		return fmt.Errorf("%w: empty name", errInvalidNode)
	case cfg.Address == "":
		return fmt.Errorf("%w: %s has no address", errInvalidNode, cfg.Name)
	case cfg.Port < 1 || cfg.Port > 65535:
		return fmt.Errorf("%w: %s has port %d out of range", errInvalidNode, cfg.Name, cfg.Port)
	}

	return nil
}

// First returns the first registered node.
func (r *Registry) First() *Node {
	return r.nodes[0]
}

// Lookup returns the node registered under name.
func (r *Registry) Lookup(name string) (*Node, error) {
	n, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}

	return n, nil
}

// Nodes returns the nodes in registration order.
func (r *Registry) Nodes() []*Node {
	out := make([]*Node, len(r.nodes))
	copy(out, r.nodes)

	return out
}

// Len returns the number of nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Snapshots returns a snapshot of every node in registration order.
func (r *Registry) Snapshots() []models.NodeSnapshot {
	now := time.Now()
	out := make([]models.NodeSnapshot, 0, len(r.nodes))

	for _, n := range r.nodes {
		out = append(out, n.Snapshot(now))
	}

	return out
}

// History returns both retained rate series of the named node.
func (r *Registry) History(name string) (models.NodeHistory, error) {
	n, err := r.Lookup(name)
	if err != nil {
		return models.NodeHistory{}, err
	}

	short, long := n.History.Series()

	return models.NodeHistory{Name: name, Short: short, Long: long}, nil
}
