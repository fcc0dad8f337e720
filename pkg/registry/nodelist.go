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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mfreeman451/ictmon/pkg/models"
)

// ParseNodeList reads one name:address:port entry per line. Blank lines and
// lines starting with '#' are skipped.
func ParseNodeList(r io.Reader) ([]models.NodeConfig, error) {
	var nodes []models.NodeConfig

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		node, err := parseNodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d %q: %w", lineNo, line, err)
		}

		nodes = append(nodes, node)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read node list: %w", err)
	}

	if len(nodes) == 0 {
		return nil, errNoNodes
	}

	return nodes, nil
}

func parseNodeLine(line string) (models.NodeConfig, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 3 {
		return models.NodeConfig{}, fmt.Errorf("%w: want name:address:port", errNodeLine)
	}

	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	port, err := strconv.Atoi(parts[2])
	if err != nil || port < 1 || port > 65535 {
		return models.NodeConfig{}, fmt.Errorf("%w: invalid port %q", errNodeLine, parts[2])
	}

	if parts[0] == "" || parts[1] == "" {
		return models.NodeConfig{}, fmt.Errorf("%w: empty name or address", errNodeLine)
	}

	return models.NodeConfig{Name: parts[0], Address: parts[1], Port: port}, nil
}

// LoadNodeFile parses the node list at path.
func LoadNodeFile(path string) ([]models.NodeConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open node list %s: %w", path, err)
	}
	defer f.Close()

	nodes, err := ParseNodeList(f)
	if err != nil {
		return nil, fmt.Errorf("node list %s: %w", path, err)
	}

	return nodes, nil
}

// FromSingle returns the one-node list described by inline values.
func FromSingle(name, address string, port int) []models.NodeConfig {
	return []models.NodeConfig{{Name: name, Address: address, Port: port}}
}
