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

import "errors"

var (
	errNoNodes       = errors.New("no nodes configured")
	errDuplicateNode = errors.New("duplicate node name")
	errInvalidNode   = errors.New("invalid node")
	errNodeLine      = errors.New("malformed node list line")
	// ErrNodeNotFound is returned when a node name is not registered.
	ErrNodeNotFound = errors.New("node not found")
)
