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

package transport

import "errors"

var (
	// ErrConnect is returned when a node's subscription cannot be established.
	ErrConnect = errors.New("failed to connect subscription")
	// ErrBind is returned when the query endpoint cannot be bound.
	ErrBind = errors.New("failed to bind query endpoint")
	// ErrNoMessage is returned by a non-blocking receive with nothing queued.
	ErrNoMessage = errors.New("no message available")
	// ErrRecv wraps a receive failure on an established socket.
	ErrRecv = errors.New("receive failed")
	// ErrClosed is returned by operations on a closed socket.
	ErrClosed = errors.New("socket closed")
	// ErrNotConnected is returned before Connect or Listen succeeded.
	ErrNotConnected = errors.New("socket not connected")
)
