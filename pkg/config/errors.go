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

import "errors"

var (
	errNoNodes         = errors.New("at least one node is required")
	errDuplicateNode   = errors.New("duplicate node name")
	errInvalidNode     = errors.New("invalid node")
	errInvalidPort     = errors.New("port must be in 1..65535")
	errNonPositive     = errors.New("value must be positive")
	errNegative        = errors.New("value must not be negative")
	errWindowOrder     = errors.New("short horizon must not exceed long horizon")
	errInvalidLogLevel = errors.New("invalid log level")
)
