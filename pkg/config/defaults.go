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

import "time"

const (
	AppName    = "ictmon"
	AppVersion = "v0.2.0-alpha"

	DefaultName            = "ict-0"
	DefaultAddress         = "localhost"
	DefaultSubPort         = 5561
	DefaultAPIPort         = 5562
	DefaultTopic           = "in"
	DefaultNodeFile        = "icts.txt"
	DefaultBindHost        = "*"
	DefaultHistoryCapacity = 3600
	DefaultHighWaterMark   = 1000
	DefaultReceiveBatch    = 1
	DefaultMaxConns        = 64

	DefaultShortHorizon      = 60 * time.Second
	DefaultLongHorizon       = 600 * time.Second
	DefaultRecomputeInterval = time.Second
	DefaultPollInterval      = 10 * time.Millisecond
	DefaultPollTimeout       = 10 * time.Millisecond
	DefaultInitialDelay      = time.Second
	DefaultRefreshInterval   = time.Second
	DefaultShutdownTimeout   = 10 * time.Second
)
