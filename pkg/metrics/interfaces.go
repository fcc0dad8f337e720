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

package metrics

import "github.com/mfreeman451/ictmon/pkg/models"

// Store holds a bounded series of rate samples.
type Store interface {
	Add(v float64)
	Points() []float64
	Last() (float64, bool)
	Len() int
	Cap() int
}

// HistoryReader is the read side of a node's History.
type HistoryReader interface {
	Latest(w models.Window) (float64, bool)
	Series() (short, long []float64)
}

// SnapshotSource yields the current per-node snapshots.
type SnapshotSource interface {
	Snapshots() []models.NodeSnapshot
}
