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

package responder

import (
	"fmt"
	"strings"
)

// Separator joins reply fields.
const Separator = ";"

// Request verbs.
const (
	VerbTPS     = "tps"
	VerbTPS10   = "tps10"
	VerbGraph   = "graph"
	VerbUnknown = "unknown"
	VerbError   = "error"
)

// FormatRate renders a rate with two decimals.
func FormatRate(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Reply joins a verb and its value.
func Reply(verb, value string) string {
	return verb + Separator + value
}

// ParseReply splits a reply into its verb and value.
func ParseReply(reply string) (verb, value string) {
	verb, value, _ = strings.Cut(reply, Separator)

	return verb, value
}
