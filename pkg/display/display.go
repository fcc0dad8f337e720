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

// Package display renders the live per-node rate table to a terminal.
package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mfreeman451/ictmon/pkg/metrics"
	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/sirupsen/logrus"
)

const defaultRefresh = time.Second

// Display periodically redraws a table with one row per node.
type Display struct {
	out      io.Writer
	source   metrics.SnapshotSource
	refresh  time.Duration
	appName  string
	version  string
	logger   logrus.FieldLogger
	renderer *lipgloss.Renderer

	title     lipgloss.Style
	nameStyle lipgloss.Style
	rateStyle lipgloss.Style
	downStyle lipgloss.Style

	lastLines int
}

// New creates a Display writing to out.
func New(out io.Writer, source metrics.SnapshotSource, refresh time.Duration, appName, version string, logger logrus.FieldLogger) *Display {
	if refresh <= 0 {
		refresh = defaultRefresh
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := lipgloss.NewRenderer(out)

	return &Display{
		out:       out,
		source:    source,
		refresh:   refresh,
		appName:   appName,
		version:   version,
		logger:    logger,
		renderer:  r,
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		nameStyle: r.NewStyle().Foreground(lipgloss.Color("11")),
		rateStyle: r.NewStyle().Foreground(lipgloss.Color("10")),
		downStyle: r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Welcome prints the start-up banner.
func (d *Display) Welcome() {
	banner := fmt.Sprintf("Welcome to %s (Ict Node Monitor) %s.", d.appName, d.version)

	_, _ = fmt.Fprintf(d.out, "%s\n\n", d.title.Render(banner))
}

// FormatRow returns the plain cells of one table row.
func FormatRow(s models.NodeSnapshot) []string {
	return []string{
		s.Name,
		fmt.Sprintf("%.2f tps (1 min)", s.ShortTPS),
		fmt.Sprintf("%.2f tps (10 mins)", s.LongTPS),
	}
}

// Render returns the table for snaps.
func (d *Display) Render(snaps []models.NodeSnapshot) string {
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, FormatRow(s))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(d.renderer.NewStyle()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := d.renderer.NewStyle().Padding(0, 1)

			if row < 0 || row >= len(snaps) {
				return base
			}

			switch {
			case col == 0 && !snaps[row].Connected:
				return base.Inherit(d.downStyle)
			case col == 0:
				return base.Inherit(d.nameStyle)
			default:
				return base.Inherit(d.rateStyle)
			}
		})

	return t.Render()
}

// Draw renders the current snapshots, overwriting the previous frame.
func (d *Display) Draw() error {
	frame := d.Render(d.source.Snapshots())

	var b strings.Builder

	if d.lastLines > 0 {
		// move to the start of the previous frame and clear it
		fmt.Fprintf(&b, "\x1b[%dA\x1b[J", d.lastLines)
	}

	b.WriteString(frame)
	b.WriteByte('\n')

	d.lastLines = strings.Count(frame, "\n") + 1

	_, err := io.WriteString(d.out, b.String())

	return err
}

// Run redraws every refresh interval until ctx is cancelled.
func (d *Display) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.refresh)
	defer ticker.Stop()

	for {
		if err := d.Draw(); err != nil {
			d.logger.WithError(err).Warn("Failed to draw table")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
