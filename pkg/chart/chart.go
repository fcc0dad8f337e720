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

// Package chart renders rate history as an image.
package chart

//go:generate mockgen -destination=mock_chart.go -package=chart github.com/mfreeman451/ictmon/pkg/chart Renderer

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultFile is the name of the rendered chart.
const DefaultFile = "graph.png"

var (
	// ErrNoData is returned when both series are empty.
	ErrNoData = errors.New("no data to plot")

	shortColor = color.RGBA{R: 0xDD, G: 0x33, B: 0x55, A: 0xFF}
	longColor  = color.RGBA{R: 0x35, G: 0xC7, B: 0x88, A: 0xFF}
)

// Renderer draws the short and long rate series and returns an identifier
// for the produced artifact.
type Renderer interface {
	Render(short, long []float64) (string, error)
}

// PNGRenderer writes a line chart to Dir/graph.png.
type PNGRenderer struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
}

var _ Renderer = (*PNGRenderer)(nil)

// NewPNGRenderer creates a PNGRenderer writing into dir. An empty dir means
// the working directory.
func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{
		Dir:    dir,
		Width:  8 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// Render plots both series with the sample index on the x axis and returns
// the path of the written file.
func (r *PNGRenderer) Render(short, long []float64) (string, error) {
	if len(short) == 0 && len(long) == 0 {
		return "", ErrNoData
	}

	p := plot.New()
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "TPS"
	p.Legend.Top = true

	if err := addSeries(p, "1 min", short, shortColor); err != nil {
		return "", err
	}

	if err := addSeries(p, "10 mins", long, longColor); err != nil {
		return "", err
	}

	if r.Dir != "" {
		if err := os.MkdirAll(r.Dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	path := filepath.Join(r.Dir, DefaultFile)

	if err := p.Save(r.Width, r.Height, path); err != nil {
		return "", fmt.Errorf("failed to save chart: %w", err)
	}

	return path, nil
}

func addSeries(p *plot.Plot, label string, series []float64, c color.Color) error {
	if len(series) == 0 {
		return nil
	}

	pts := make(plotter.XYs, len(series))
	for i, v := range series {
		pts[i].X = float64(i)
		pts[i].Y = v
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build %s series: %w", label, err)
	}

	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(1.5)

	p.Add(line)
	p.Legend.Add(label, line)

	return nil
}
