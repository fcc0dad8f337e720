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

package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGRenderer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	r := NewPNGRenderer(dir)

	path, err := r.Render([]float64{1, 2, 3.5, 2}, []float64{0.5, 0.75, 1})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestPNGRendererSingleSeries(t *testing.T) {
	r := NewPNGRenderer(t.TempDir())

	_, err := r.Render(nil, []float64{1})
	require.NoError(t, err)
}

func TestPNGRendererNoData(t *testing.T) {
	r := NewPNGRenderer(t.TempDir())

	_, err := r.Render(nil, []float64{})
	require.ErrorIs(t, err, ErrNoData)
}
