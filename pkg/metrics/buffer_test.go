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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer(t *testing.T) {
	t.Run("empty buffer", func(t *testing.T) {
		b := NewRingBuffer(3)

		_, ok := b.Last()
		assert.False(t, ok)
		assert.Empty(t, b.Points())
		assert.Equal(t, 3, b.Cap())
	})

	t.Run("keeps insertion order below capacity", func(t *testing.T) {
		b := NewRingBuffer(3)
		b.Add(1)
		b.Add(2)

		assert.Equal(t, []float64{1, 2}, b.Points())

		last, ok := b.Last()
		require.True(t, ok)
		assert.InDelta(t, 2.0, last, 1e-9)
	})

	t.Run("evicts oldest when full", func(t *testing.T) {
		b := NewRingBuffer(3)
		for i := 1; i <= 5; i++ {
			b.Add(float64(i))
		}

		assert.Equal(t, 3, b.Len())
		assert.Equal(t, []float64{3, 4, 5}, b.Points())

		last, ok := b.Last()
		require.True(t, ok)
		assert.InDelta(t, 5.0, last, 1e-9)
	})

	t.Run("points are a copy", func(t *testing.T) {
		b := NewRingBuffer(2)
		b.Add(7)

		pts := b.Points()
		pts[0] = 99

		assert.Equal(t, []float64{7}, b.Points())
	})

	t.Run("non-positive capacity is raised to one", func(t *testing.T) {
		b := NewRingBuffer(0)
		b.Add(1)
		b.Add(2)

		assert.Equal(t, []float64{2}, b.Points())
	})
}

func TestHistory(t *testing.T) {
	h := NewHistory(3600)

	_, ok := h.Latest(0)
	assert.False(t, ok)

	h.Append(0, 1.5)
	h.Append(1, 0.25)
	h.Append(0, 3)

	short, long := h.Series()
	assert.Equal(t, []float64{1.5, 3}, short)
	assert.Equal(t, []float64{0.25}, long)

	v, ok := h.Latest(0)
	require.True(t, ok)
	assert.InDelta(t, 3.0, v, 1e-9)
	assert.Equal(t, 2, h.Len(0))
	assert.Equal(t, 1, h.Len(1))

	// unknown window is ignored
	h.Append(7, 42)
	assert.Nil(t, h.Points(7))
	assert.Equal(t, 0, h.Len(7))
}

func TestHistoryCapacity(t *testing.T) {
	const capacity = 3600

	h := NewHistory(capacity)
	for i := 0; i < capacity+10; i++ {
		h.Append(0, float64(i))
	}

	pts := h.Points(0)
	require.Len(t, pts, capacity)
	assert.InDelta(t, 10.0, pts[0], 1e-9)
	assert.InDelta(t, float64(capacity+9), pts[len(pts)-1], 1e-9)
}

func BenchmarkRingBuffer(b *testing.B) {
	buffer := NewBuffer(3600)

	b.Run("Add", func(b *testing.B) {
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			buffer.Add(float64(i))
		}
	})

	b.Run("Points", func(b *testing.B) {
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = buffer.Points()
		}
	})
}
