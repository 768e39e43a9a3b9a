// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dense

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix(t *testing.T) {
	m := NewWithFn(2, 3, func(i, j int) float32 { return float32(10*i + j) })
	assert.Equal(t, []float32{0, 1, 2, 10, 11, 12}, m.Data)
	assert.Equal(t, float32(12), m.At(1, 2))
	assert.Equal(t, 5, m.Index(1, 2))
	assert.Equal(t, 6, m.Size())
	assert.Equal(t, uintptr(24), m.Memory())
	assert.Equal(t, "2x3", m.ShapeString())

	c := m.Clone()
	c.Set(0, 0, 7)
	assert.Equal(t, float32(0), m.At(0, 0))
	assert.Equal(t, float32(7), c.At(0, 0))
	assert.True(t, c.SameShape(m))

	c.Fill(1)
	for _, v := range c.Data {
		assert.Equal(t, float32(1), v)
	}

	m64 := New[float64](4, 1)
	assert.Equal(t, uintptr(32), m64.Memory())
	assert.Contains(t, m.String(), "10, 11, 12")

	require.Panics(t, func() { New[float32](-1, 2) })
}

func TestFromData(t *testing.T) {
	m, err := FromData(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.At(1, 0))

	_, err = FromData(2, 2, []float64{1, 2, 3})
	require.Error(t, err)
	_, err = FromData(-2, 2, []float64{})
	require.Error(t, err)
}

func TestVector(t *testing.T) {
	v := VectorWithFn(4, func(i int) float32 { return float32(i) / 2 })
	assert.Equal(t, []float32{0, 0.5, 1, 1.5}, v)
	assert.Len(t, Vector[float64](3), 3)
	assert.Equal(t, 3.0, Checksum(v))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0.0, PercentDiff(0.001, 0.005))
	assert.InDelta(t, 10.0, PercentDiff(10.0, 11.0), 1e-6)

	c, err := Compare([]float32{1, 2, 3}, []float32{1, 2, 3}, 0.05)
	require.NoError(t, err)
	assert.Equal(t, Comparison{Elements: 3, Identical: true}, c)

	c, err = Compare([]float64{1, 100, 3}, []float64{1, 101, 3}, 0.05)
	require.NoError(t, err)
	assert.False(t, c.Identical)
	assert.Equal(t, 1, c.Failures)
	assert.InDelta(t, 1.0, c.MaxPercentDiff, 1e-6)

	c, err = Compare([]float64{math.NaN(), 1}, []float64{math.NaN(), math.NaN()}, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Failures)
	assert.True(t, math.IsInf(c.MaxPercentDiff, 1))
	assert.False(t, c.Identical)

	// Matching NaNs are neither failures nor differences.
	c, err = Compare([]float32{float32(math.NaN()), 2}, []float32{float32(math.NaN()), 2}, 0.05)
	require.NoError(t, err)
	assert.Equal(t, Comparison{Elements: 2, Identical: true}, c)

	_, err = Compare([]float32{1}, []float32{1, 2}, 0.05)
	require.Error(t, err)

	merged := Comparison{Elements: 2, Identical: true}.Merge(Comparison{Elements: 3, Failures: 1, MaxPercentDiff: 2})
	assert.Equal(t, Comparison{Elements: 5, Failures: 1, MaxPercentDiff: 2}, merged)
}
