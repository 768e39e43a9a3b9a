// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"fmt"
	"testing"

	"github.com/gomlx/polybench/pkg/core/dense"
	"github.com/gomlx/polybench/pkg/core/partition"
	"github.com/gomlx/polybench/pkg/launch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allPolicies = []partition.Policy{partition.Balanced, partition.LastAbsorbs}

// forAllLaunchers calls fn with launchers of 1 to maxThreads threads, for every partition policy.
func forAllLaunchers(t *testing.T, maxThreads int, fn func(t *testing.T, l *launch.Launcher)) {
	for _, policy := range allPolicies {
		for numThreads := 1; numThreads <= maxThreads; numThreads++ {
			t.Run(fmt.Sprintf("%s/threads=%d", policy, numThreads), func(t *testing.T) {
				l, err := launch.NewWithConfig(launch.Config{NumThreads: numThreads, Policy: policy, MaxParallelism: -1})
				require.NoError(t, err)
				fn(t, l)
			})
		}
	}
}

func mustMatrix[T Float](t *testing.T, rows, cols int, data ...T) *dense.Matrix[T] {
	m, err := dense.FromData(rows, cols, data)
	require.NoError(t, err)
	return m
}

func TestMatMul(t *testing.T) {
	forAllLaunchers(t, 4, func(t *testing.T, l *launch.Launcher) {
		a := mustMatrix[float32](t, 2, 2, 1, 2, 3, 4)
		b := mustMatrix[float32](t, 2, 2, 5, 6, 7, 8)
		out := mustMatrix[float32](t, 2, 2, -1, -1, -1, -1) // Must be reset.
		k, err := NewMatMul("test.matmul", out, a, b, 1)
		require.NoError(t, err)
		require.NoError(t, l.Run(k))
		assert.Equal(t, []float32{19, 22, 43, 50}, out.Data)

		// Alpha and accumulate.
		k.Alpha = 2
		k.Accumulate = true
		require.NoError(t, l.Run(k))
		assert.Equal(t, []float32{19 + 38, 22 + 44, 43 + 86, 50 + 100}, out.Data)
	})
}

func TestMatMul_NonSquare(t *testing.T) {
	const ni, nk, nj = 5, 7, 3
	a := dense.NewWithFn(ni, nk, func(i, k int) float64 { return float64(i*k+1) / 7 })
	b := dense.NewWithFn(nk, nj, func(k, j int) float64 { return float64(k*(j+1)) / 3 })
	want := dense.New[float64](ni, nj)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			var acc float64
			for k := 0; k < nk; k++ {
				acc += float64(float64(1.5*a.At(i, k)) * b.At(k, j))
			}
			want.Set(i, j, acc)
		}
	}
	forAllLaunchers(t, 9, func(t *testing.T, l *launch.Launcher) {
		out := dense.New[float64](ni, nj)
		k, err := NewMatMul("test.matmul", out, a, b, 1.5)
		require.NoError(t, err)
		require.NoError(t, l.Run(k))
		assert.Equal(t, want.Data, out.Data)
	})
}

func TestMatMul_Shapes(t *testing.T) {
	_, err := NewMatMul("bad", dense.New[float32](2, 2), dense.New[float32](2, 3), dense.New[float32](2, 2), 1)
	require.ErrorContains(t, err, "contracting")
	_, err = NewMatMul("bad", dense.New[float32](2, 3), dense.New[float32](2, 2), dense.New[float32](2, 2), 1)
	require.ErrorContains(t, err, "output")
	_, err = NewScaledMatMul("bad", dense.New[float32](3, 2), dense.New[float32](2, 2), dense.New[float32](2, 2), 1)
	require.Error(t, err)
}

func TestScaledMatMul(t *testing.T) {
	forAllLaunchers(t, 4, func(t *testing.T, l *launch.Launcher) {
		tmp := mustMatrix[float32](t, 2, 2, 1, 2, 3, 4)
		c := mustMatrix[float32](t, 2, 2, 5, 6, 7, 8)
		d := mustMatrix[float32](t, 2, 2, 1, 1, 1, 2)
		k, err := NewScaledMatMul("test.scaled", d, tmp, c, 2)
		require.NoError(t, err)
		require.NoError(t, l.Run(k))
		assert.Equal(t, []float32{21, 24, 45, 54}, d.Data)
	})
}

func TestBiCG(t *testing.T) {
	forAllLaunchers(t, 4, func(t *testing.T, l *launch.Launcher) {
		// A is 2x3.
		a := mustMatrix[float64](t, 2, 3, 1, 2, 3, 4, 5, 6)
		r := []float64{1, 10}
		p := []float64{1, 0, -1}
		s := make([]float64, 3)
		q := make([]float64, 2)
		ks, err := NewBiCGS(a, r, s)
		require.NoError(t, err)
		kq, err := NewBiCGQ(a, p, q)
		require.NoError(t, err)
		require.NoError(t, l.RunConcurrently(ks, kq))
		assert.Equal(t, []float64{41, 52, 63}, s)
		assert.Equal(t, []float64{-2, -2}, q)
	})

	a := dense.New[float32](2, 3)
	_, err := NewBiCGS(a, make([]float32, 3), make([]float32, 3))
	require.Error(t, err)
	_, err = NewBiCGQ(a, make([]float32, 3), make([]float32, 3))
	require.Error(t, err)
}

func newTestFields(nx, ny, tmax int) *FDTDFields[float32] {
	return &FDTDFields[float32]{
		Ex:   dense.NewWithFn(nx, ny, func(i, j int) float32 { return float32(i*(j+1)) / float32(nx) }),
		Ey:   dense.NewWithFn(nx, ny, func(i, j int) float32 { return float32(i*(j+2)) / float32(ny) }),
		Hz:   dense.NewWithFn(nx, ny, func(i, j int) float32 { return float32(i*(j+3)) / float32(nx) }),
		Fict: dense.VectorWithFn(tmax, func(t int) float32 { return float32(t) + 0.25 }),
	}
}

func TestFDTD_BoundaryForcing(t *testing.T) {
	forAllLaunchers(t, 5, func(t *testing.T, l *launch.Launcher) {
		fields := newTestFields(4, 6, 3)
		ey, err := NewFDTDEy(fields)
		require.NoError(t, err)
		require.NoError(t, ey.SetStep(2))
		assert.Equal(t, 2, ey.Step())
		require.NoError(t, l.Run(ey))
		for j := 0; j < 6; j++ {
			assert.Equal(t, float32(2.25), fields.Ey.At(0, j), "ey[0,%d]", j)
		}
		// Interior: ey[i,j] -= 0.5*(hz[i,j]-hz[i-1,j]) = i*(j+2)/6 - 0.5*(j+3)/4.
		for i := 1; i < 4; i++ {
			for j := 0; j < 6; j++ {
				want := float32(i*(j+2))/6 - float32(0.5*(float32(i*(j+3))/4-float32((i-1)*(j+3))/4))
				assert.InDelta(t, want, fields.Ey.At(i, j), 1e-6, "ey[%d,%d]", i, j)
			}
		}
	})
}

func TestFDTD_ExSkipsFirstColumn(t *testing.T) {
	forAllLaunchers(t, 3, func(t *testing.T, l *launch.Launcher) {
		fields := newTestFields(3, 4, 1)
		before := fields.Ex.Clone()
		ex, err := NewFDTDEx(fields)
		require.NoError(t, err)
		require.NoError(t, l.Run(ex))
		for i := 0; i < 3; i++ {
			assert.Equal(t, before.At(i, 0), fields.Ex.At(i, 0))
			for j := 1; j < 4; j++ {
				hz := fields.Hz
				want := before.At(i, j) - float32(0.5*(hz.At(i, j)-hz.At(i, j-1)))
				assert.InDelta(t, want, fields.Ex.At(i, j), 1e-6)
			}
		}
	})
}

func TestFDTD_HzInterior(t *testing.T) {
	forAllLaunchers(t, 4, func(t *testing.T, l *launch.Launcher) {
		const nx, ny = 4, 5
		fields := newTestFields(nx, ny, 1)
		before := fields.Hz.Clone()
		hz, err := NewFDTDHz(fields)
		require.NoError(t, err)
		rows, cols := hz.Shape()
		assert.Equal(t, [2]int{nx - 1, ny - 1}, [2]int{rows, cols})
		assert.Equal(t, (nx-1)*(ny-1), hz.NumElements())
		require.NoError(t, l.Run(hz))
		ex, ey := fields.Ex, fields.Ey
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				if i == nx-1 || j == ny-1 {
					assert.Equal(t, before.At(i, j), fields.Hz.At(i, j), "hz[%d,%d] should not change", i, j)
					continue
				}
				want := before.At(i, j) - float32(0.7*(ex.At(i, j+1)-ex.At(i, j)+ey.At(i+1, j)-ey.At(i, j)))
				assert.InDelta(t, want, fields.Hz.At(i, j), 1e-5, "hz[%d,%d]", i, j)
			}
		}
	})
}

func TestFDTD_Validation(t *testing.T) {
	fields := newTestFields(3, 3, 2)
	fields.Hz = dense.New[float32](3, 4)
	_, err := NewFDTDEx(fields)
	require.Error(t, err)
	_, err = NewFDTDHz(fields)
	require.Error(t, err)

	fields = newTestFields(3, 3, 2)
	ey, err := NewFDTDEy(fields)
	require.NoError(t, err)
	require.Error(t, ey.SetStep(2))
	require.Error(t, ey.SetStep(-1))

	fields.Fict = nil
	_, err = NewFDTDEy(fields)
	require.Error(t, err)

	empty := &FDTDFields[float32]{Ex: dense.New[float32](0, 0), Ey: dense.New[float32](0, 0), Hz: dense.New[float32](0, 0)}
	require.Error(t, empty.Validate())
}
