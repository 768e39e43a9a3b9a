// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"github.com/gomlx/polybench/pkg/core/dense"
	"github.com/pkg/errors"
)

// BiCGS computes s = rᵀ·A, that is s[j] = Σ_i r[i]*A[i,j], for an nx x ny matrix A.
// Its index space is the ny elements of s.
type BiCGS[T Float] struct {
	A    *dense.Matrix[T]
	R, S []T
}

// NewBiCGS returns the first BiCG kernel. len(r) must be A.Rows and len(s) must be A.Cols.
func NewBiCGS[T Float](a *dense.Matrix[T], r, s []T) (*BiCGS[T], error) {
	if len(r) != a.Rows || len(s) != a.Cols {
		return nil, errors.Errorf("bicg.kernel1: A is %s, it requires len(r)=%d and len(s)=%d, got %d and %d",
			a.ShapeString(), a.Rows, a.Cols, len(r), len(s))
	}
	return &BiCGS[T]{A: a, R: r, S: s}, nil
}

// Name implements launch.Kernel.
func (k *BiCGS[T]) Name() string { return "bicg.kernel1" }

// Shape implements launch.Kernel.
func (k *BiCGS[T]) Shape() (rows, cols int) { return len(k.S), 1 }

// NumElements implements launch.Kernel.
func (k *BiCGS[T]) NumElements() int { return len(k.S) }

// Compute implements launch.Kernel.
func (k *BiCGS[T]) Compute(j, _ int) {
	ny := k.A.Cols
	data := k.A.Data
	var acc T
	for i, r := range k.R {
		acc += T(r * data[i*ny+j])
	}
	k.S[j] = acc
}

// BiCGQ computes q = A·p, that is q[i] = Σ_j A[i,j]*p[j], for an nx x ny matrix A.
// Its index space is the nx elements of q.
type BiCGQ[T Float] struct {
	A    *dense.Matrix[T]
	P, Q []T
}

// NewBiCGQ returns the second BiCG kernel. len(p) must be A.Cols and len(q) must be A.Rows.
func NewBiCGQ[T Float](a *dense.Matrix[T], p, q []T) (*BiCGQ[T], error) {
	if len(p) != a.Cols || len(q) != a.Rows {
		return nil, errors.Errorf("bicg.kernel2: A is %s, it requires len(p)=%d and len(q)=%d, got %d and %d",
			a.ShapeString(), a.Cols, a.Rows, len(p), len(q))
	}
	return &BiCGQ[T]{A: a, P: p, Q: q}, nil
}

// Name implements launch.Kernel.
func (k *BiCGQ[T]) Name() string { return "bicg.kernel2" }

// Shape implements launch.Kernel.
func (k *BiCGQ[T]) Shape() (rows, cols int) { return len(k.Q), 1 }

// NumElements implements launch.Kernel.
func (k *BiCGQ[T]) NumElements() int { return len(k.Q) }

// Compute implements launch.Kernel.
func (k *BiCGQ[T]) Compute(i, _ int) {
	ny := k.A.Cols
	row := k.A.Data[i*ny : (i+1)*ny]
	var acc T
	for j, p := range k.P {
		acc += T(row[j] * p)
	}
	k.Q[i] = acc
}
