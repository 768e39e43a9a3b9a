// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"github.com/gomlx/polybench/pkg/core/dense"
	"github.com/pkg/errors"
)

// MatMul computes Out = Alpha * Left · Right, one cell of Out per Compute call.
//
// Left is ni x nk, Right is nk x nj and Out is ni x nj.
// The cell is reset to zero before accumulating, unless Accumulate is set.
type MatMul[T Float] struct {
	name             string
	Out, Left, Right *dense.Matrix[T]
	Alpha            T

	// Accumulate adds the product to the current value of the output cell, instead of overwriting it.
	Accumulate bool
}

// NewMatMul returns a MatMul kernel called name. It validates the shapes of the operands.
func NewMatMul[T Float](name string, out, left, right *dense.Matrix[T], alpha T) (*MatMul[T], error) {
	if err := checkMatMulShapes(name, out, left, right); err != nil {
		return nil, err
	}
	return &MatMul[T]{name: name, Out: out, Left: left, Right: right, Alpha: alpha}, nil
}

func checkMatMulShapes[T Float](name string, out, left, right *dense.Matrix[T]) error {
	if left.Cols != right.Rows {
		return errors.Errorf("%s: contracting dimensions don't match, left is %s and right is %s",
			name, left.ShapeString(), right.ShapeString())
	}
	if out.Rows != left.Rows || out.Cols != right.Cols {
		return errors.Errorf("%s: output is %s, but %s x %s requires %dx%d",
			name, out.ShapeString(), left.ShapeString(), right.ShapeString(), left.Rows, right.Cols)
	}
	return nil
}

// Name implements launch.Kernel.
func (k *MatMul[T]) Name() string { return k.name }

// Shape implements launch.Kernel.
func (k *MatMul[T]) Shape() (rows, cols int) { return k.Out.Rows, k.Out.Cols }

// NumElements implements launch.Kernel.
func (k *MatMul[T]) NumElements() int { return k.Out.Size() }

// Compute implements launch.Kernel.
func (k *MatMul[T]) Compute(i, j int) {
	nk, nj := k.Left.Cols, k.Out.Cols
	outIdx := i*nj + j
	var acc T
	if k.Accumulate {
		acc = k.Out.Data[outIdx]
	}
	leftRow := k.Left.Data[i*nk : (i+1)*nk]
	rightData := k.Right.Data
	alpha := k.Alpha
	for kk, l := range leftRow {
		acc += T(T(alpha*l) * rightData[kk*nj+j])
	}
	k.Out.Data[outIdx] = acc
}

// ScaledMatMul computes Out = Out*Beta + Left · Right, one cell of Out per Compute call.
//
// Each output cell is scaled by Beta before the products are accumulated into it.
type ScaledMatMul[T Float] struct {
	name             string
	Out, Left, Right *dense.Matrix[T]
	Beta             T
}

// NewScaledMatMul returns a ScaledMatMul kernel called name. It validates the shapes of the operands.
func NewScaledMatMul[T Float](name string, out, left, right *dense.Matrix[T], beta T) (*ScaledMatMul[T], error) {
	if err := checkMatMulShapes(name, out, left, right); err != nil {
		return nil, err
	}
	return &ScaledMatMul[T]{name: name, Out: out, Left: left, Right: right, Beta: beta}, nil
}

// Name implements launch.Kernel.
func (k *ScaledMatMul[T]) Name() string { return k.name }

// Shape implements launch.Kernel.
func (k *ScaledMatMul[T]) Shape() (rows, cols int) { return k.Out.Rows, k.Out.Cols }

// NumElements implements launch.Kernel.
func (k *ScaledMatMul[T]) NumElements() int { return k.Out.Size() }

// Compute implements launch.Kernel.
func (k *ScaledMatMul[T]) Compute(i, j int) {
	nk, nj := k.Left.Cols, k.Out.Cols
	outIdx := i*nj + j
	acc := T(k.Out.Data[outIdx] * k.Beta)
	leftRow := k.Left.Data[i*nk : (i+1)*nk]
	rightData := k.Right.Data
	for kk, l := range leftRow {
		acc += T(l * rightData[kk*nj+j])
	}
	k.Out.Data[outIdx] = acc
}
