// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package kernels implements the per-cell bodies of the PolyBench kernels run by package launch:
// matrix multiplication (with an optional alpha factor, or a prior beta scaling of the output),
// the two BiCG reductions and the three FDTD-2D stencil steps.
//
// Each kernel writes only the output cell it is given, and reads arrays that no other kernel
// of the same launch writes, so cells can be computed in any order, by any number of workers.
// The reduction inside a cell always runs sequentially in increasing index order, which makes the
// results bit-for-bit independent of the number of workers.
//
// Intermediate products are explicitly converted to T, so the compiler doesn't fuse them into
// fused multiply-adds: a kernel computes the same values as a plain sequential loop written the same way.
package kernels

import (
	"github.com/gomlx/polybench/pkg/core/dense"
	"github.com/gomlx/polybench/pkg/launch"
)

// Compile-time checks that the kernels implement launch.Kernel.
var (
	_ launch.Kernel = (*MatMul[float32])(nil)
	_ launch.Kernel = (*ScaledMatMul[float32])(nil)
	_ launch.Kernel = (*BiCGS[float32])(nil)
	_ launch.Kernel = (*BiCGQ[float32])(nil)
	_ launch.Kernel = (*FDTDEy[float32])(nil)
	_ launch.Kernel = (*FDTDEx[float32])(nil)
	_ launch.Kernel = (*FDTDHz[float64])(nil)
)

// Float is re-exported for convenience.
type Float = dense.Float
