// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"github.com/gomlx/polybench/pkg/core/dense"
	"github.com/pkg/errors"
)

// Stencil coefficients of the FDTD-2D steps.
const (
	// EFieldCoefficient is used by the Ey and Ex updates.
	EFieldCoefficient = 0.5

	// HFieldCoefficient is used by the Hz update.
	HFieldCoefficient = 0.7
)

// FDTDFields holds the nx x ny fields of an FDTD-2D simulation and the forcing term Fict,
// with one value per time step.
type FDTDFields[T Float] struct {
	Ex, Ey, Hz *dense.Matrix[T]
	Fict       []T
}

// Validate checks that all fields have the same shape, and that it is at least 1x1.
func (f *FDTDFields[T]) Validate() error {
	if f.Ex.Rows < 1 || f.Ex.Cols < 1 {
		return errors.Errorf("fdtd-2d: fields must be at least 1x1, got %s", f.Ex.ShapeString())
	}
	if !f.Ex.SameShape(f.Ey) || !f.Ex.SameShape(f.Hz) {
		return errors.Errorf("fdtd-2d: fields must have the same shape, got ex=%s, ey=%s, hz=%s",
			f.Ex.ShapeString(), f.Ey.ShapeString(), f.Hz.ShapeString())
	}
	return nil
}

// FDTDEy is the first step of a time step: the Ey field update.
//
//	ey[0,j] = fict[t]
//	ey[i,j] = ey[i,j] - 0.5*(hz[i,j] - hz[i-1,j]), for i > 0
type FDTDEy[T Float] struct {
	*FDTDFields[T]
	step int
}

// NewFDTDEy returns the Ey update kernel. Use SetStep to select the time step before each launch.
func NewFDTDEy[T Float](fields *FDTDFields[T]) (*FDTDEy[T], error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if len(fields.Fict) == 0 {
		return nil, errors.New("fdtd-2d: forcing term fict is empty")
	}
	return &FDTDEy[T]{FDTDFields: fields}, nil
}

// SetStep sets the time step t, which selects the forcing term fict[t]. It must not be called during a launch.
func (k *FDTDEy[T]) SetStep(t int) error {
	if t < 0 || t >= len(k.Fict) {
		return errors.Errorf("fdtd-2d: time step %d out of range [0, %d)", t, len(k.Fict))
	}
	k.step = t
	return nil
}

// Step returns the current time step.
func (k *FDTDEy[T]) Step() int { return k.step }

// Name implements launch.Kernel.
func (k *FDTDEy[T]) Name() string { return "fdtd-2d.step1" }

// Shape implements launch.Kernel.
func (k *FDTDEy[T]) Shape() (rows, cols int) { return k.Ey.Rows, k.Ey.Cols }

// NumElements implements launch.Kernel.
func (k *FDTDEy[T]) NumElements() int { return k.Ey.Size() }

// Compute implements launch.Kernel.
func (k *FDTDEy[T]) Compute(i, j int) {
	ny := k.Ey.Cols
	idx := i*ny + j
	if i == 0 {
		k.Ey.Data[idx] = k.Fict[k.step]
		return
	}
	hz := k.Hz.Data
	k.Ey.Data[idx] -= T(EFieldCoefficient * T(hz[idx]-hz[idx-ny]))
}

// FDTDEx is the second step of a time step: the Ex field update.
//
//	ex[i,j] = ex[i,j] - 0.5*(hz[i,j] - hz[i,j-1]), for j > 0
//
// The first column is left untouched.
type FDTDEx[T Float] struct {
	*FDTDFields[T]
}

// NewFDTDEx returns the Ex update kernel.
func NewFDTDEx[T Float](fields *FDTDFields[T]) (*FDTDEx[T], error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return &FDTDEx[T]{FDTDFields: fields}, nil
}

// Name implements launch.Kernel.
func (k *FDTDEx[T]) Name() string { return "fdtd-2d.step2" }

// Shape implements launch.Kernel.
func (k *FDTDEx[T]) Shape() (rows, cols int) { return k.Ex.Rows, k.Ex.Cols }

// NumElements implements launch.Kernel.
func (k *FDTDEx[T]) NumElements() int { return k.Ex.Size() }

// Compute implements launch.Kernel.
func (k *FDTDEx[T]) Compute(i, j int) {
	if j == 0 {
		return
	}
	idx := i*k.Ex.Cols + j
	hz := k.Hz.Data
	k.Ex.Data[idx] -= T(EFieldCoefficient * T(hz[idx]-hz[idx-1]))
}

// FDTDHz is the last step of a time step: the Hz field update, over the (nx-1) x (ny-1) interior
// that has a neighbor below and to the right.
//
//	hz[i,j] = hz[i,j] - 0.7*(ex[i,j+1] - ex[i,j] + ey[i+1,j] - ey[i,j])
type FDTDHz[T Float] struct {
	*FDTDFields[T]
}

// NewFDTDHz returns the Hz update kernel.
func NewFDTDHz[T Float](fields *FDTDFields[T]) (*FDTDHz[T], error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return &FDTDHz[T]{FDTDFields: fields}, nil
}

// Name implements launch.Kernel.
func (k *FDTDHz[T]) Name() string { return "fdtd-2d.step3" }

// Shape implements launch.Kernel. The row stride of the index space is ny-1, not ny.
func (k *FDTDHz[T]) Shape() (rows, cols int) { return k.Hz.Rows - 1, k.Hz.Cols - 1 }

// NumElements implements launch.Kernel.
func (k *FDTDHz[T]) NumElements() int { return (k.Hz.Rows - 1) * (k.Hz.Cols - 1) }

// Compute implements launch.Kernel.
func (k *FDTDHz[T]) Compute(i, j int) {
	ny := k.Hz.Cols
	idx := i*ny + j
	ex, ey := k.Ex.Data, k.Ey.Data
	k.Hz.Data[idx] -= T(HFieldCoefficient * T(ex[idx+1]-ex[idx]+ey[idx+ny]-ey[idx]))
}
