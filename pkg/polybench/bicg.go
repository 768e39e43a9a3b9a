// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package polybench

import (
	"context"
	"fmt"

	"github.com/gomlx/polybench/pkg/core/dense"
	"github.com/gomlx/polybench/pkg/kernels"
	"github.com/gomlx/polybench/pkg/launch"
	"github.com/pkg/errors"
)

// BiCGName is the registered name of the BiCG application.
const BiCGName = "bicg"

func init() {
	Register(BiCGName, func(dataset Dataset, dtype DType) (App, error) {
		return newForDType(dtype,
			func() (App, error) { return NewBiCG[float32](dataset) },
			func() (App, error) { return NewBiCG[float64](dataset) })
	})
}

// BiCGDims are the dimensions of the BiCG matrix A, which is NX x NY.
type BiCGDims struct {
	NX, NY int
}

// BiCGSizes holds the dimensions used for each dataset.
var BiCGSizes = map[Dataset]BiCGDims{
	Mini:       {NX: 42, NY: 38},
	Small:      {NX: 124, NY: 116},
	Medium:     {NX: 410, NY: 390},
	Large:      {NX: 2100, NY: 1900},
	ExtraLarge: {NX: 2200, NY: 1800},
}

// BiCG computes the two reductions of the BiCG sub-kernel of BiCGStab:
//
//	kernel1: s = rᵀ·A, partitioned over the ny elements of s.
//	kernel2: q = A·p,  partitioned over the nx elements of q.
//
// Both only read A, r and p, so they are launched concurrently.
type BiCG[T dense.Float] struct {
	base
	dims       BiCGDims
	A          *dense.Matrix[T]
	R, S, P, Q []T
	kernel1    *kernels.BiCGS[T]
	kernel2    *kernels.BiCGQ[T]
	refS, refQ []T
}

// NewBiCG creates and initializes the BiCG application for dataset.
func NewBiCG[T dense.Float](dataset Dataset) (*BiCG[T], error) {
	dims, found := BiCGSizes[dataset]
	if !found {
		return nil, errors.Errorf("bicg: no sizes for dataset %s", dataset)
	}
	return NewBiCGWithDims[T](dims)
}

// NewBiCGWithDims creates and initializes the BiCG application with custom dimensions.
func NewBiCGWithDims[T dense.Float](dims BiCGDims) (*BiCG[T], error) {
	if err := checkDims(BiCGName, "nx, ny", dims.NX, dims.NY); err != nil {
		return nil, err
	}
	app := &BiCG[T]{
		base: base{name: BiCGName, dtype: dtypeOf[T](), threshold: 0.7, dataset: datasetOf(BiCGSizes, dims)},
		dims: dims,
		A:    dense.New[T](dims.NX, dims.NY),
		R:    dense.Vector[T](dims.NX),
		S:    dense.Vector[T](dims.NY),
		P:    dense.Vector[T](dims.NY),
		Q:    dense.Vector[T](dims.NX),
	}
	app.Reset()
	var err error
	if app.kernel1, err = kernels.NewBiCGS(app.A, app.R, app.S); err != nil {
		return nil, err
	}
	if app.kernel2, err = kernels.NewBiCGQ(app.A, app.P, app.Q); err != nil {
		return nil, err
	}
	return app, nil
}

// Dims implements App.
func (app *BiCG[T]) Dims() string {
	return fmt.Sprintf("nx=%d ny=%d", app.dims.NX, app.dims.NY)
}

// Memory implements App.
func (app *BiCG[T]) Memory() uintptr {
	vectorsLen := 2 * (app.dims.NX + app.dims.NY)
	return app.A.Memory() + uintptr(vectorsLen)*elementSize[T]()
}

// NumSteps implements App.
func (app *BiCG[T]) NumSteps() int { return 1 }

// Reset implements App.
func (app *BiCG[T]) Reset() {
	initBiCG(app.dims, app.A, app.R, app.P)
	clear(app.S)
	clear(app.Q)
}

func initBiCG[T dense.Float](dims BiCGDims, a *dense.Matrix[T], r, p []T) {
	n, m := dims.NX, dims.NY
	for i := range p {
		p[i] = ratio[T](i%m, m)
	}
	for i := range r {
		r[i] = ratio[T](i%n, n)
		for j := 0; j < m; j++ {
			a.Set(i, j, ratio[T](i*(j+1)%n, n))
		}
	}
}

// Step implements App.
func (app *BiCG[T]) Step(ctx context.Context, l *launch.Launcher, step int) error {
	if err := checkStep(app, step); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "bicg interrupted")
	}
	return l.RunConcurrently(app.kernel1, app.kernel2)
}

// Reference computes s and q sequentially, on their own freshly initialized arrays.
func (app *BiCG[T]) Reference() (s, q []T) {
	if app.refS != nil {
		return app.refS, app.refQ
	}
	nx, ny := app.dims.NX, app.dims.NY
	a := dense.New[T](nx, ny)
	r, p := dense.Vector[T](nx), dense.Vector[T](ny)
	initBiCG(app.dims, a, r, p)
	s, q = dense.Vector[T](ny), dense.Vector[T](nx)
	for i := 0; i < nx; i++ {
		var acc T
		for j := 0; j < ny; j++ {
			acc += T(a.At(i, j) * p[j])
		}
		q[i] = acc
	}
	for j := 0; j < ny; j++ {
		var acc T
		for i := 0; i < nx; i++ {
			acc += T(r[i] * a.At(i, j))
		}
		s[j] = acc
	}
	app.refS, app.refQ = s, q
	return
}

// Compare implements App.
func (app *BiCG[T]) Compare() (dense.Comparison, error) {
	refS, refQ := app.Reference()
	cmpS, err := dense.Compare(refS, app.S, app.threshold)
	if err != nil {
		return cmpS, errors.WithMessage(err, "bicg: comparing s")
	}
	cmpQ, err := dense.Compare(refQ, app.Q, app.threshold)
	if err != nil {
		return cmpQ, errors.WithMessage(err, "bicg: comparing q")
	}
	return cmpS.Merge(cmpQ), nil
}

// Checksum implements App.
func (app *BiCG[T]) Checksum() float64 { return dense.Checksum(app.S) + dense.Checksum(app.Q) }
