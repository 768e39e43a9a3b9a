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

// TwoMMName is the registered name of the 2MM application.
const TwoMMName = "2mm"

func init() {
	Register(TwoMMName, func(dataset Dataset, dtype DType) (App, error) {
		return newForDType(dtype,
			func() (App, error) { return NewTwoMM[float32](dataset) },
			func() (App, error) { return NewTwoMM[float64](dataset) })
	})
}

// TwoMMDims are the dimensions of the 2MM matrices.
type TwoMMDims struct {
	NI, NJ, NK, NL int
}

// TwoMMSizes holds the dimensions used for each dataset.
var TwoMMSizes = map[Dataset]TwoMMDims{
	Mini:       {16, 18, 22, 24},
	Small:      {40, 50, 70, 80},
	Medium:     {180, 190, 210, 220},
	Large:      {800, 900, 1100, 1200},
	ExtraLarge: {1600, 1800, 2200, 2400},
}

// 2MM scalars.
const (
	TwoMMAlpha = 1.5
	TwoMMBeta  = 1.2
)

// TwoMM computes D = alpha*A·B·C + beta*D in two launches:
//
//	kernel1: tmp = alpha * A·B
//	kernel2: D = beta*D + tmp·C
//
// A is ni x nk, B is nk x nj, tmp is ni x nj, C is nj x nl and D is ni x nl.
type TwoMM[T dense.Float] struct {
	base
	dims            TwoMMDims
	A, B, Tmp, C, D *dense.Matrix[T]
	kernel1         *kernels.MatMul[T]
	kernel2         *kernels.ScaledMatMul[T]
	reference       *dense.Matrix[T]
}

// NewTwoMM creates and initializes the 2MM application for dataset.
func NewTwoMM[T dense.Float](dataset Dataset) (*TwoMM[T], error) {
	dims, found := TwoMMSizes[dataset]
	if !found {
		return nil, errors.Errorf("2mm: no sizes for dataset %s", dataset)
	}
	return NewTwoMMWithDims[T](dims)
}

// NewTwoMMWithDims creates and initializes the 2MM application with custom dimensions.
func NewTwoMMWithDims[T dense.Float](dims TwoMMDims) (*TwoMM[T], error) {
	if err := checkDims(TwoMMName, "ni, nj, nk, nl", dims.NI, dims.NJ, dims.NK, dims.NL); err != nil {
		return nil, err
	}
	app := &TwoMM[T]{
		base: base{name: TwoMMName, dtype: dtypeOf[T](), threshold: 0.05, dataset: datasetOf(TwoMMSizes, dims)},
		dims: dims,
		A:    dense.New[T](dims.NI, dims.NK),
		B:    dense.New[T](dims.NK, dims.NJ),
		Tmp:  dense.New[T](dims.NI, dims.NJ),
		C:    dense.New[T](dims.NJ, dims.NL),
		D:    dense.New[T](dims.NI, dims.NL),
	}
	app.Reset()
	var err error
	app.kernel1, err = kernels.NewMatMul("2mm.kernel1", app.Tmp, app.A, app.B, T(TwoMMAlpha))
	if err != nil {
		return nil, err
	}
	app.kernel2, err = kernels.NewScaledMatMul("2mm.kernel2", app.D, app.Tmp, app.C, T(TwoMMBeta))
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Dims implements App.
func (app *TwoMM[T]) Dims() string {
	return fmt.Sprintf("ni=%d nj=%d nk=%d nl=%d", app.dims.NI, app.dims.NJ, app.dims.NK, app.dims.NL)
}

// Memory implements App.
func (app *TwoMM[T]) Memory() uintptr {
	return matricesMemory(app.A, app.B, app.Tmp, app.C, app.D)
}

// NumSteps implements App.
func (app *TwoMM[T]) NumSteps() int { return 1 }

// Reset implements App.
func (app *TwoMM[T]) Reset() {
	initTwoMM(app.dims, app.A, app.B, app.C, app.D)
	app.Tmp.Fill(0)
}

func initTwoMM[T dense.Float](dims TwoMMDims, a, b, c, d *dense.Matrix[T]) {
	ni, nj, nk, nl := dims.NI, dims.NJ, dims.NK, dims.NL
	for i := 0; i < ni; i++ {
		for j := 0; j < nk; j++ {
			a.Set(i, j, ratio[T]((i*j+1)%ni, ni))
		}
	}
	for i := 0; i < nk; i++ {
		for j := 0; j < nj; j++ {
			b.Set(i, j, ratio[T](i*(j+1)%nj, nj))
		}
	}
	for i := 0; i < nj; i++ {
		for j := 0; j < nl; j++ {
			c.Set(i, j, ratio[T]((i*(j+3)+1)%nl, nl))
		}
	}
	for i := 0; i < ni; i++ {
		for j := 0; j < nl; j++ {
			d.Set(i, j, ratio[T](i*(j+2)%nk, nk))
		}
	}
}

// Step implements App.
func (app *TwoMM[T]) Step(ctx context.Context, l *launch.Launcher, step int) error {
	if err := checkStep(app, step); err != nil {
		return err
	}
	return l.Pipeline(ctx, app.kernel1, app.kernel2)
}

// Reference computes D sequentially, on its own freshly initialized arrays.
func (app *TwoMM[T]) Reference() *dense.Matrix[T] {
	if app.reference != nil {
		return app.reference
	}
	dims := app.dims
	a, b := dense.New[T](dims.NI, dims.NK), dense.New[T](dims.NK, dims.NJ)
	c, d := dense.New[T](dims.NJ, dims.NL), dense.New[T](dims.NI, dims.NL)
	initTwoMM(dims, a, b, c, d)
	tmp := dense.New[T](dims.NI, dims.NJ)
	alpha, beta := T(TwoMMAlpha), T(TwoMMBeta)
	for i := 0; i < dims.NI; i++ {
		for j := 0; j < dims.NJ; j++ {
			var acc T
			for k := 0; k < dims.NK; k++ {
				acc += T(T(alpha*a.At(i, k)) * b.At(k, j))
			}
			tmp.Set(i, j, acc)
		}
	}
	for i := 0; i < dims.NI; i++ {
		for j := 0; j < dims.NL; j++ {
			acc := T(d.At(i, j) * beta)
			for k := 0; k < dims.NJ; k++ {
				acc += T(tmp.At(i, k) * c.At(k, j))
			}
			d.Set(i, j, acc)
		}
	}
	app.reference = d
	return d
}

// Compare implements App.
func (app *TwoMM[T]) Compare() (dense.Comparison, error) {
	return dense.Compare(app.Reference().Data, app.D.Data, app.threshold)
}

// Checksum implements App.
func (app *TwoMM[T]) Checksum() float64 { return dense.Checksum(app.D.Data) }
