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

// ThreeMMName is the registered name of the 3MM application.
const ThreeMMName = "3mm"

func init() {
	Register(ThreeMMName, func(dataset Dataset, dtype DType) (App, error) {
		return newForDType(dtype,
			func() (App, error) { return NewThreeMM[float32](dataset) },
			func() (App, error) { return NewThreeMM[float64](dataset) })
	})
}

// ThreeMMDims are the dimensions of the 3MM matrices.
type ThreeMMDims struct {
	NI, NJ, NK, NL, NM int
}

// ThreeMMSizes holds the dimensions used for each dataset.
var ThreeMMSizes = map[Dataset]ThreeMMDims{
	Mini:       {16, 18, 20, 22, 24},
	Small:      {40, 50, 60, 70, 80},
	Medium:     {180, 190, 200, 210, 220},
	Large:      {800, 900, 1000, 1100, 1200},
	ExtraLarge: {1600, 1800, 2000, 2200, 2400},
}

// ThreeMM computes G = (A·B)·(C·D) in three launches:
//
//	kernel1: E = A·B  (ni x nk · nk x nj)
//	kernel2: F = C·D  (nj x nm · nm x nl)
//	kernel3: G = E·F  (ni x nj · nj x nl)
//
// kernel1 and kernel2 are independent and launched concurrently; kernel3 starts after both finished.
type ThreeMM[T dense.Float] struct {
	base
	dims                      ThreeMMDims
	A, B, C, D, E, F, G       *dense.Matrix[T]
	kernel1, kernel2, kernel3 *kernels.MatMul[T]
	reference                 *dense.Matrix[T]
}

// NewThreeMM creates and initializes the 3MM application for dataset.
func NewThreeMM[T dense.Float](dataset Dataset) (*ThreeMM[T], error) {
	dims, found := ThreeMMSizes[dataset]
	if !found {
		return nil, errors.Errorf("3mm: no sizes for dataset %s", dataset)
	}
	return NewThreeMMWithDims[T](dims)
}

// NewThreeMMWithDims creates and initializes the 3MM application with custom dimensions.
func NewThreeMMWithDims[T dense.Float](dims ThreeMMDims) (*ThreeMM[T], error) {
	if err := checkDims(ThreeMMName, "ni, nj, nk, nl, nm", dims.NI, dims.NJ, dims.NK, dims.NL, dims.NM); err != nil {
		return nil, err
	}
	app := &ThreeMM[T]{
		base: base{name: ThreeMMName, dtype: dtypeOf[T](), threshold: 0.05, dataset: datasetOf(ThreeMMSizes, dims)},
		dims: dims,
		A:    dense.New[T](dims.NI, dims.NK),
		B:    dense.New[T](dims.NK, dims.NJ),
		C:    dense.New[T](dims.NJ, dims.NM),
		D:    dense.New[T](dims.NM, dims.NL),
		E:    dense.New[T](dims.NI, dims.NJ),
		F:    dense.New[T](dims.NJ, dims.NL),
		G:    dense.New[T](dims.NI, dims.NL),
	}
	app.Reset()
	var err error
	if app.kernel1, err = kernels.NewMatMul("3mm.kernel1", app.E, app.A, app.B, 1); err != nil {
		return nil, err
	}
	if app.kernel2, err = kernels.NewMatMul("3mm.kernel2", app.F, app.C, app.D, 1); err != nil {
		return nil, err
	}
	if app.kernel3, err = kernels.NewMatMul("3mm.kernel3", app.G, app.E, app.F, 1); err != nil {
		return nil, err
	}
	return app, nil
}

// Dims implements App.
func (app *ThreeMM[T]) Dims() string {
	d := app.dims
	return fmt.Sprintf("ni=%d nj=%d nk=%d nl=%d nm=%d", d.NI, d.NJ, d.NK, d.NL, d.NM)
}

// Memory implements App.
func (app *ThreeMM[T]) Memory() uintptr {
	return matricesMemory(app.A, app.B, app.C, app.D, app.E, app.F, app.G)
}

// NumSteps implements App.
func (app *ThreeMM[T]) NumSteps() int { return 1 }

// Reset implements App.
func (app *ThreeMM[T]) Reset() {
	initThreeMM(app.dims, app.A, app.B, app.C, app.D)
	app.E.Fill(0)
	app.F.Fill(0)
	app.G.Fill(0)
}

func initThreeMM[T dense.Float](dims ThreeMMDims, a, b, c, d *dense.Matrix[T]) {
	ni, nj, nk, nl, nm := dims.NI, dims.NJ, dims.NK, dims.NL, dims.NM
	for i := 0; i < ni; i++ {
		for j := 0; j < nk; j++ {
			a.Set(i, j, ratio[T]((i*j+1)%ni, 5*ni))
		}
	}
	for i := 0; i < nk; i++ {
		for j := 0; j < nj; j++ {
			b.Set(i, j, ratio[T]((i*(j+1)+2)%nj, 5*nj))
		}
	}
	for i := 0; i < nj; i++ {
		for j := 0; j < nm; j++ {
			c.Set(i, j, ratio[T](i*(j+3)%nl, 5*nl))
		}
	}
	for i := 0; i < nm; i++ {
		for j := 0; j < nl; j++ {
			d.Set(i, j, ratio[T]((i*(j+2)+2)%nk, 5*nk))
		}
	}
}

// Step implements App.
func (app *ThreeMM[T]) Step(ctx context.Context, l *launch.Launcher, step int) error {
	if err := checkStep(app, step); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "3mm interrupted")
	}
	if err := l.RunConcurrently(app.kernel1, app.kernel2); err != nil {
		return err
	}
	return l.Pipeline(ctx, app.kernel3)
}

// matMulReference returns left·right computed sequentially.
func matMulReference[T dense.Float](left, right *dense.Matrix[T]) *dense.Matrix[T] {
	out := dense.New[T](left.Rows, right.Cols)
	for i := 0; i < left.Rows; i++ {
		for j := 0; j < right.Cols; j++ {
			var acc T
			for k := 0; k < left.Cols; k++ {
				acc += T(left.At(i, k) * right.At(k, j))
			}
			out.Set(i, j, acc)
		}
	}
	return out
}

// Reference computes G sequentially, on its own freshly initialized arrays.
func (app *ThreeMM[T]) Reference() *dense.Matrix[T] {
	if app.reference != nil {
		return app.reference
	}
	dims := app.dims
	a, b := dense.New[T](dims.NI, dims.NK), dense.New[T](dims.NK, dims.NJ)
	c, d := dense.New[T](dims.NJ, dims.NM), dense.New[T](dims.NM, dims.NL)
	initThreeMM(dims, a, b, c, d)
	app.reference = matMulReference(matMulReference(a, b), matMulReference(c, d))
	return app.reference
}

// Compare implements App.
func (app *ThreeMM[T]) Compare() (dense.Comparison, error) {
	return dense.Compare(app.Reference().Data, app.G.Data, app.threshold)
}

// Checksum implements App.
func (app *ThreeMM[T]) Checksum() float64 { return dense.Checksum(app.G.Data) }
