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

// FDTD2DName is the registered name of the FDTD-2D application.
const FDTD2DName = "fdtd-2d"

func init() {
	Register(FDTD2DName, func(dataset Dataset, dtype DType) (App, error) {
		return newForDType(dtype,
			func() (App, error) { return NewFDTD2D[float32](dataset) },
			func() (App, error) { return NewFDTD2D[float64](dataset) })
	})
}

// FDTD2DDims are the number of time steps and the dimensions of the fields.
type FDTD2DDims struct {
	TMax, NX, NY int
}

// FDTD2DSizes holds the dimensions used for each dataset.
var FDTD2DSizes = map[Dataset]FDTD2DDims{
	Mini:       {20, 20, 30},
	Small:      {40, 60, 80},
	Medium:     {100, 200, 240},
	Large:      {500, 1000, 1200},
	ExtraLarge: {1000, 2000, 2600},
}

// FDTD2D is the 2D finite-difference time-domain kernel: each of its TMax time steps is a pipeline
// of three launches (Ey, Ex and then Hz updates), each reading fields fully updated by the previous one.
type FDTD2D[T dense.Float] struct {
	base
	dims      FDTD2DDims
	fields    *kernels.FDTDFields[T]
	step1     *kernels.FDTDEy[T]
	step2     *kernels.FDTDEx[T]
	step3     *kernels.FDTDHz[T]
	reference *kernels.FDTDFields[T]
}

// NewFDTD2D creates and initializes the FDTD-2D application for dataset.
func NewFDTD2D[T dense.Float](dataset Dataset) (*FDTD2D[T], error) {
	dims, found := FDTD2DSizes[dataset]
	if !found {
		return nil, errors.Errorf("fdtd-2d: no sizes for dataset %s", dataset)
	}
	return NewFDTD2DWithDims[T](dims)
}

// NewFDTD2DWithDims creates and initializes the FDTD-2D application with custom dimensions.
func NewFDTD2DWithDims[T dense.Float](dims FDTD2DDims) (*FDTD2D[T], error) {
	if err := checkDims(FDTD2DName, "tmax, nx, ny", dims.TMax, dims.NX, dims.NY); err != nil {
		return nil, err
	}
	app := &FDTD2D[T]{
		base:   base{name: FDTD2DName, dtype: dtypeOf[T](), threshold: 10.05, dataset: datasetOf(FDTD2DSizes, dims)},
		dims:   dims,
		fields: newFDTDFields[T](dims),
	}
	app.Reset()
	var err error
	if app.step1, err = kernels.NewFDTDEy(app.fields); err != nil {
		return nil, err
	}
	if app.step2, err = kernels.NewFDTDEx(app.fields); err != nil {
		return nil, err
	}
	if app.step3, err = kernels.NewFDTDHz(app.fields); err != nil {
		return nil, err
	}
	return app, nil
}

func newFDTDFields[T dense.Float](dims FDTD2DDims) *kernels.FDTDFields[T] {
	return &kernels.FDTDFields[T]{
		Ex:   dense.New[T](dims.NX, dims.NY),
		Ey:   dense.New[T](dims.NX, dims.NY),
		Hz:   dense.New[T](dims.NX, dims.NY),
		Fict: dense.Vector[T](dims.TMax),
	}
}

func initFDTD2D[T dense.Float](dims FDTD2DDims, fields *kernels.FDTDFields[T]) {
	nx, ny := dims.NX, dims.NY
	for t := range fields.Fict {
		fields.Fict[t] = T(t)
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			fields.Ex.Set(i, j, ratio[T](i*(j+1), nx))
			fields.Ey.Set(i, j, ratio[T](i*(j+2), ny))
			fields.Hz.Set(i, j, ratio[T](i*(j+3), nx))
		}
	}
}

// Fields returns the simulated fields.
func (app *FDTD2D[T]) Fields() *kernels.FDTDFields[T] { return app.fields }

// Dims implements App.
func (app *FDTD2D[T]) Dims() string {
	return fmt.Sprintf("tmax=%d nx=%d ny=%d", app.dims.TMax, app.dims.NX, app.dims.NY)
}

// Memory implements App.
func (app *FDTD2D[T]) Memory() uintptr {
	f := app.fields
	return matricesMemory(f.Ex, f.Ey, f.Hz) + uintptr(len(f.Fict))*elementSize[T]()
}

// NumSteps implements App.
func (app *FDTD2D[T]) NumSteps() int { return app.dims.TMax }

// Reset implements App.
func (app *FDTD2D[T]) Reset() {
	initFDTD2D(app.dims, app.fields)
}

// Step implements App: it runs time step `step`, which must follow step-1.
func (app *FDTD2D[T]) Step(ctx context.Context, l *launch.Launcher, step int) error {
	if err := checkStep(app, step); err != nil {
		return err
	}
	if err := app.step1.SetStep(step); err != nil {
		return err
	}
	return l.Pipeline(ctx, app.step1, app.step2, app.step3)
}

// Reference runs all time steps sequentially, on its own freshly initialized fields.
func (app *FDTD2D[T]) Reference() *kernels.FDTDFields[T] {
	if app.reference != nil {
		return app.reference
	}
	dims := app.dims
	f := newFDTDFields[T](dims)
	initFDTD2D(dims, f)
	nx, ny := dims.NX, dims.NY
	ex, ey, hz := f.Ex, f.Ey, f.Hz
	for t := 0; t < dims.TMax; t++ {
		for j := 0; j < ny; j++ {
			ey.Set(0, j, f.Fict[t])
		}
		for i := 1; i < nx; i++ {
			for j := 0; j < ny; j++ {
				ey.Set(i, j, ey.At(i, j)-T(kernels.EFieldCoefficient*T(hz.At(i, j)-hz.At(i-1, j))))
			}
		}
		for i := 0; i < nx; i++ {
			for j := 1; j < ny; j++ {
				ex.Set(i, j, ex.At(i, j)-T(kernels.EFieldCoefficient*T(hz.At(i, j)-hz.At(i, j-1))))
			}
		}
		for i := 0; i < nx-1; i++ {
			for j := 0; j < ny-1; j++ {
				hz.Set(i, j, hz.At(i, j)-T(kernels.HFieldCoefficient*T(ex.At(i, j+1)-ex.At(i, j)+ey.At(i+1, j)-ey.At(i, j))))
			}
		}
	}
	app.reference = f
	return f
}

// Compare implements App. All three fields are compared.
func (app *FDTD2D[T]) Compare() (dense.Comparison, error) {
	ref := app.Reference()
	total := dense.Comparison{Identical: true}
	for _, pair := range [][2]*dense.Matrix[T]{{ref.Ex, app.fields.Ex}, {ref.Ey, app.fields.Ey}, {ref.Hz, app.fields.Hz}} {
		c, err := dense.Compare(pair[0].Data, pair[1].Data, app.threshold)
		if err != nil {
			return total, errors.WithMessage(err, "fdtd-2d")
		}
		total = total.Merge(c)
	}
	return total, nil
}

// Checksum implements App.
func (app *FDTD2D[T]) Checksum() float64 { return dense.Checksum(app.fields.Hz.Data) }
