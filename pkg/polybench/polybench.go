// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package polybench is the host side of the PolyBench applications: it allocates and initializes
// the arrays, runs the kernel pipelines of each application on a launch.Launcher, and validates the
// results against a sequential reference implementation.
//
// Applications register themselves by name (see Register), and are created with New:
//
//	app, err := polybench.New("2mm", polybench.Small, polybench.Float32)
//	if err != nil { ... }
//	result, err := polybench.Run(ctx, app, launcher, polybench.RunOptions{Check: true})
package polybench

import (
	"context"
	"slices"
	"sync"
	"unsafe"

	"github.com/gomlx/polybench/pkg/core/dense"
	"github.com/gomlx/polybench/pkg/launch"
	"github.com/pkg/errors"
)

// App is one PolyBench application: its arrays and the pipeline of kernel launches that compute it.
type App interface {
	// Name of the application, e.g. "2mm".
	Name() string

	// Dataset used to size the arrays.
	Dataset() Dataset

	// DType of the arrays.
	DType() DType

	// Dims describes the problem dimensions, e.g. "ni=16 nj=18 nk=22 nl=24".
	Dims() string

	// Memory used by the arrays, in bytes.
	Memory() uintptr

	// NumSteps is the number of times Step must be called to complete the application.
	NumSteps() int

	// Reset re-initializes all arrays to their initial values.
	Reset()

	// Step runs the kernel launches of step, in dependency order, each launch completing before
	// any dependent one starts.
	Step(ctx context.Context, l *launch.Launcher, step int) error

	// Threshold is the maximum percent difference to the reference tolerated per element.
	Threshold() float64

	// Compare the outputs with those of the sequential reference implementation.
	// The reference is computed on its own arrays the first time it's needed.
	Compare() (dense.Comparison, error)

	// Checksum of the outputs.
	Checksum() float64
}

// Constructor creates an App with the arrays sized by dataset and of type dtype, already initialized.
type Constructor func(dataset Dataset, dtype DType) (App, error)

var (
	muRegistry   sync.Mutex
	constructors = make(map[string]Constructor)
)

// Register an application constructor under name. It's meant to be called during package initialization.
func Register(name string, constructor Constructor) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	constructors[name] = constructor
}

// Names returns the registered application names, sorted.
func Names() []string {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates the application registered as name.
func New(name string, dataset Dataset, dtype DType) (App, error) {
	muRegistry.Lock()
	constructor, found := constructors[name]
	muRegistry.Unlock()
	if !found {
		return nil, errors.Errorf("unknown application %q, registered applications are %q", name, Names())
	}
	app, err := constructor(dataset, dtype)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create application %q (dataset=%s, dtype=%s)", name, dataset, dtype)
	}
	return app, nil
}

// newForDType dispatches to the float32 or float64 version of a generic constructor.
func newForDType(dtype DType, new32 func() (App, error), new64 func() (App, error)) (App, error) {
	switch dtype {
	case Float32:
		return new32()
	case Float64:
		return new64()
	}
	return nil, errors.Errorf("unsupported dtype %s", dtype)
}

// ratio returns num/den converted to T, the way PolyBench initializes its arrays.
func ratio[T dense.Float](num, den int) T {
	return T(num) / T(den)
}

// matricesMemory sums the memory used by matrices.
func matricesMemory[T dense.Float](matrices ...*dense.Matrix[T]) uintptr {
	var total uintptr
	for _, m := range matrices {
		total += m.Memory()
	}
	return total
}

// elementSize returns the size in bytes of one T.
func elementSize[T dense.Float]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// base holds the fields common to all applications.
type base struct {
	name      string
	dataset   Dataset
	dtype     DType
	threshold float64
}

func (b *base) Name() string       { return b.name }
func (b *base) Dataset() Dataset   { return b.dataset }
func (b *base) DType() DType       { return b.dtype }
func (b *base) Threshold() float64 { return b.threshold }

func dtypeOf[T dense.Float]() DType {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return Float32
	}
	return Float64
}

// checkStep returns an error if step is not in [0, numSteps).
func checkStep(app App, step int) error {
	if step < 0 || step >= app.NumSteps() {
		return errors.Errorf("%s: step %d out of range [0, %d)", app.Name(), step, app.NumSteps())
	}
	return nil
}

// checkDims returns an error if any of the dimensions is < 1.
func checkDims(appName, names string, dims ...int) error {
	for _, d := range dims {
		if d < 1 {
			return errors.Errorf("%s: dimensions (%s) must all be >= 1, got %v", appName, names, dims)
		}
	}
	return nil
}
