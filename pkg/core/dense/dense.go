// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dense holds the flat, row-major numeric buffers the kernels read and write.
//
// A Matrix is shared-read by all workers of a launch, but each cell is written by at most one
// worker: the package doesn't synchronize anything.
package dense

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Float is the set of element types supported by the kernels.
type Float interface {
	constraints.Float
}

// Matrix is a row-major 2D array stored in a flat slice: element (i, j) is at Data[i*Cols+j].
type Matrix[T Float] struct {
	Rows, Cols int
	Data       []T
}

// New allocates a zero-filled rows x cols matrix.
func New[T Float](rows, cols int) *Matrix[T] {
	if rows < 0 || cols < 0 {
		exceptions.Panicf("dense.New: invalid shape %dx%d", rows, cols)
	}
	return &Matrix[T]{Rows: rows, Cols: cols, Data: make([]T, rows*cols)}
}

// FromData wraps data as a rows x cols matrix, without copying.
func FromData[T Float](rows, cols int, data []T) (*Matrix[T], error) {
	if rows < 0 || cols < 0 {
		return nil, errors.Errorf("invalid matrix shape %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, errors.Errorf("matrix %dx%d requires %d elements, got %d", rows, cols, rows*cols, len(data))
	}
	return &Matrix[T]{Rows: rows, Cols: cols, Data: data}, nil
}

// NewWithFn allocates a rows x cols matrix and sets each element (i, j) to fn(i, j).
func NewWithFn[T Float](rows, cols int, fn func(i, j int) T) *Matrix[T] {
	m := New[T](rows, cols)
	for i := 0; i < rows; i++ {
		row := m.Data[i*cols : (i+1)*cols]
		for j := range row {
			row[j] = fn(i, j)
		}
	}
	return m
}

// Index returns the flat index of (i, j).
func (m *Matrix[T]) Index(i, j int) int { return i*m.Cols + j }

// At returns element (i, j).
func (m *Matrix[T]) At(i, j int) T { return m.Data[i*m.Cols+j] }

// Set element (i, j) to value.
func (m *Matrix[T]) Set(i, j int, value T) { m.Data[i*m.Cols+j] = value }

// Size returns the number of elements.
func (m *Matrix[T]) Size() int { return m.Rows * m.Cols }

// Memory returns the number of bytes used by the elements.
func (m *Matrix[T]) Memory() uintptr {
	var zero T
	return uintptr(len(m.Data)) * sizeOf(zero)
}

func sizeOf[T Float](v T) uintptr {
	switch any(v).(type) {
	case float32:
		return 4
	default:
		return 8
	}
}

// Clone returns a deep copy of the matrix.
func (m *Matrix[T]) Clone() *Matrix[T] {
	data := make([]T, len(m.Data))
	copy(data, m.Data)
	return &Matrix[T]{Rows: m.Rows, Cols: m.Cols, Data: data}
}

// Fill sets all elements to value.
func (m *Matrix[T]) Fill(value T) {
	for i := range m.Data {
		m.Data[i] = value
	}
}

// SameShape returns whether m and other have the same dimensions.
func (m *Matrix[T]) SameShape(other *Matrix[T]) bool {
	return m.Rows == other.Rows && m.Cols == other.Cols
}

// ShapeString returns the shape formatted as "RowsxCols".
func (m *Matrix[T]) ShapeString() string {
	return fmt.Sprintf("%dx%d", m.Rows, m.Cols)
}

// String pretty-prints the matrix, one row per line. Meant for small matrices and debugging.
func (m *Matrix[T]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Matrix[%s]{\n", m.ShapeString())
	for i := 0; i < m.Rows; i++ {
		sb.WriteString("\t")
		for j := 0; j < m.Cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", float64(m.At(i, j)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// Vector allocates a zero-filled vector of size n.
func Vector[T Float](n int) []T {
	if n < 0 {
		exceptions.Panicf("dense.Vector: invalid size %d", n)
	}
	return make([]T, n)
}

// VectorWithFn allocates a vector of size n with element i set to fn(i).
func VectorWithFn[T Float](n int, fn func(i int) T) []T {
	v := Vector[T](n)
	for i := range v {
		v[i] = fn(i)
	}
	return v
}

// PercentDiff returns the relative difference between a and b in percent, as used by the
// PolyBench result checks. Values with magnitude below 0.01 are considered equal.
func PercentDiff[T Float](a, b T) float64 {
	va, vb := float64(a), float64(b)
	if math.Abs(va) < 0.01 && math.Abs(vb) < 0.01 {
		return 0
	}
	return 100 * math.Abs(math.Abs(va-vb)/math.Abs(va+1e-11))
}

// Comparison summarizes the element-wise comparison of two buffers.
type Comparison struct {
	// Elements is the number of elements compared.
	Elements int

	// Failures is the number of elements whose PercentDiff is above the threshold.
	Failures int

	// MaxPercentDiff is the largest PercentDiff found.
	MaxPercentDiff float64

	// Identical is true if all elements are equal, with NaN matching NaN.
	Identical bool
}

// Compare reference and got element-wise, counting as failures elements whose PercentDiff is
// larger than threshold.
func Compare[T Float](reference, got []T, threshold float64) (Comparison, error) {
	if len(reference) != len(got) {
		return Comparison{}, errors.Errorf("can't compare buffers of different sizes (%d and %d)", len(reference), len(got))
	}
	c := Comparison{Elements: len(got), Identical: true}
	for i, want := range reference {
		var diff float64
		switch wantNaN, gotNaN := math.IsNaN(float64(want)), math.IsNaN(float64(got[i])); {
		case wantNaN && gotNaN:
			diff = 0
		case wantNaN || gotNaN:
			diff = math.Inf(1)
			c.Identical = false
		default:
			diff = PercentDiff(want, got[i])
			if want != got[i] {
				c.Identical = false
			}
		}
		if diff > threshold {
			c.Failures++
		}
		c.MaxPercentDiff = max(c.MaxPercentDiff, diff)
	}
	return c, nil
}

// Merge accumulates other into c.
func (c Comparison) Merge(other Comparison) Comparison {
	return Comparison{
		Elements:       c.Elements + other.Elements,
		Failures:       c.Failures + other.Failures,
		MaxPercentDiff: max(c.MaxPercentDiff, other.MaxPercentDiff),
		Identical:      c.Identical && other.Identical,
	}
}

// Checksum returns the sum of all values, accumulated in float64.
func Checksum[T Float](values []T) float64 {
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum
}
