// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package polybench

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Dataset selects the problem size of an application, following the PolyBench 4.2 presets.
type Dataset int

const (
	Mini Dataset = iota
	Small
	Medium
	Large
	ExtraLarge

	// Custom marks applications created with explicit dimensions that match no preset.
	Custom Dataset = -1
)

var datasetNames = []string{"mini", "small", "medium", "large", "extralarge"}

// Datasets lists all datasets, from smallest to largest.
var Datasets = []Dataset{Mini, Small, Medium, Large, ExtraLarge}

// String implements fmt.Stringer.
func (d Dataset) String() string {
	if d == Custom {
		return "custom"
	}
	if d < 0 || int(d) >= len(datasetNames) {
		return fmt.Sprintf("Dataset(%d)", int(d))
	}
	return datasetNames[d]
}

// ParseDataset converts a dataset name to a Dataset. It's case-insensitive, and also accepts
// "standard" for Medium and "xl" for ExtraLarge.
func ParseDataset(name string) (Dataset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "standard":
		return Medium, nil
	case "xl", "extra_large", "extra-large":
		return ExtraLarge, nil
	}
	for ii, n := range datasetNames {
		if n == name {
			return Dataset(ii), nil
		}
	}
	return Mini, errors.Errorf("unknown dataset %q, valid values are %q", name, datasetNames)
}

// DType is the element type of the arrays of an application.
type DType int

const (
	Float32 DType = iota
	Float64
)

// String implements fmt.Stringer.
func (dt DType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return "DType(invalid)"
}

// ParseDType converts "float32" (or "float"/"f32") and "float64" (or "double"/"f64") to a DType.
func ParseDType(name string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "float32", "float", "f32":
		return Float32, nil
	case "float64", "double", "f64":
		return Float64, nil
	}
	return Float32, errors.Errorf("unknown dtype %q, valid values are \"float32\" and \"float64\"", name)
}

// datasetOf returns the dataset whose preset sizes are dims, or Custom.
func datasetOf[D comparable](sizes map[Dataset]D, dims D) Dataset {
	for _, dataset := range Datasets {
		if sizes[dataset] == dims {
			return dataset
		}
	}
	return Custom
}
