// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package polybench

import (
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/gomlx/polybench/pkg/support/fsutil"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NewRunID returns a new unique identifier to tag results.
func NewRunID() string {
	return uuid.NewString()
}

// ResultsDataFrame converts results to a dataframe, one row per result.
func ResultsDataFrame(results []Result) (dataframe.DataFrame, error) {
	if len(results) == 0 {
		return dataframe.DataFrame{}, errors.New("no results to convert")
	}
	df := dataframe.LoadStructs(results)
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "failed to convert results to a dataframe")
	}
	return df, nil
}

// WriteCSV writes results as CSV, with a header row.
func WriteCSV(w io.Writer, results []Result) error {
	df, err := ResultsDataFrame(results)
	if err != nil {
		return err
	}
	return errors.Wrap(df.WriteCSV(w), "failed to write results as CSV")
}

// SaveCSV writes results as CSV to filePath, creating its directory if needed.
func SaveCSV(filePath string, results []Result) error {
	f, err := fsutil.CreateForWriting(filePath)
	if err != nil {
		return err
	}
	if err = WriteCSV(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %q", filePath)
}

// groupKey identifies results of the same problem, which only differ by the number of threads.
func (r Result) groupKey() string {
	return strings.Join([]string{r.App, r.Dataset, r.DType, r.Dims, r.Policy}, "|")
}

// Speedups returns, for each result, the run time of the result of the same problem with the fewest
// threads divided by its own run time. Results are grouped by application, dataset, dtype, dimensions
// and policy.
//
// A result with a zero run time gets a speedup of 0.
func Speedups(results []Result) []float64 {
	baselines := make(map[string]Result)
	for _, r := range results {
		key := r.groupKey()
		if base, found := baselines[key]; !found || r.Threads < base.Threads {
			baselines[key] = r
		}
	}
	speedups := make([]float64, len(results))
	for ii, r := range results {
		if r.Seconds > 0 {
			speedups[ii] = baselines[r.groupKey()].Seconds / r.Seconds
		}
	}
	return speedups
}
