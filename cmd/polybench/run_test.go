// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomlx/polybench/pkg/core/partition"
	"github.com/gomlx/polybench/pkg/launch"
	"github.com/gomlx/polybench/pkg/polybench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	opts := options{
		Apps:     []string{"2mm", "fdtd-2d"},
		Threads:  []int{3, 1, 3},
		Dataset:  polybench.Mini,
		DType:    polybench.Float64,
		Base:     launch.Config{Policy: partition.LastAbsorbs, MaxParallelism: -1},
		Check:    true,
		Stats:    true,
		Progress: true,
		CSV:      filepath.Join(dir, "results.csv"),
		Plot:     filepath.Join(dir, "scaling.png"),
		Out:      &out,
	}
	results, err := run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.Valid, "%s with %d threads", r.App, r.Threads)
		assert.Equal(t, results[0].RunID, r.RunID)
	}
	assert.Equal(t, []int{1, 3, 1, 3}, []int{results[0].Threads, results[1].Threads, results[2].Threads, results[3].Threads})
	assert.Contains(t, out.String(), "fdtd-2d.step3")
	assert.Contains(t, out.String(), "peak of")

	csv, err := os.ReadFile(opts.CSV)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(csv)), "\n"), 5)
	_, err = os.Stat(opts.Plot)
	require.NoError(t, err)
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	base := launch.Config{Policy: partition.Balanced, MaxParallelism: 0}
	_, err := run(context.Background(), options{Threads: []int{1}, Base: base, Out: &out})
	require.Error(t, err)
	_, err = run(context.Background(), options{Apps: []string{"2mm"}, Threads: []int{0, 2}, Base: base, Out: &out})
	require.Error(t, err)
	_, err = run(context.Background(), options{Apps: []string{"lu"}, Threads: []int{1}, Base: base, Out: &out})
	require.Error(t, err)
}
