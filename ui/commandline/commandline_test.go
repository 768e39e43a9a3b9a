// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gomlx/polybench/pkg/core/partition"
	"github.com/gomlx/polybench/pkg/launch"
	"github.com/gomlx/polybench/pkg/polybench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.23s", FormatDuration(1234567890*time.Nanosecond))
	assert.Equal(t, "1.50ms", FormatDuration(1500*time.Microsecond))
	assert.Equal(t, "2.00µs", FormatDuration(2*time.Microsecond))
	assert.Equal(t, "0.00s", FormatDuration(0))
	assert.Equal(t, "1m30s", FormatDuration(90*time.Second))
}

func TestReportResults(t *testing.T) {
	results := []polybench.Result{
		{App: "2mm", Dataset: "mini", DType: "float32", Threads: 1, Policy: "balanced", Seconds: 0.004,
			Checked: true, Valid: true, Identical: true},
		{App: "2mm", Dataset: "mini", DType: "float32", Threads: 4, Policy: "balanced", Seconds: 0.001,
			Checked: true, Valid: false, Failures: 1234, MaxPercentDiff: 12.5},
		{App: "bicg", Dataset: "mini", DType: "float64", Threads: 2, Policy: "last_absorbs", Seconds: 0.002},
	}
	var buf bytes.Buffer
	ReportResults(&buf, results)
	out := buf.String()
	for _, want := range []string{"App", "Speedup", "identical", "FAILED (1,234)", "4.00x", "unchecked", "last_absorbs", "12.5"} {
		assert.Contains(t, out, want)
	}
}

func TestReportAppAndStats(t *testing.T) {
	app, err := polybench.New("bicg", polybench.Mini, polybench.Float64)
	require.NoError(t, err)
	var buf bytes.Buffer
	ReportApp(&buf, app)
	assert.True(t, strings.HasPrefix(buf.String(), "bicg (mini, float64, "))

	l, err := launch.NewWithConfig(launch.Config{NumThreads: 3, Policy: partition.Balanced, MaxParallelism: -1})
	require.NoError(t, err)
	_, err = polybench.Run(context.Background(), app, l, polybench.RunOptions{})
	require.NoError(t, err)
	buf.Reset()
	ReportStats(&buf, l)
	out := buf.String()
	assert.Contains(t, out, "bicg.kernel1")
	assert.Contains(t, out, "bicg.kernel2")
	assert.Contains(t, out, "Launches")
	assert.Contains(t, out, "3 threads (balanced), peak of")
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	pBar := NewProgressBar(&buf, "fdtd-2d", 20)
	for step := 1; step <= 20; step++ {
		pBar.OnStep(step, 20)
	}
	require.NoError(t, pBar.Close())
	require.NoError(t, pBar.Close())
	pBar.OnStep(21, 20) // Ignored after Close.
	assert.Contains(t, buf.String(), "fdtd-2d")
}
