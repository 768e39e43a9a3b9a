// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline contains convenience UI tools to report benchmark runs on the command line.
package commandline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/polybench/pkg/launch"
	"github.com/gomlx/polybench/pkg/polybench"
)

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	failedStyle       = normalStyle.Foreground(lipgloss.Color("#D04040"))
	tableBorderColor  = "#705090"
)

func newTable(headers ...string) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		Headers(headers...)
}

// ReportApp prints a one-line description of the application: its name, dataset, dimensions and memory used.
func ReportApp(w io.Writer, app polybench.App) {
	_, _ = fmt.Fprintf(w, "%s (%s, %s, %s): %s\n",
		app.Name(), app.Dataset(), app.DType(), app.Dims(), humanize.Bytes(uint64(app.Memory())))
}

// ReportResults prints a table with one row per result, including the speedup over the run with the
// fewest threads of the same problem.
func ReportResults(w io.Writer, results []polybench.Result) {
	speedups := polybench.Speedups(results)
	failedRows := make(map[int]bool)
	table := newTable("App", "Dataset", "DType", "Threads", "Policy", "Time", "Speedup", "Max % Diff", "Status")
	for ii, r := range results {
		status := "unchecked"
		maxDiff := "-"
		if r.Checked {
			maxDiff = fmt.Sprintf("%.3g", r.MaxPercentDiff)
			switch {
			case r.Identical:
				status = "identical"
			case r.Valid:
				status = "passed"
			default:
				status = fmt.Sprintf("FAILED (%s)", humanize.Comma(int64(r.Failures)))
				failedRows[ii] = true
			}
		}
		table.Row(r.App, r.Dataset, r.DType, humanize.Comma(int64(r.Threads)), r.Policy,
			FormatDuration(r.Duration()), fmt.Sprintf("%.2fx", speedups[ii]), maxDiff, status)
	}
	table.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case failedRows[row] && col == 8:
			return failedStyle
		case col == 3 || (col >= 5 && col <= 7):
			return rightAlignedStyle
		}
		return normalStyle
	})
	_, _ = fmt.Fprintln(w, table.String())
}

// ReportStats prints a table with the accumulated launches of each kernel run by l, followed by the
// peak number of workers that ran concurrently.
func ReportStats(w io.Writer, l *launch.Launcher) {
	stats := l.Stats()
	table := newTable("Kernel", "Launches", "Elements", "Total", "Per Launch").
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return normalStyle
			}
			return rightAlignedStyle
		})
	for _, s := range stats {
		perLaunch := "-"
		if s.Launches > 0 {
			perLaunch = FormatDuration(s.Duration / time.Duration(s.Launches))
		}
		table.Row(s.Kernel, humanize.Comma(int64(s.Launches)), humanize.Comma(s.Elements),
			FormatDuration(s.Duration), perLaunch)
	}
	_, _ = fmt.Fprintln(w, table.String())
	_, _ = fmt.Fprintf(w, "%d threads (%s), peak of %d concurrent workers\n",
		l.NumThreads(), l.Config().Policy, l.PeakParallelism())
}
