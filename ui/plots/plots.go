// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package plots draws the thread scaling of benchmark results.
package plots

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/polybench/pkg/polybench"
	"github.com/gomlx/polybench/pkg/support/fsutil"
	"github.com/gomlx/polybench/pkg/support/xslices"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"k8s.io/klog/v2"
)

// Point of a scaling series.
type Point struct {
	// Series groups the points of the same problem, e.g. "2mm/small/float32/balanced".
	Series string

	Threads int
	Seconds float64
	Speedup float64
}

// Series is a named list of points, sorted by number of threads.
type Series struct {
	Name   string
	Points []Point
}

// SeriesName returns the name of the series a result belongs to.
func SeriesName(r polybench.Result) string {
	return strings.Join([]string{r.App, r.Dataset, r.DType, r.Policy}, "/")
}

// ScalingSeries converts results to series of points, one series per problem, sorted by name.
func ScalingSeries(results []polybench.Result) []Series {
	speedups := polybench.Speedups(results)
	byName := make(map[string]*Series)
	var names []string
	for ii, r := range results {
		name := SeriesName(r)
		s, found := byName[name]
		if !found {
			s = &Series{Name: name}
			byName[name] = s
			names = append(names, name)
		}
		s.Points = append(s.Points, Point{Series: name, Threads: r.Threads, Seconds: r.Seconds, Speedup: speedups[ii]})
	}
	slices.Sort(names)
	all := make([]Series, 0, len(names))
	for _, name := range names {
		s := byName[name]
		slices.SortFunc(s.Points, func(a, b Point) int { return a.Threads - b.Threads })
		all = append(all, *s)
	}
	return all
}

// Width and Height of the saved plots.
var (
	Width  = 12 * vg.Inch
	Height = 6 * vg.Inch
)

// SaveScaling plots the speedup against the number of threads of each series of results, along with
// the ideal linear speedup, and saves it to filePath.
// The format is given by the file extension, e.g. ".png" or ".svg".
func SaveScaling(filePath string, results []polybench.Result) error {
	series := ScalingSeries(results)
	if len(series) == 0 {
		return errors.New("no results to plot")
	}
	maxThreads := xslices.Max(xslices.Map(results, func(r polybench.Result) int { return r.Threads }))

	p := plot.New()
	p.Title.Text = "Thread scaling"
	p.X.Label.Text = "threads"
	p.X.Min = 1
	p.X.Max = float64(maxThreads)
	p.Y.Label.Text = "speedup"
	p.Y.Min = 0
	p.Legend.Top = true
	p.Legend.Left = true

	ideal := plotter.NewFunction(func(x float64) float64 { return x })
	ideal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(ideal)
	p.Legend.Add("ideal", ideal)

	var lines []any
	for _, s := range series {
		xys := make(plotter.XYs, len(s.Points))
		for ii, pt := range s.Points {
			xys[ii].X = float64(pt.Threads)
			xys[ii].Y = pt.Speedup
		}
		lines = append(lines, s.Name, xys)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return errors.Wrap(err, "failed to add scaling lines")
	}
	expanded, err := fsutil.PrepareOutputPath(filePath)
	if err != nil {
		return err
	}
	if err := p.Save(Width, Height, expanded); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", filePath)
	}
	klog.V(1).Infof("saved scaling plot of %s to %q", pluralSeries(len(series)), filePath)
	return nil
}

func pluralSeries(n int) string {
	if n == 1 {
		return "1 series"
	}
	return fmt.Sprintf("%d series", n)
}
