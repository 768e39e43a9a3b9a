// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gomlx/polybench/pkg/launch"
	"github.com/gomlx/polybench/pkg/polybench"
	"github.com/gomlx/polybench/pkg/support/sets"
	"github.com/gomlx/polybench/pkg/support/xslices"
	"github.com/gomlx/polybench/ui/commandline"
	"github.com/gomlx/polybench/ui/plots"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// options of one polybench invocation.
type options struct {
	Apps    []string
	Threads []int
	Dataset polybench.Dataset
	DType   polybench.DType
	Base    launch.Config

	Check, Stats, Progress bool
	CSV, Plot              string

	Out io.Writer
}

// run every application of opts with each of its thread counts, and reports the results.
func run(ctx context.Context, opts options) ([]polybench.Result, error) {
	apps := sets.Unique(opts.Apps)
	if len(apps) == 0 {
		return nil, errors.New("no applications selected")
	}
	if unknown := sets.MakeWith(apps...).Sub(sets.MakeWith(polybench.Names()...)); len(unknown) > 0 {
		return nil, errors.Errorf("unknown applications %q, registered applications are %q",
			sets.Sorted(unknown), polybench.Names())
	}
	threads := xslices.SortedUnique(opts.Threads)
	if len(threads) == 0 || threads[0] < 1 {
		return nil, errors.Errorf("thread counts must be >= 1, got %v", opts.Threads)
	}
	runID := polybench.NewRunID()
	klog.V(1).Infof("run %s: apps=%q dataset=%s dtype=%s threads=%v launch=%s",
		runID, apps, opts.Dataset, opts.DType, threads, opts.Base)

	// One launcher per thread count, shared by all applications.
	launchers := make([]*launch.Launcher, len(threads))
	for ii, numThreads := range threads {
		cfg := opts.Base
		cfg.NumThreads = numThreads
		l, err := launch.NewWithConfig(cfg)
		if err != nil {
			return nil, err
		}
		launchers[ii] = l
	}

	var results []polybench.Result
	for _, name := range apps {
		app, err := polybench.New(name, opts.Dataset, opts.DType)
		if err != nil {
			return results, err
		}
		commandline.ReportApp(opts.Out, app)
		for ii, numThreads := range threads {
			l := launchers[ii]
			l.ResetStats()
			runOpts := polybench.RunOptions{Check: opts.Check, RunID: runID}
			var pBar *commandline.ProgressBar
			if opts.Progress {
				pBar = commandline.NewProgressBar(opts.Out, fmt.Sprintf("%s (%d threads)", name, numThreads), app.NumSteps())
				runOpts.OnStep = pBar.OnStep
			}
			result, err := polybench.Run(ctx, app, l, runOpts)
			if pBar != nil {
				if closeErr := pBar.Close(); closeErr != nil {
					klog.Warningf("progress bar: %v", closeErr)
				}
			}
			if err != nil {
				return results, err
			}
			results = append(results, result)
			l.WaitAll()
			if opts.Stats {
				commandline.ReportStats(opts.Out, l)
			}
		}
	}

	commandline.ReportResults(opts.Out, results)
	if opts.CSV != "" {
		if err := polybench.SaveCSV(opts.CSV, results); err != nil {
			return results, err
		}
		klog.Infof("results saved to %q", opts.CSV)
	}
	if opts.Plot != "" {
		if err := plots.SaveScaling(opts.Plot, results); err != nil {
			return results, err
		}
		klog.Infof("scaling plot saved to %q", opts.Plot)
	}
	return results, nil
}
