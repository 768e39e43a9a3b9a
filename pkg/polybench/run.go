// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package polybench

import (
	"context"
	"time"

	"github.com/gomlx/polybench/pkg/launch"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// RunOptions configure Run.
type RunOptions struct {
	// Check the outputs against the sequential reference after the run.
	Check bool

	// RunID is copied to the Result. If empty, a new one is generated.
	RunID string

	// OnStep, if set, is called after each completed step with the number of steps done so far.
	OnStep func(done, total int)
}

// Result of one run of an application.
type Result struct {
	RunID    string
	App      string
	Dataset  string
	DType    string
	Dims     string
	Threads  int
	Policy   string
	Steps    int
	Seconds  float64
	Checksum float64

	// Checked is set if the outputs were compared against the reference. The fields below are only
	// meaningful if Checked.
	Checked        bool
	Valid          bool
	Identical      bool
	Failures       int
	MaxPercentDiff float64
}

// Duration returns the run time as a time.Duration.
func (r Result) Duration() time.Duration {
	return time.Duration(r.Seconds * float64(time.Second))
}

// Run resets app, runs all its steps on launcher l and optionally checks the results.
//
// The run time includes only the steps, not the reset or the check.
func Run(ctx context.Context, app App, l *launch.Launcher, opts RunOptions) (Result, error) {
	cfg := l.Config()
	result := Result{
		RunID:   opts.RunID,
		App:     app.Name(),
		Dataset: app.Dataset().String(),
		DType:   app.DType().String(),
		Dims:    app.Dims(),
		Threads: cfg.NumThreads,
		Policy:  cfg.Policy.String(),
		Steps:   app.NumSteps(),
	}
	if result.RunID == "" {
		result.RunID = NewRunID()
	}

	app.Reset()
	numSteps := app.NumSteps()
	start := time.Now()
	for step := 0; step < numSteps; step++ {
		if err := app.Step(ctx, l, step); err != nil {
			return result, errors.WithMessagef(err, "%s: step %d of %d failed", app.Name(), step, numSteps)
		}
		if opts.OnStep != nil {
			opts.OnStep(step+1, numSteps)
		}
	}
	elapsed := time.Since(start)
	result.Seconds = elapsed.Seconds()
	result.Checksum = app.Checksum()
	klog.V(1).Infof("%s (%s, %s): %d steps with %d threads (%s) in %s",
		app.Name(), app.Dataset(), app.Dims(), numSteps, cfg.NumThreads, cfg.Policy, elapsed)

	if opts.Check {
		cmp, err := app.Compare()
		if err != nil {
			return result, err
		}
		result.Checked = true
		result.Failures = cmp.Failures
		result.MaxPercentDiff = cmp.MaxPercentDiff
		result.Identical = cmp.Identical
		result.Valid = cmp.Failures == 0
		if !result.Valid {
			klog.Errorf("%s: %d of %d elements differ from the reference by more than %g%% (max %g%%)",
				app.Name(), cmp.Failures, cmp.Elements, app.Threshold(), cmp.MaxPercentDiff)
		}
	}
	return result, nil
}

// SweepOptions configure Sweep.
type SweepOptions struct {
	RunOptions

	// Threads lists the thread counts to run with.
	Threads []int

	// Base is the launcher configuration used for every run, except for the number of threads.
	Base launch.Config

	// OnResult, if set, is called after each run.
	OnResult func(Result)
}

// Sweep runs app once per thread count in opts.Threads, all results sharing the same RunID.
func Sweep(ctx context.Context, app App, opts SweepOptions) ([]Result, error) {
	if len(opts.Threads) == 0 {
		return nil, errors.New("sweep requires at least one thread count")
	}
	if opts.RunID == "" {
		opts.RunID = NewRunID()
	}
	results := make([]Result, 0, len(opts.Threads))
	for _, numThreads := range opts.Threads {
		cfg := opts.Base
		cfg.NumThreads = numThreads
		l, err := launch.NewWithConfig(cfg)
		if err != nil {
			return results, err
		}
		result, err := Run(ctx, app, l, opts.RunOptions)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if opts.OnResult != nil {
			opts.OnResult(result)
		}
	}
	return results, nil
}
