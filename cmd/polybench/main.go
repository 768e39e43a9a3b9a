// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// polybench runs the PolyBench applications on a range of thread counts, validates their results
// against the sequential reference and reports the run times.
//
// Example:
//
//	polybench -app=2mm,fdtd-2d -dataset=small -threads=1,2,4,8 -policy=balanced -csv=results.csv -plot=scaling.png
//
// The base launcher configuration is taken from $POLYBENCH_LAUNCH (see launch.ParseConfig), and
// overridden by the -policy and -parallelism flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/gomlx/polybench/pkg/core/partition"
	"github.com/gomlx/polybench/pkg/launch"
	"github.com/gomlx/polybench/pkg/polybench"
	"github.com/gomlx/polybench/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagApps = xslices.Flag("app", polybench.Names(),
		fmt.Sprintf("Comma-separated list of applications to run, from %q.", polybench.Names()),
		func(name string) (string, error) { return name, nil })
	flagThreads = xslices.Flag("threads", []int{1, 2, 4, 8},
		"Comma-separated list of thread counts to run each application with.", strconv.Atoi)
	flagDataset = flag.String("dataset", "small",
		"Problem size: mini, small, medium (or standard), large or extralarge (or xl).")
	flagDType  = flag.String("dtype", "float32", "Element type of the arrays: float32 or float64.")
	flagPolicy = flag.String("policy", "",
		"Partition policy: balanced (or remainder) or last_absorbs (or last). "+
			"If empty, the one configured in $"+launch.ConfigEnvVar+" is used.")
	flagParallelism = flag.Int("parallelism", -2,
		"Maximum number of concurrently running workers: 0 runs them sequentially and -1 means unlimited. "+
			"Values < -1 keep the one configured in $"+launch.ConfigEnvVar+".")
	flagCheck    = flag.Bool("check", true, "Validate the results against the sequential reference.")
	flagCSV      = flag.String("csv", "", "If set, results are saved in CSV format to this file.")
	flagPlot     = flag.String("plot", "", "If set, a thread scaling plot is saved to this file (.png or .svg).")
	flagStats    = flag.Bool("stats", false, "Print the accumulated statistics of each kernel.")
	flagProgress = flag.Bool("progress", true, "Display a progress bar while running.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	opts := options{
		Apps:     *flagApps,
		Threads:  *flagThreads,
		Dataset:  must.M1(polybench.ParseDataset(*flagDataset)),
		DType:    must.M1(polybench.ParseDType(*flagDType)),
		Check:    *flagCheck,
		CSV:      *flagCSV,
		Plot:     *flagPlot,
		Stats:    *flagStats,
		Progress: *flagProgress,
		Out:      os.Stdout,
	}
	opts.Base = must.M1(launch.ConfigFromEnv())
	if *flagPolicy != "" {
		opts.Base.Policy = must.M1(partition.ParsePolicy(*flagPolicy))
	}
	if *flagParallelism >= -1 {
		opts.Base.MaxParallelism = *flagParallelism
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	results, err := run(ctx, opts)
	if err != nil {
		klog.Fatalf("polybench failed: %+v", err)
	}
	for _, r := range results {
		if r.Checked && !r.Valid {
			klog.Errorf("%s with %d threads failed validation", r.App, r.Threads)
			os.Exit(1)
		}
	}
}
