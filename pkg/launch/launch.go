// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package launch runs kernels over a fixed number of worker threads.
//
// A launch statically partitions the kernel's flat index space among the workers (see package
// partition) and each worker computes its own cells independently: there is no synchronization
// inside a launch, which is only correct because every output cell is written by exactly one worker.
//
// A launch ends with a full barrier: Launch.Wait (and Run) return only after all workers finished.
// Dependent kernels must therefore be launched only after the kernels they read from are done,
// which is what Pipeline does.
package launch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/polybench/internal/workerspool"
	"github.com/gomlx/polybench/pkg/core/partition"
	"github.com/gomlx/polybench/pkg/support/xsync"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Kernel is the body executed by every worker of a launch, one output cell at a time.
type Kernel interface {
	// Name identifies the kernel, e.g. "2mm.kernel1".
	Name() string

	// Shape returns the bounds of the coordinates passed to Compute. The number of columns is also
	// the row stride used to map flat indices to coordinates.
	Shape() (rows, cols int)

	// NumElements is the size of the flat index space partitioned among the workers.
	// It is normally rows*cols.
	NumElements() int

	// Compute the output cell at (row, col). It is called exactly once per cell per launch,
	// possibly concurrently for different cells.
	Compute(row, col int)
}

// Launcher executes kernels, splitting each across Config.NumThreads workers.
//
// It is safe for concurrent use: independent kernels can be launched at the same time.
type Launcher struct {
	config   Config
	pool     *workerspool.Pool
	inFlight *xsync.DynamicWaitGroup

	muStats sync.Mutex
	stats   map[string]*Stats
}

// Stats holds the accumulated launches of one kernel.
type Stats struct {
	Kernel   string
	Launches int
	Elements int64
	Duration time.Duration
}

// New returns a Launcher configured from the environment variable ConfigEnvVar if set, or
// DefaultConfig otherwise.
//
// It panics with an error if the configuration can't be parsed.
func New() *Launcher {
	cfg, err := ConfigFromEnv()
	if err != nil {
		panic(err)
	}
	return newLauncher(cfg)
}

// NewWithConfig returns a Launcher with the given configuration.
func NewWithConfig(cfg Config) (*Launcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newLauncher(cfg), nil
}

func newLauncher(cfg Config) *Launcher {
	return &Launcher{
		config:   cfg,
		pool:     workerspool.New(cfg.MaxParallelism),
		inFlight: xsync.NewDynamicWaitGroup(),
		stats:    make(map[string]*Stats),
	}
}

// Config returns the launcher configuration.
func (l *Launcher) Config() Config { return l.config }

// NumThreads returns the number of workers each kernel is split across.
func (l *Launcher) NumThreads() int { return l.config.NumThreads }

// Launch is the handle of one in-flight kernel launch.
type Launch struct {
	kernel   Kernel
	done     *xsync.LatchWithValue[error]
	duration time.Duration
}

// Wait blocks until all workers of the launch finished, and returns the first error found, if any.
func (launch *Launch) Wait() error {
	return launch.done.Wait()
}

// Duration of the launch. Only valid after Wait returns.
func (launch *Launch) Duration() time.Duration {
	launch.done.Wait()
	return launch.duration
}

// Start launches kernel asynchronously and returns immediately.
//
// The caller must call Launch.Wait before starting any kernel that reads what this one writes.
func (l *Launcher) Start(kernel Kernel) *Launch {
	launch := &Launch{
		kernel: kernel,
		done:   xsync.NewLatchWithValue[error](),
	}
	l.inFlight.Add(1)
	go func() {
		defer l.inFlight.Done()
		start := time.Now()
		err := l.execute(kernel)
		launch.duration = time.Since(start)
		l.record(kernel, launch.duration)
		if klog.V(2).Enabled() {
			klog.Infof("launch %q: %d elements, %d threads (%s), %s",
				kernel.Name(), kernel.NumElements(), l.config.NumThreads, l.config.Policy, launch.duration)
		}
		launch.done.Trigger(err)
	}()
	return launch
}

// Run launches kernel and waits for it to finish.
func (l *Launcher) Run(kernel Kernel) error {
	return l.Start(kernel).Wait()
}

// RunConcurrently launches all kernels at the same time and waits for all of them. The kernels must be
// independent: none may write what another reads or writes.
//
// It returns the first error in the order the kernels were given.
func (l *Launcher) RunConcurrently(kernels ...Kernel) error {
	launches := make([]*Launch, len(kernels))
	for ii, kernel := range kernels {
		launches[ii] = l.Start(kernel)
	}
	var firstErr error
	for _, launch := range launches {
		if err := launch.Wait(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Pipeline runs kernels one after the other, each launch being a full barrier before the next starts.
//
// The context is checked between launches only, a running launch is never interrupted.
// It stops at the first failing launch.
func (l *Launcher) Pipeline(ctx context.Context, kernels ...Kernel) error {
	for _, kernel := range kernels {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "pipeline interrupted before launching %q", kernel.Name())
		}
		if err := l.Run(kernel); err != nil {
			return err
		}
	}
	return nil
}

// PeakParallelism returns the largest number of workers observed running concurrently in their own
// goroutines, across all launches so far.
func (l *Launcher) PeakParallelism() int {
	return l.pool.Peak()
}

// WaitAll blocks until every launch started so far has finished.
func (l *Launcher) WaitAll() {
	l.inFlight.Wait()
}

// execute runs the NumThreads workers of kernel and returns the first precondition failure, if any.
func (l *Launcher) execute(kernel Kernel) error {
	numThreads := l.config.NumThreads
	workerErrs := make([]error, numThreads)
	l.pool.Run(numThreads, func(threadID int) {
		workerErrs[threadID] = exceptions.TryCatch[error](func() {
			l.runWorker(kernel, threadID)
		})
	})
	for threadID, err := range workerErrs {
		if err != nil {
			return errors.WithMessagef(err, "launch of kernel %q failed in thread %d of %d",
				kernel.Name(), threadID, numThreads)
		}
	}
	return nil
}

// runWorker computes the cells of kernel assigned to threadID.
func (l *Launcher) runWorker(kernel Kernel, threadID int) {
	numElements := kernel.NumElements()
	r := partition.For(l.config.Policy, numElements, l.config.NumThreads, threadID)
	if r.Empty() {
		return
	}
	rows, cols := kernel.Shape()
	if cols <= 0 {
		exceptions.Panicf("kernel %q has %d elements but shape %dx%d", kernel.Name(), numElements, rows, cols)
	}
	for idx := r.Start; idx < r.End; idx++ {
		row, col := partition.Coord(idx, cols)
		if row >= rows || col >= cols {
			exceptions.Panicf("kernel %q: flat index %d maps to (%d, %d), out of bounds of shape %dx%d -- "+
				"mismatched thread count or array size", kernel.Name(), idx, row, col, rows, cols)
		}
		kernel.Compute(row, col)
	}
}

func (l *Launcher) record(kernel Kernel, elapsed time.Duration) {
	l.muStats.Lock()
	defer l.muStats.Unlock()
	s, found := l.stats[kernel.Name()]
	if !found {
		s = &Stats{Kernel: kernel.Name()}
		l.stats[kernel.Name()] = s
	}
	s.Launches++
	s.Elements += int64(kernel.NumElements())
	s.Duration += elapsed
}

// Stats returns the accumulated statistics of every kernel launched, sorted by kernel name.
func (l *Launcher) Stats() []Stats {
	l.muStats.Lock()
	defer l.muStats.Unlock()
	all := make([]Stats, 0, len(l.stats))
	for _, s := range l.stats {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Kernel < all[j].Kernel })
	return all
}

// ResetStats clears the accumulated statistics.
func (l *Launcher) ResetStats() {
	l.muStats.Lock()
	defer l.muStats.Unlock()
	clear(l.stats)
}
