// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool runs the worker bodies of a kernel launch as goroutines, keeping the number
// of goroutines running at the same time under a soft limit.
package workerspool

import "sync"

// Pool of goroutines with a soft limit on parallelism.
//
// The zero value is not usable, create it with New.
type Pool struct {
	// maxParallelism is the limit of goroutines running at the same time.
	// 0 disables parallelism (tasks run inline) and a negative value means unlimited.
	maxParallelism int

	mu         sync.Mutex
	numRunning int
	peak       int
}

// New returns a new Pool with the given maxParallelism: 0 disables parallelism and -1 means unlimited.
func New(maxParallelism int) *Pool {
	return &Pool{maxParallelism: maxParallelism}
}

// IsEnabled returns whether tasks run in their own goroutines (maxParallelism != 0).
func (p *Pool) IsEnabled() bool {
	return p.maxParallelism != 0
}

// Peak returns the largest number of tasks observed running at the same time.
func (p *Pool) Peak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

// lockedIsFull returns whether starting one more task would go over the limit.
//
// It must be called with Pool.mu acquired.
func (p *Pool) lockedIsFull() bool {
	if p.maxParallelism < 0 {
		return false
	}
	return p.numRunning >= p.maxParallelism
}

// StartIfAvailable starts task in its own goroutine if the pool is not full, and returns whether it did.
func (p *Pool) StartIfAvailable(task func()) bool {
	if p.maxParallelism == 0 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lockedIsFull() {
		return false
	}
	p.lockedStart(task)
	return true
}

// lockedStart runs task in a new goroutine and keeps tabs on numRunning.
//
// It must be called with Pool.mu acquired.
func (p *Pool) lockedStart(task func()) {
	p.numRunning++
	p.peak = max(p.peak, p.numRunning)
	go func() {
		defer func() {
			p.mu.Lock()
			p.numRunning--
			p.mu.Unlock()
		}()
		task()
	}()
}

// Run calls body(i) for every i in [0, n), and returns only when all of them have finished.
//
// Each body is started in its own goroutine if the pool has room for it, otherwise it runs inline in
// the calling goroutine. With parallelism disabled all bodies run inline in increasing order of i.
func (p *Pool) Run(n int, body func(i int)) {
	if !p.IsEnabled() {
		for i := 0; i < n; i++ {
			body(i)
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		task := func() {
			defer wg.Done()
			body(i)
		}
		if !p.StartIfAvailable(task) {
			task()
		}
	}
	wg.Wait()
}
