// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xsync implements synchronization tools missing from the standard library.
package xsync

import "sync"

// Latch is a one-shot signal: it can be waited on until it is triggered,
// and once triggered it stays triggered forever.
type Latch struct {
	mu   sync.Mutex
	wait chan struct{}
}

// NewLatch returns an un-triggered latch.
func NewLatch() *Latch {
	return &Latch{wait: make(chan struct{})}
}

// Trigger the latch. Triggering an already triggered latch is a no-op.
func (l *Latch) Trigger() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Test() {
		return
	}
	close(l.wait)
}

// Wait until the latch is triggered.
func (l *Latch) Wait() {
	<-l.wait
}

// Test returns whether the latch has been triggered, without blocking.
func (l *Latch) Test() bool {
	select {
	case <-l.wait:
		return true
	default:
		return false
	}
}

// WaitChan returns a channel that is closed when the latch is triggered, for use in a `select`.
func (l *Latch) WaitChan() <-chan struct{} {
	return l.wait
}

// LatchWithValue is a Latch that carries a value set when it is triggered.
type LatchWithValue[T any] struct {
	value T
	latch *Latch
}

// NewLatchWithValue returns an un-triggered latch.
func NewLatchWithValue[T any]() *LatchWithValue[T] {
	return &LatchWithValue[T]{latch: NewLatch()}
}

// Trigger the latch with value. Only the first call has any effect.
func (l *LatchWithValue[T]) Trigger(value T) {
	l.latch.mu.Lock()
	defer l.latch.mu.Unlock()
	if l.latch.Test() {
		return
	}
	l.value = value
	close(l.latch.wait)
}

// Wait until the latch is triggered and return its value.
func (l *LatchWithValue[T]) Wait() T {
	l.latch.Wait()
	return l.value
}
