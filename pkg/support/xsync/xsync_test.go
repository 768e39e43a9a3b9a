// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatch(t *testing.T) {
	l := NewLatch()
	assert.False(t, l.Test())
	go func() {
		time.Sleep(5 * time.Millisecond)
		l.Trigger()
	}()
	l.Wait()
	assert.True(t, l.Test())
	l.Trigger() // No-op.
	select {
	case <-l.WaitChan():
	default:
		t.Fatal("WaitChan should be closed after Trigger")
	}
}

func TestLatchWithValue(t *testing.T) {
	l := NewLatchWithValue[int]()
	go l.Trigger(7)
	assert.Equal(t, 7, l.Wait())
	l.Trigger(11)
	assert.Equal(t, 7, l.Wait())
}

func TestDynamicWaitGroup(t *testing.T) {
	wg := NewDynamicWaitGroup()
	wg.Wait() // Zero counter: returns immediately.

	wg.Add(2)
	done := NewLatch()
	go func() {
		wg.Wait()
		done.Trigger()
	}()
	wg.Done()
	wg.Add(1) // Added while someone is waiting.
	wg.Done()
	assert.False(t, done.Test())
	wg.Done()
	select {
	case <-done.WaitChan():
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for DynamicWaitGroup")
	}
	assert.Panics(t, func() { wg.Done() })
}
