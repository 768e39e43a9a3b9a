// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package partition splits a flat index space [0, N) into contiguous, disjoint ranges, one per
// worker thread, and maps flat indices back to row/column coordinates.
//
// Every index in [0, N) belongs to exactly one thread's Range, for any Policy.
// Threads with nothing to do get an empty Range (Start == End).
package partition

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Policy selects how the remainder N%P of the index space is distributed among threads.
type Policy int

const (
	// Balanced gives one extra element to each of the first N%P threads, so range lengths
	// differ by at most one. This is the default.
	Balanced Policy = iota

	// LastAbsorbs gives every thread N/P elements and the last thread the remainder.
	LastAbsorbs
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case Balanced:
		return "balanced"
	case LastAbsorbs:
		return "last_absorbs"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a name back to a Policy. It accepts the String() form plus the aliases
// "remainder" (Balanced) and "last" (LastAbsorbs). It's case-insensitive.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "balanced", "remainder", "":
		return Balanced, nil
	case "last_absorbs", "last", "lastabsorbs":
		return LastAbsorbs, nil
	}
	return Balanced, errors.Errorf("unknown partition policy %q, valid values are %q or %q",
		name, Balanced, LastAbsorbs)
}

// Range is the half-open interval [Start, End) of flat indices assigned to one thread.
type Range struct {
	Start, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// Empty returns whether the range holds no index.
func (r Range) Empty() bool { return r.End <= r.Start }

// Contains returns whether idx is in [Start, End).
func (r Range) Contains(idx int) bool { return idx >= r.Start && idx < r.End }

// String implements fmt.Stringer.
func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Start, r.End) }

// For returns the range of the flat index space [0, n) assigned to thread threadID out of
// numThreads, according to policy.
//
// It panics (with exceptions.Panicf) if numThreads < 1, n < 0 or threadID is not in [0, numThreads).
func For(policy Policy, n, numThreads, threadID int) Range {
	if numThreads < 1 {
		exceptions.Panicf("partition.For: numThreads must be >= 1, got %d", numThreads)
	}
	if n < 0 {
		exceptions.Panicf("partition.For: number of elements must be >= 0, got %d", n)
	}
	if threadID < 0 || threadID >= numThreads {
		exceptions.Panicf("partition.For: threadID %d out of range [0, %d)", threadID, numThreads)
	}
	perThread := n / numThreads
	switch policy {
	case Balanced:
		remainder := n % numThreads
		if threadID < remainder {
			start := threadID * (perThread + 1)
			return Range{Start: start, End: start + perThread + 1}
		}
		start := threadID*perThread + remainder
		return Range{Start: start, End: start + perThread}
	case LastAbsorbs:
		start := threadID * perThread
		if threadID == numThreads-1 {
			return Range{Start: start, End: n}
		}
		return Range{Start: start, End: start + perThread}
	default:
		exceptions.Panicf("partition.For: unknown policy %s", policy)
	}
	return Range{}
}

// All returns the ranges of all numThreads threads, indexed by thread id.
func All(policy Policy, n, numThreads int) []Range {
	ranges := make([]Range, numThreads)
	for threadID := range ranges {
		ranges[threadID] = For(policy, n, numThreads, threadID)
	}
	return ranges
}

// Coord maps the flat index idx of a row-major array with the given row stride to its (row, col)
// coordinates.
//
// The caller is responsible for checking the result against the array bounds.
func Coord(idx, rowStride int) (row, col int) {
	return idx / rowStride, idx % rowStride
}
