// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	// Sets are created empty.
	s := Make[string](10)
	assert.Len(t, s, 0)

	s.Insert("2mm", "bicg")
	assert.Len(t, s, 2)
	assert.True(t, s.Has("2mm"))
	assert.False(t, s.Has("3mm"))

	s2 := MakeWith("bicg", "fdtd-2d")
	s3 := s.Sub(s2)
	assert.Equal(t, []string{"2mm"}, Sorted(s3))
	assert.Equal(t, []string{"bicg", "fdtd-2d"}, Sorted(s2))
	assert.Empty(t, Sorted(Make[int]()))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"fdtd-2d", "2mm", "bicg"}, Unique([]string{"fdtd-2d", "2mm", "fdtd-2d", "bicg", "2mm"}))
	assert.Empty(t, Unique([]int(nil)))
}
