// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceTilde(t *testing.T) {
	usr, err := user.Current()
	require.NoError(t, err)

	for input, want := range map[string]string{
		"":                 "",
		"results.csv":      "results.csv",
		"/tmp/results.csv": "/tmp/results.csv",
		"~":                usr.HomeDir,
		"~/out/plot.png":   filepath.Join(usr.HomeDir, "out/plot.png"),
	} {
		got, err := ReplaceTilde(input)
		require.NoError(t, err, "ReplaceTilde(%q)", input)
		assert.Equal(t, want, got, "ReplaceTilde(%q)", input)
	}

	_, err = ReplaceTilde("~no_such_user_for_polybench/x")
	require.Error(t, err)
}

func TestCreateForWriting(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "a", "b", "results.csv")
	f, err := CreateForWriting(filePath)
	require.NoError(t, err)
	_, err = f.WriteString("x")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	contents, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "x", string(contents))
}

func TestPrepareOutputPath(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "sub", "dir", "plot.png")
	expanded, err := PrepareOutputPath(filePath)
	require.NoError(t, err)
	assert.Equal(t, filePath, expanded)
	info, err := os.Stat(filepath.Dir(filePath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	expanded, err = PrepareOutputPath("plot.png")
	require.NoError(t, err)
	assert.Equal(t, "plot.png", expanded)
}
