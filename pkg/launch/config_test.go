// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package launch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/polybench/pkg/core/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), cfg)

	cfg, err = ParseConfig("threads=8; policy=last ;parallelism=-1")
	require.NoError(t, err)
	assert.Equal(t, Config{NumThreads: 8, Policy: partition.LastAbsorbs, MaxParallelism: -1}, cfg)

	cfg, err = ParseConfig("threads=1_024;parallelism=0")
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.NumThreads)
	assert.Equal(t, 0, cfg.MaxParallelism)

	// Round trip.
	cfg2, err := ParseConfig(cfg.String())
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)

	for _, bad := range []string{"threads", "threads=x", "threads=0", "policy=dynamic", "color=blue", "file:/does/not/exist"} {
		_, err = ParseConfig(bad)
		assert.Error(t, err, "settings %q", bad)
	}
}

func TestParseConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.cfg")
	require.NoError(t, os.WriteFile(path, []byte("# Test settings.\nthreads=3\n\npolicy=last;parallelism=2\n"), 0o644))
	cfg, err := ParseConfig("file:" + path + ";parallelism=5")
	require.NoError(t, err)
	assert.Equal(t, Config{NumThreads: 3, Policy: partition.LastAbsorbs, MaxParallelism: 5}, cfg)
}

func TestParseConfig_RecursiveFile(t *testing.T) {
	dir := t.TempDir()
	self := filepath.Join(dir, "self.cfg")
	require.NoError(t, os.WriteFile(self, []byte("threads=2\nfile:"+self+"\n"), 0o644))
	_, err := ParseConfig("file:" + self)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursive launch settings file")

	// Cycle through a second file.
	first, second := filepath.Join(dir, "first.cfg"), filepath.Join(dir, "second.cfg")
	require.NoError(t, os.WriteFile(first, []byte("file:"+second+"\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("policy=last\nfile:"+first+"\n"), 0o644))
	_, err = ParseConfig("file:" + first)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursive launch settings file")

	// Including the same file twice, one after the other, is not a cycle.
	common := filepath.Join(dir, "common.cfg")
	require.NoError(t, os.WriteFile(common, []byte("threads=3\n"), 0o644))
	cfg, err := ParseConfig("file:" + common + ";file:" + common)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.NumThreads)
}

func TestNew(t *testing.T) {
	t.Setenv(ConfigEnvVar, "threads=5;policy=balanced")
	l := New()
	assert.Equal(t, 5, l.NumThreads())
	assert.Equal(t, partition.Balanced, l.Config().Policy)

	t.Setenv(ConfigEnvVar, "threads=-1")
	require.Panics(t, func() { New() })

	_, err := NewWithConfig(Config{NumThreads: 0})
	require.Error(t, err)
}

func TestNew_DefaultConfig(t *testing.T) {
	require.NoError(t, os.Unsetenv(ConfigEnvVar))
	defer func() { DefaultConfig = "" }()
	DefaultConfig = "threads=2;policy=last"
	l := New()
	assert.Equal(t, 2, l.NumThreads())
	assert.Equal(t, partition.LastAbsorbs, l.Config().Policy)
}
