// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package launch

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/gomlx/polybench/pkg/core/partition"
	"github.com/gomlx/polybench/pkg/support/fsutil"
	"github.com/gomlx/polybench/pkg/support/sets"
	"github.com/pkg/errors"
)

// ConfigEnvVar is the environment variable with the default launcher configuration.
// See ParseConfig for its format.
const ConfigEnvVar = "POLYBENCH_LAUNCH"

// DefaultConfig is used by New if ConfigEnvVar is not set. If empty, DefaultSettings is used.
var DefaultConfig string

// Config of a Launcher.
type Config struct {
	// NumThreads is the number of workers each kernel launch is split across. Must be >= 1.
	NumThreads int

	// Policy used to partition the flat index space of each kernel among the NumThreads workers.
	Policy partition.Policy

	// MaxParallelism limits how many workers run concurrently.
	// 0 runs the workers one after the other in the calling goroutine, -1 means unlimited.
	MaxParallelism int
}

// DefaultSettings returns one thread per CPU, Balanced partitioning and parallelism bounded by the number of CPUs.
func DefaultSettings() Config {
	return Config{
		NumThreads:     runtime.NumCPU(),
		Policy:         partition.Balanced,
		MaxParallelism: runtime.NumCPU(),
	}
}

// String returns the config in the format accepted by ParseConfig.
func (c Config) String() string {
	return fmt.Sprintf("threads=%d;policy=%s;parallelism=%d", c.NumThreads, c.Policy, c.MaxParallelism)
}

// Validate returns an error if the configuration can't be used.
func (c Config) Validate() error {
	if c.NumThreads < 1 {
		return errors.Errorf("launch config: threads must be >= 1, got %d", c.NumThreads)
	}
	if c.Policy != partition.Balanced && c.Policy != partition.LastAbsorbs {
		return errors.Errorf("launch config: invalid policy %s", c.Policy)
	}
	return nil
}

// ConfigFromEnv parses the settings in the environment variable ConfigEnvVar if set, or DefaultConfig otherwise.
func ConfigFromEnv() (Config, error) {
	settings, found := os.LookupEnv(ConfigEnvVar)
	if !found {
		settings = DefaultConfig
	}
	cfg, err := ParseConfig(settings)
	if err != nil {
		return cfg, errors.WithMessagef(err, "invalid launch configuration %q", settings)
	}
	return cfg, nil
}

// ParseConfig parses settings on top of DefaultSettings.
//
// Settings are a list separated by ";" of "<key>=<value>", with the keys:
//
//   - threads: number of workers per launch.
//   - policy: "balanced" (or "remainder") or "last_absorbs" (or "last").
//   - parallelism: limit of concurrently running workers; 0 for sequential and -1 for unlimited.
//
// An entry "file:<path>" reads more settings from the file (a leading "~" is replaced by the home directory), one or more per line; lines starting
// with "#" are ignored. Integer values may use "_" as a digit separator, e.g. "1_024".
//
// Example: "threads=8;policy=last;parallelism=-1".
func ParseConfig(settings string) (Config, error) {
	cfg := DefaultSettings()
	if err := parseSettings(&cfg, settings, sets.Make[string]()); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// parseSettings parses a ";" separated list of settings into cfg.
// openFiles holds the absolute paths of the "file:" entries being read, to detect cycles.
func parseSettings(cfg *Config, settings string, openFiles sets.Set[string]) error {
	for _, setting := range strings.Split(settings, ";") {
		if err := parseSetting(cfg, strings.TrimSpace(setting), openFiles); err != nil {
			return err
		}
	}
	return nil
}

func parseSetting(cfg *Config, setting string, openFiles sets.Set[string]) error {
	if setting == "" {
		return nil
	}
	if fileName, found := strings.CutPrefix(setting, "file:"); found {
		filePath, err := fsutil.ReplaceTilde(fileName)
		if err != nil {
			return err
		}
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve launch settings file %q", filePath)
		}
		if openFiles.Has(absPath) {
			return errors.Errorf("recursive launch settings file %q", filePath)
		}
		openFiles.Insert(absPath)
		defer delete(openFiles, absPath)
		contents, err := os.ReadFile(filePath)
		if err != nil {
			return errors.Wrapf(err, "failed to read launch settings from file %q", filePath)
		}
		for _, line := range strings.Split(string(contents), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if err := parseSettings(cfg, line, openFiles); err != nil {
				return err
			}
		}
		return nil
	}

	key, value, found := strings.Cut(setting, "=")
	if !found {
		return errors.Errorf("can't parse launch setting %q: it requires the format \"<key>=<value>\"", setting)
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	switch strings.ToLower(key) {
	case "threads", "num_threads":
		n, err := parseInt(value)
		if err != nil {
			return errors.WithMessagef(err, "launch setting %q", setting)
		}
		cfg.NumThreads = n
	case "parallelism", "max_parallelism":
		n, err := parseInt(value)
		if err != nil {
			return errors.WithMessagef(err, "launch setting %q", setting)
		}
		cfg.MaxParallelism = n
	case "policy":
		policy, err := partition.ParsePolicy(value)
		if err != nil {
			return errors.WithMessagef(err, "launch setting %q", setting)
		}
		cfg.Policy = policy
	default:
		return errors.Errorf("unknown launch setting %q in %q, valid keys are \"threads\", \"policy\" and \"parallelism\"",
			key, setting)
	}
	return nil
}

func parseInt(value string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(value, "_", ""))
	if err != nil {
		return 0, errors.Wrapf(err, "can't parse %q as an integer", value)
	}
	return n, nil
}
