// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fsutil contains utilities for working with the file system.
package fsutil

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ReplaceTilde by the user's home directory. Returns filePath if it doesn't start with "~".
//
// It returns an error if `filePath` has an unknown user (e.g: `~unknown/...`)
func ReplaceTilde(filePath string) (string, error) {
	if filePath == "" || filePath[0] != '~' {
		return filePath, nil
	}
	var userName string
	if filePath != "~" && !strings.HasPrefix(filePath, "~/") {
		userName, _, _ = strings.Cut(filePath[1:], "/")
	}
	var usr *user.User
	var err error
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to lookup home directory for user in path %q", filePath)
	}
	return filepath.Join(usr.HomeDir, filePath[1+len(userName):]), nil
}

// PrepareOutputPath replaces a leading "~" in filePath and creates any missing parent directories.
// It returns the expanded path.
func PrepareOutputPath(filePath string) (string, error) {
	expanded, err := ReplaceTilde(filePath)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(expanded); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrapf(err, "failed to create directory for %q", filePath)
		}
	}
	return expanded, nil
}

// CreateForWriting creates (or truncates) filePath for writing, after preparing it with PrepareOutputPath.
func CreateForWriting(filePath string) (*os.File, error) {
	expanded, err := PrepareOutputPath(filePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %q", filePath)
	}
	return f, nil
}
