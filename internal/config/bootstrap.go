// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

//go:embed parley.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/parley/parley.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", parleyerr.Errorf(parleyerr.CodeConfigLoadReadFailure,
			"resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "parley", "parley.yaml"), nil
}

// BootstrapConfig writes the default commented config to the default path if
// nothing exists there yet. Failures are logged and skipped; a missing
// default config is never fatal.
func BootstrapConfig() string {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		slog.Debug("skipping config bootstrap", "error", err)
		return ""
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return ""
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return ""
	}

	if err := os.WriteFile(cfgPath, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", cfgPath, "error", err)
		return ""
	}

	slog.Info("created default config", "path", cfgPath)
	return cfgPath
}
