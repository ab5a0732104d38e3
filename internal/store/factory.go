// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package store

import (
	"sync"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

// Factory creates a SessionStore for a named backend.
type Factory func(cfg *Config) (SessionStore, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend. Backend
// packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// resolveBackend returns the effective backend name, defaulting to "redis".
func resolveBackend(cfg *Config) string {
	if cfg == nil || cfg.Backend == "" {
		return "redis"
	}
	return cfg.Backend
}

// New creates the session store for the configured backend.
func New(cfg *Config) (SessionStore, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, parleyerr.Errorf(parleyerr.CodeStoreBackendUnsupported,
			"unsupported storage backend: %q", backend)
	}

	return factory(cfg)
}
