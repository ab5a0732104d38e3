// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func TestNewMemoryBackend(t *testing.T) {
	s, err := New(&Config{Backend: "memory"})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())
}

func TestNewUnsupportedBackend(t *testing.T) {
	_, err := New(&Config{Backend: "etcd"})
	require.Error(t, err)
	assert.True(t, parleyerr.HasCode(err, parleyerr.CodeStoreBackendUnsupported))
}

func TestResolveBackendDefaultsToRedis(t *testing.T) {
	assert.Equal(t, "redis", resolveBackend(nil))
	assert.Equal(t, "redis", resolveBackend(&Config{}))
	assert.Equal(t, "memory", resolveBackend(&Config{Backend: "memory"}))
}

func TestConfigTTL(t *testing.T) {
	var nilCfg *Config
	assert.Equal(t, DefaultSessionTTL, nilCfg.TTL())
	assert.Equal(t, DefaultSessionTTL, (&Config{}).TTL())
	assert.Equal(t, time.Hour, (&Config{SessionTTL: time.Hour}).TTL())
}
