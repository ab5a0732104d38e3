// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package secrets

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

// mapStore is an in-memory Store for tests.
type mapStore map[string]string

func (m mapStore) Store(service, key, value string) error {
	m[service+"/"+key] = value
	return nil
}

func (m mapStore) Retrieve(service, key string) (string, error) {
	val, ok := m[service+"/"+key]
	if !ok {
		return "", parleyerr.Errorf(parleyerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
	}
	return val, nil
}

func (m mapStore) Delete(service, key string) error {
	delete(m, service+"/"+key)
	return nil
}

func TestParseKeyringURI(t *testing.T) {
	service, key, err := ParseKeyringURI("keyring://parley/generator-api-key")
	require.NoError(t, err)
	assert.Equal(t, "parley", service)
	assert.Equal(t, "generator-api-key", key)

	_, _, err = ParseKeyringURI("keyring://missing-key")
	require.Error(t, err)

	_, _, err = ParseKeyringURI("plain-value")
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	s := mapStore{"parley/api-key": "sk-secret"}

	val, err := Resolve(s, "keyring://parley/api-key")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", val)

	// Non-URI values pass through.
	val, err = Resolve(s, "sk-plain")
	require.NoError(t, err)
	assert.Equal(t, "sk-plain", val)

	_, err = Resolve(s, "keyring://parley/unknown")
	require.Error(t, err)
	assert.True(t, parleyerr.HasCode(err, parleyerr.CodeSecretResolveFailure))
}

func TestResolveViperSecrets(t *testing.T) {
	s := mapStore{"parley/gen": "resolved-key"}

	v := viper.New()
	v.Set("generator.api_key", "keyring://parley/gen")
	v.Set("voice.api_key", "keyring://parley/missing")
	v.Set("store.url", "redis://localhost:6379")

	ResolveViperSecrets(v, s)

	assert.Equal(t, "resolved-key", v.GetString("generator.api_key"))
	assert.Equal(t, "keyring://parley/missing", v.GetString("voice.api_key"), "unresolved URIs stay in place")
	assert.Equal(t, "redis://localhost:6379", v.GetString("store.url"))
}
