// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package secrets keeps provider credentials out of config files. Values in
// the config may use keyring://service/key URIs, resolved against the OS
// keyring at load time.
package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

// Store is the secret storage contract. The default implementation uses the
// OS keyring; tests substitute an in-memory map.
type Store interface {
	// Store saves value under service/key.
	Store(service, key, value string) error

	// Retrieve fetches the value for service/key, failing with a
	// not-found code when absent.
	Retrieve(service, key string) (string, error)

	// Delete removes service/key, failing with a not-found code when
	// absent.
	Delete(service, key string) error
}

// Compile-time interface check.
var _ Store = (*KeyringStore)(nil)

// KeyringStore stores secrets in the OS keyring: Keychain on macOS,
// secret-service on Linux, Credential Manager on Windows.
type KeyringStore struct{}

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Store(service, key, value string) error {
	if err := validate(service, key); err != nil {
		return err
	}
	if err := keyring.Set(service, key, value); err != nil {
		return parleyerr.Wrapf(err, parleyerr.CodeSecretStoreFailure,
			"storing secret %s/%s", service, key)
	}
	return nil
}

func (s *KeyringStore) Retrieve(service, key string) (string, error) {
	if err := validate(service, key); err != nil {
		return "", err
	}
	val, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", parleyerr.Errorf(parleyerr.CodeSecretNotFound,
			"secret %s/%s not found", service, key)
	}
	if err != nil {
		return "", parleyerr.Wrapf(err, parleyerr.CodeSecretStoreFailure,
			"retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := validate(service, key); err != nil {
		return err
	}
	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return parleyerr.Errorf(parleyerr.CodeSecretNotFound,
			"secret %s/%s not found", service, key)
	}
	if err != nil {
		return parleyerr.Wrapf(err, parleyerr.CodeSecretDeleteFailure,
			"deleting secret %s/%s", service, key)
	}
	return nil
}

func validate(service, key string) error {
	if service == "" || key == "" {
		return parleyerr.New(parleyerr.CodeSecretInvalidInput,
			"secret service and key must not be empty")
	}
	return nil
}
