// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package secrets

import (
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

const keyringScheme = "keyring://"

// IsKeyringURI reports whether value uses the keyring:// scheme.
func IsKeyringURI(value string) bool {
	return strings.HasPrefix(value, keyringScheme)
}

// ParseKeyringURI splits keyring://service/key into its parts.
func ParseKeyringURI(uri string) (service, key string, err error) {
	if !IsKeyringURI(uri) {
		return "", "", parleyerr.Errorf(parleyerr.CodeSecretInvalidInput,
			"not a keyring URI: %q", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, keyringScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", parleyerr.Errorf(parleyerr.CodeSecretInvalidInput,
			"invalid keyring URI %q: expected keyring://service/key", uri)
	}
	return parts[0], parts[1], nil
}

// Resolve turns a keyring URI into its secret value. Non-URI values pass
// through unchanged.
func Resolve(store Store, value string) (string, error) {
	if !IsKeyringURI(value) {
		return value, nil
	}

	service, key, err := ParseKeyringURI(value)
	if err != nil {
		return "", err
	}

	secret, err := store.Retrieve(service, key)
	if err != nil {
		return "", parleyerr.Wrapf(err, parleyerr.CodeSecretResolveFailure,
			"resolving keyring URI %q", value)
	}
	return secret, nil
}

// ResolveViperSecrets rewrites every keyring:// string value in v with its
// resolved secret, after the config is loaded. A failed resolution keeps the
// URI in place and logs a warning; the error surfaces when the value is
// actually used.
func ResolveViperSecrets(v *viper.Viper, store Store) {
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if !IsKeyringURI(val) {
			continue
		}

		resolved, err := Resolve(store, val)
		if err != nil {
			slog.Warn("keyring URI did not resolve, keeping original value",
				"config_key", key, "error", err)
			continue
		}
		v.Set(key, resolved)
	}
}
