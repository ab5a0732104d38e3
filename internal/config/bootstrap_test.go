// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigYAMLIsValid(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(DefaultConfigYAML, &doc))

	for _, section := range []string{"server", "store", "generator", "voice", "logging"} {
		assert.Contains(t, doc, section)
	}
}

func TestDefaultConfigYAMLMatchesDefaults(t *testing.T) {
	assert.Contains(t, string(DefaultConfigYAML), "127.0.0.1:8790")
	assert.Contains(t, string(DefaultConfigYAML), "deepseek")
	assert.Contains(t, string(DefaultConfigYAML), "redis")
}
