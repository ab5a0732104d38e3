// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parley.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  url: "redis://localhost:6379"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8790", cfg.Server.Listen)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Store.SessionTTL)
	assert.Equal(t, 3, cfg.Store.RetryAttempts)
	assert.Equal(t, time.Second, cfg.Store.RetryBaseDelay)
	assert.Equal(t, "deepseek", cfg.Generator.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: "0.0.0.0:9000"
  cors_origins:
    - "https://app.example.com"
  secure_cookies: true
store:
  backend: sqlite
  path: "/tmp/parley.db"
  session_ttl: 1h
generator:
  provider: anthropic
  api_key: "sk-test"
  model: "claude-sonnet-4-5"
voice:
  api_key: "lf-test"
  default_voice: nova
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Listen)
	assert.True(t, cfg.Server.SecureCookies)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, time.Hour, cfg.Store.SessionTTL)
	assert.Equal(t, "anthropic", cfg.Generator.Provider)
	assert.Equal(t, "nova", cfg.Voice.DefaultVoice)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	require.Error(t, err)
}

func TestValidateListen(t *testing.T) {
	tests := []struct {
		name   string
		listen string
		valid  bool
	}{
		{"valid", "127.0.0.1:8790", true},
		{"port only", ":8080", true},
		{"empty", "", false},
		{"no port", "localhost", false},
		{"bad port", "localhost:notaport", false},
		{"port out of range", "localhost:70000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Listen = tt.listen
			errs := cfg.Validate()
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestValidateStore(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Backend = "etcd"
	assert.NotEmpty(t, cfg.Validate())

	cfg = validConfig()
	cfg.Store.Backend = "redis"
	cfg.Store.URL = ""
	assert.NotEmpty(t, cfg.Validate(), "redis backend requires a url")

	cfg = validConfig()
	cfg.Store.URL = "http://localhost:6379"
	assert.NotEmpty(t, cfg.Validate(), "url scheme must be redis or rediss")

	cfg = validConfig()
	cfg.Store.Backend = "sqlite"
	cfg.Store.URL = ""
	assert.NotEmpty(t, cfg.Validate(), "sqlite backend requires a path")
	cfg.Store.Path = "/tmp/parley.db"
	assert.Empty(t, cfg.Validate())

	cfg = validConfig()
	cfg.Store.Backend = "memory"
	cfg.Store.URL = ""
	assert.Empty(t, cfg.Validate())
}

func TestValidateGenerator(t *testing.T) {
	cfg := validConfig()
	cfg.Generator.Provider = "mistral"
	assert.NotEmpty(t, cfg.Validate())

	cfg = validConfig()
	cfg.Generator.Temperature = 3.5
	assert.NotEmpty(t, cfg.Validate())
}

func TestValidateLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.NotEmpty(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logging.Format = "xml"
	assert.NotEmpty(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Listen = ""
	cfg.Store.Backend = "etcd"
	cfg.Logging.Level = "loud"

	errs := cfg.Validate()
	assert.GreaterOrEqual(t, len(errs), 3)
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Listen: "127.0.0.1:8790"},
		Store: StoreConfig{
			Backend: "redis",
			URL:     "redis://localhost:6379",
		},
		Generator: GeneratorConfig{Provider: "deepseek"},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}
