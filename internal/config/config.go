// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package config loads and validates the Parley configuration from YAML,
// environment variables (prefix PARLEY_) and defaults.
package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

// Config is the top-level Parley configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Voice     VoiceConfig     `mapstructure:"voice"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects and tunes the session store backend.
type StoreConfig struct {
	Backend        string        `mapstructure:"backend"`
	URL            string        `mapstructure:"url"`
	Path           string        `mapstructure:"path"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// GeneratorConfig holds the question generation provider settings. APIKey
// may be a keyring:// URI; it is resolved before use.
type GeneratorConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// VoiceConfig holds the optional voice provider settings. An empty APIKey
// leaves voice endpoints answering not-configured.
type VoiceConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	SpeechModel     string `mapstructure:"speech_model"`
	TranscribeModel string `mapstructure:"transcribe_model"`
	DefaultVoice    string `mapstructure:"default_voice"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path (optional) with environment overrides.
func Load(path string) (*Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, parleyerr.Errorf(parleyerr.CodeConfigLoadReadFailure,
				"reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// NewViper returns a viper instance with Parley defaults and env binding,
// without reading any file. cmd wiring uses this so secret resolution can
// run between read and unmarshal.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.listen", "127.0.0.1:8790")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("store.backend", "redis")
	v.SetDefault("store.session_ttl", 24*time.Hour)
	v.SetDefault("store.retry_attempts", 3)
	v.SetDefault("store.retry_base_delay", time.Second)
	v.SetDefault("store.connect_timeout", 5*time.Second)
	v.SetDefault("generator.provider", "deepseek")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetEnvPrefix("PARLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// FromViper unmarshals and validates a loaded viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"validating config: %w", errors.Join(errs...))
	}
	return &cfg, nil
}

// Validate collects all logical errors in the configuration rather than
// stopping at the first.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStore()...)
	errs = append(errs, c.validateGenerator()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: server.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err))
		return errs
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) validateStore() []error {
	var errs []error

	switch c.Store.Backend {
	case "redis":
		if c.Store.URL == "" {
			errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
				"config: store.url is required for the redis backend"))
		} else if !strings.HasPrefix(c.Store.URL, "redis://") && !strings.HasPrefix(c.Store.URL, "rediss://") {
			errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
				"config: store.url must use the redis:// or rediss:// scheme, got %q", c.Store.URL))
		}
	case "sqlite":
		if c.Store.Path == "" {
			errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
				"config: store.path is required for the sqlite backend"))
		}
	case "memory":
	default:
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: store.backend must be one of [redis, sqlite, memory], got %q", c.Store.Backend))
	}

	if c.Store.SessionTTL < 0 {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: store.session_ttl must not be negative, got %s", c.Store.SessionTTL))
	}
	if c.Store.RetryAttempts < 0 {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: store.retry_attempts must not be negative, got %d", c.Store.RetryAttempts))
	}

	return errs
}

func (c *Config) validateGenerator() []error {
	var errs []error

	validProviders := map[string]bool{"deepseek": true, "openai": true, "anthropic": true, "google": true}
	if !validProviders[c.Generator.Provider] {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: generator.provider must be one of [deepseek, openai, anthropic, google], got %q",
			c.Generator.Provider))
	}

	if c.Generator.Temperature < 0 || c.Generator.Temperature > 2 {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: generator.temperature must be between 0 and 2, got %g", c.Generator.Temperature))
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, parleyerr.Errorf(parleyerr.CodeConfigValidateInvalidValue,
			"config: logging.format must be one of [text, json], got %q", c.Logging.Format))
	}

	return errs
}
