// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

// Package config loads service configuration from an optional YAML file with
// command-line flag overrides.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default configuration values.
const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultCacheTTL    = 5 * time.Minute
	DefaultTokenTTL    = time.Hour
)

// JWT configures the session token issuer.
type JWT struct {
	Key      string        `koanf:"key"`
	Issuer   string        `koanf:"issuer"`
	Audience string        `koanf:"audience"`
	TTL      time.Duration `koanf:"ttl"`
}

// Config is the full service configuration.
type Config struct {
	ListenAddr  string        `koanf:"listen_addr"`
	MetricsAddr string        `koanf:"metrics_addr"`
	LogFormat   string        `koanf:"log_format"`
	CacheTTL    time.Duration `koanf:"cache_ttl"`
	JWT         JWT           `koanf:"jwt"`
}

// Default returns a Config populated with defaults. The JWT key has no
// default; it must come from the file or a flag.
func Default() Config {
	return Config{
		ListenAddr:  DefaultListenAddr,
		MetricsAddr: DefaultMetricsAddr,
		LogFormat:   DefaultLogFormat,
		CacheTTL:    DefaultCacheTTL,
		JWT: JWT{
			Issuer:   "userdir",
			Audience: "userdir",
			TTL:      DefaultTokenTTL,
		},
	}
}

// Load merges the YAML file at path (skipped when path is empty) and the
// given flag set over the defaults. Flags win over the file.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// Flag names use dashes ("jwt-key"); config keys use underscores and
		// nesting ("jwt.key").
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			if rest, ok := strings.CutPrefix(key, "jwt-"); ok {
				return "jwt." + rest, value
			}
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen_addr is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.JWT.Key == "" {
		return oops.Code("CONFIG_INVALID").Errorf("jwt.key is required")
	}
	if c.CacheTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("cache_ttl must be positive")
	}
	if c.JWT.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("jwt.ttl must be positive")
	}
	return nil
}
