// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

// Package config loads RoleGate settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/rolegate/rolegate/internal/xdg"
)

// EnvPrefix is stripped from environment variable names before they are
// matched to configuration keys: ROLEGATE_HTTP_ADDR sets http_addr.
const EnvPrefix = "ROLEGATE_"

// DefaultEnvFile is read when present. An explicitly named env file must exist.
const DefaultEnvFile = ".env"

// Default values.
const (
	DefaultHTTPAddr        = ":3002"
	DefaultMetricsAddr     = "127.0.0.1:9102"
	DefaultLogFormat       = "json"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the resolved server configuration.
type Config struct {
	HTTPAddr        string        `koanf:"http_addr"`
	MetricsAddr     string        `koanf:"metrics_addr"`
	SecretKey       string        `koanf:"secret_key"`
	LogFormat       string        `koanf:"log_format"`
	LogLevel        string        `koanf:"log_level"`
	AccountsFile    string        `koanf:"accounts_file"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").With("key", "http_addr").Errorf("http_addr is required")
	}
	if c.SecretKey == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", "secret_key").
			Errorf("secret_key is required (set %sSECRET_KEY)", EnvPrefix)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("key", "log_format").
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("key", "shutdown_timeout").
			Errorf("shutdown_timeout must be positive")
	}
	return nil
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is an optional YAML config file. Empty means the user config
	// file under the XDG config directory, if present.
	File string
	// EnvFile is a dotenv file loaded into the process environment before
	// ROLEGATE_* variables are read. Empty means DefaultEnvFile, if present.
	EnvFile string
	// Flags, when set, override every other source for flags the user set.
	Flags *pflag.FlagSet
}

// Defaults returns the built-in configuration values keyed by koanf key.
func Defaults() map[string]any {
	return map[string]any{
		"http_addr":        DefaultHTTPAddr,
		"metrics_addr":     DefaultMetricsAddr,
		"log_format":       DefaultLogFormat,
		"log_level":        DefaultLogLevel,
		"accounts_file":    "",
		"secret_key":       "",
		"shutdown_timeout": DefaultShutdownTimeout.String(),
	}
}

// Load resolves configuration from all sources and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	for key, val := range Defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	cfgFile := opts.File
	if cfgFile == "" {
		if path, ok := xdg.ConfigFile(); ok {
			cfgFile = path
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("file", cfgFile).Wrap(err)
		}
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, flagKey(opts.Flags)), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.Code("CONFIG_LOAD_FAILED").With("env_file", path).Wrap(err)
	}
	return nil
}

// envKey maps ROLEGATE_SECRET_KEY to secret_key.
func envKey(key, value string) (string, any) {
	return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
}

// flagKey maps --secret-key to secret_key. Flags that are not configuration
// keys (such as --config) are skipped.
func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	known := Defaults()
	return func(f *pflag.Flag) (string, any) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if _, ok := known[key]; !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// RegisterFlags adds the configuration flags to fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("http-addr", DefaultHTTPAddr, "API listen address")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("secret-key", "", "token signing secret (prefer "+EnvPrefix+"SECRET_KEY)")
	fs.String("log-format", DefaultLogFormat, "log format (json or text)")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("accounts-file", "", "YAML accounts file to seed (default: built-in fixtures)")
	fs.Duration("shutdown-timeout", DefaultShutdownTimeout, "graceful shutdown timeout")
}
