// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config provides configuration loading, merging, and persistence
// helpers for Keygate. It uses Viper for file/env/flag parsing and exposes
// utility functions to read/write configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Listen   string         `mapstructure:"listen" yaml:"listen"`
	Defaults Defaults       `mapstructure:"defaults" yaml:"defaults"`
	Debug    bool           `mapstructure:"debug" yaml:"debug"`
}

// DatabaseConfig selects the key-store backend.
type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	DSN  string `mapstructure:"dsn" yaml:"dsn"`
}

// Defaults carries the caller-configurable default values the gateway fills
// into requests that omit optional parameters. It is passed around as an
// explicit handle; there is no implicit global lookup.
//
// Algorithm ids are RFC 4880 ids (9 = AES-256, 8 = SHA-256, 2 = ZLIB).
type Defaults struct {
	EncryptionAlgo int  `mapstructure:"encryption_algo" yaml:"encryption_algo"`
	HashAlgo       int  `mapstructure:"hash_algo" yaml:"hash_algo"`
	Armored        bool `mapstructure:"armored" yaml:"armored"`
	ForceV3Sig     bool `mapstructure:"force_v3_sig" yaml:"force_v3_sig"`
	Compression    int  `mapstructure:"compression" yaml:"compression"`
}

// DefaultEncryptionAlgorithm returns the default symmetric cipher id.
func (d Defaults) DefaultEncryptionAlgorithm() int { return d.EncryptionAlgo }

// DefaultHashAlgorithm returns the default hash algorithm id.
func (d Defaults) DefaultHashAlgorithm() int { return d.HashAlgo }

// DefaultASCIIArmor reports whether output is armored by default.
func (d Defaults) DefaultASCIIArmor() bool { return d.Armored }

// ForceV3Signatures reports whether legacy v3 signatures are forced.
func (d Defaults) ForceV3Signatures() bool { return d.ForceV3Sig }

// DefaultMessageCompression returns the default compression algorithm id.
func (d Defaults) DefaultMessageCompression() int { return d.Compression }

// FlatDefaults returns the viper default map for a fresh configuration.
// Armor defaults to on so the result payload is always text-safe.
func FlatDefaults() map[string]any {
	return map[string]any{
		"database.type":            "sqlite",
		"database.dsn":             "./keygate.db",
		"listen":                   "127.0.0.1:8632",
		"defaults.encryption_algo": 9, // AES-256
		"defaults.hash_algo":       8, // SHA-256
		"defaults.armored":         true,
		"defaults.force_v3_sig":    false,
		"defaults.compression":     2, // ZLIB
	}
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Keygate")
		default: // Linux, macOS, etc.
			configDir = "/etc/keygate"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "keygate")
	}

	return filepath.Join(configDir, "keygate.yaml"), nil
}

// LoadConfig builds a configuration of type T from defaults, config files,
// environment variables (KEYGATE_ prefix) and the command's flags, in that
// precedence order.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keygate")
	v.SetConfigType("yaml")

	// An explicit --config path has the highest precedence for file-based
	// configuration.
	if additionalConfigFilePath != nil {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for keygate.yaml in current dir

	if err := v.ReadInConfig(); err != nil {
		// It's okay if the file is not found, but other errors are fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("keygate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// WriteConfigFile persists the configuration as YAML at the standard
// location.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600 since the config may contain a DSN with credentials.
	err = os.WriteFile(path, data, 0600)
	if err != nil {
		return err
	}

	return nil
}
