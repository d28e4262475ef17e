// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"repo2podman/internal/engine"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "repo2podman"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "REPO2PODMAN"
	// RegistrySecretEnv is the only source for the registry secret; it is
	// never read from, or written to, the config file.
	RegistrySecretEnv = "REPO2PODMAN_REGISTRY_SECRET"
)

// configDirOverride allows tests to redirect the config directory.
var configDirOverride string

// SetConfigDirOverride overrides the config directory. Pass "" to restore
// platform resolution. Intended for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// ConfigDir returns the repo2podman configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the full path of the config file.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine:           "podman",
		DefaultTransport: "docker://",
	}
}

// Load reads the configuration from the config file (if present) overlaid
// with REPO2PODMAN_-prefixed environment variables. A missing config file is
// not an error; the defaults apply.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path means the
// platform default location.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("engine", string(defaults.Engine))
	v.SetDefault("executable", defaults.Executable)
	v.SetDefault("default_transport", string(defaults.DefaultTransport))
	v.SetDefault("platform", defaults.Platform)
	v.SetDefault("engine_log_level", defaults.EngineLogLevel)
	v.SetDefault("extra_args", defaults.ExtraArgs)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("registry.host", defaults.Registry.Host)
	v.SetDefault("registry.username", defaults.Registry.Username)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to the platform config file
// path, creating the directory if needed. Returns the written path. Fails if
// the file already exists.
func WriteDefault() (string, error) {
	path, err := ConfigFilePath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file %s already exists", path)
	}

	data, err := toml.Marshal(defaultConfigFile())
	if err != nil {
		return "", fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// defaultConfigFile is the TOML shape of the default config. Kept separate
// from Config so the written file uses file-format field names.
func defaultConfigFile() map[string]any {
	defaults := DefaultConfig()
	return map[string]any{
		"engine":            string(defaults.Engine),
		"executable":        defaults.Executable,
		"default_transport": string(defaults.DefaultTransport),
		"platform":          defaults.Platform,
		"engine_log_level":  defaults.EngineLogLevel,
		"verbose":           defaults.Verbose,
		"registry": map[string]any{
			"host":     defaults.Registry.Host,
			"username": defaults.Registry.Username,
		},
	}
}

// Credentials returns the registry credential assembled from the config and
// the REPO2PODMAN_REGISTRY_SECRET environment variable, or nil when the
// registry is not fully configured.
func (c *Config) Credentials() *engine.Credential {
	secret := os.Getenv(RegistrySecretEnv)
	if c.Registry.Host == "" || c.Registry.Username == "" || secret == "" {
		return nil
	}
	return &engine.Credential{
		Registry: c.Registry.Host,
		Username: c.Registry.Username,
		Secret:   secret,
	}
}

// EngineOptions maps the config onto the options an engine factory consumes.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		Executable:       c.Executable,
		DefaultTransport: string(c.DefaultTransport),
		LogLevel:         c.EngineLogLevel,
		ExtraArgs:        c.ExtraArgs,
		Credentials:      c.Credentials(),
	}
}
