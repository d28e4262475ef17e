// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidEngineName is the sentinel error wrapped by InvalidEngineNameError.
	ErrInvalidEngineName = errors.New("invalid engine name")

	// ErrInvalidTransport is the sentinel error wrapped by InvalidTransportError.
	ErrInvalidTransport = errors.New("invalid transport")

	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// EngineName selects a registered engine adapter.
	EngineName string

	// InvalidEngineNameError is returned when an EngineName is empty or
	// whitespace-only.
	InvalidEngineNameError struct {
		Value EngineName
	}

	// Transport is an image transport protocol prefix such as "docker://".
	// The zero value is valid and means the engine default.
	Transport string

	// InvalidTransportError is returned when a Transport does not end in "://".
	InvalidTransportError struct {
		Value Transport
	}

	// RegistryConfig identifies the registry account used for push
	// operations. The secret deliberately has no field here; it is read from
	// the REPO2PODMAN_REGISTRY_SECRET environment variable at load time so it
	// never lands in a config file.
	RegistryConfig struct {
		// Host is the registry host (e.g. "quay.io").
		Host string `mapstructure:"host"`
		// Username is the account name.
		Username string `mapstructure:"username"`
	}

	// Config is the application configuration.
	Config struct {
		// Engine is the registered engine adapter to use.
		Engine EngineName `mapstructure:"engine"`
		// Executable overrides the engine binary name or path.
		Executable string `mapstructure:"executable"`
		// DefaultTransport is prepended to push destinations without an
		// explicit transport.
		DefaultTransport Transport `mapstructure:"default_transport"`
		// Platform is the default build target platform.
		Platform string `mapstructure:"platform"`
		// EngineLogLevel is passed to the engine as --log-level when set.
		EngineLogLevel string `mapstructure:"engine_log_level"`
		// ExtraArgs are engine-level flags inserted before every subcommand.
		ExtraArgs []string `mapstructure:"extra_args"`
		// Verbose enables debug output.
		Verbose bool `mapstructure:"verbose"`
		// Registry configures push credentials.
		Registry RegistryConfig `mapstructure:"registry"`
	}

	// InvalidConfigError aggregates the field validation errors of a Config.
	InvalidConfigError struct {
		FieldErrs []error
	}
)

// String returns the string representation of the EngineName.
func (n EngineName) String() string { return string(n) }

// Validate returns an error if the EngineName is empty or whitespace-only.
func (n EngineName) Validate() error {
	if strings.TrimSpace(string(n)) == "" {
		return &InvalidEngineNameError{Value: n}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidEngineNameError) Error() string {
	return fmt.Sprintf("invalid engine name %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidEngineName for errors.Is() compatibility.
func (e *InvalidEngineNameError) Unwrap() error { return ErrInvalidEngineName }

// String returns the string representation of the Transport.
func (t Transport) String() string { return string(t) }

// Validate returns an error if the Transport is set but does not end in
// "://". The zero value is valid.
func (t Transport) Validate() error {
	if t == "" {
		return nil
	}
	if !strings.HasSuffix(string(t), "://") {
		return &InvalidTransportError{Value: t}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidTransportError) Error() string {
	return fmt.Sprintf("invalid transport %q: must end in \"://\"", e.Value)
}

// Unwrap returns ErrInvalidTransport for errors.Is() compatibility.
func (e *InvalidTransportError) Unwrap() error { return ErrInvalidTransport }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrs))
}

// Unwrap returns ErrInvalidConfig plus the field errors, so errors.Is can
// match both the aggregate sentinel and the individual field sentinels.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrs...)
}

// Validate returns an error if any typed field of the Config is invalid.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.DefaultTransport.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrs: errs}
	}
	return nil
}
