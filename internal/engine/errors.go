// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEngineNotFound is the sentinel error wrapped by NotFoundError.
	ErrEngineNotFound = errors.New("engine executable not found")

	// ErrUnknownEngine is the sentinel error wrapped by UnknownEngineError.
	ErrUnknownEngine = errors.New("unknown engine")

	// ErrBuildFailed is the sentinel error wrapped by BuildError.
	ErrBuildFailed = errors.New("build failed")

	// ErrRunFailed is the sentinel error wrapped by RunError.
	ErrRunFailed = errors.New("run failed")

	// ErrPushFailed is the sentinel error wrapped by PushError.
	ErrPushFailed = errors.New("push failed")

	// ErrAuthenticationFailed is the sentinel error wrapped by AuthError.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTerminated is the sentinel error wrapped by TerminatedError.
	ErrTerminated = errors.New("terminated by caller")
)

type (
	// NotFoundError is returned when the configured engine executable cannot
	// be resolved on the command search path. Resolution happens at call time,
	// before any subprocess is spawned.
	NotFoundError struct {
		Executable string
		Cause      error
	}

	// UnknownEngineError is returned by New when no factory is registered
	// under the requested name.
	UnknownEngineError struct {
		Name  string
		Known []string
	}

	// BuildError is returned when a build subprocess exits non-zero.
	BuildError struct {
		Tag      ImageRef
		ExitCode int
		Cause    error
	}

	// RunError is returned when a run subprocess fails.
	RunError struct {
		Image    ImageRef
		ExitCode int
		Cause    error
	}

	// PushError is returned when a push subprocess fails.
	PushError struct {
		Image    ImageRef
		ExitCode int
		Cause    error
	}

	// AuthError is returned when a login subprocess exits non-zero.
	AuthError struct {
		Registry string
		ExitCode int
		Cause    error
	}

	// TerminatedError is returned when the caller cancels an in-flight
	// operation and the underlying subprocess was killed as a result.
	TerminatedError struct {
		Args  []string
		Cause error
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("engine executable %q not found: %v", e.Executable, e.Cause)
}

// Unwrap returns ErrEngineNotFound so callers can use errors.Is for detection.
func (e *NotFoundError) Unwrap() error { return ErrEngineNotFound }

// Error implements the error interface.
func (e *UnknownEngineError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown engine %q: no engines registered", e.Name)
	}
	return fmt.Sprintf("unknown engine %q (registered: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Unwrap returns ErrUnknownEngine for errors.Is() compatibility.
func (e *UnknownEngineError) Unwrap() error { return ErrUnknownEngine }

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("build of %q failed with exit code %d: %v", e.Tag, e.ExitCode, e.Cause)
	}
	return fmt.Sprintf("build failed with exit code %d: %v", e.ExitCode, e.Cause)
}

// Unwrap returns ErrBuildFailed for errors.Is() compatibility.
func (e *BuildError) Unwrap() error { return ErrBuildFailed }

// EngineErrored reports whether the failure came from the engine itself
// rather than the build (podman reserves exit code 125 for this).
func (e *BuildError) EngineErrored() bool { return e.ExitCode == EngineExitCode }

// Error implements the error interface.
func (e *RunError) Error() string {
	return fmt.Sprintf("run of %q failed with exit code %d: %v", e.Image, e.ExitCode, e.Cause)
}

// Unwrap returns ErrRunFailed for errors.Is() compatibility.
func (e *RunError) Unwrap() error { return ErrRunFailed }

// EngineErrored reports whether the failure came from the engine itself.
func (e *RunError) EngineErrored() bool { return e.ExitCode == EngineExitCode }

// Error implements the error interface.
func (e *PushError) Error() string {
	return fmt.Sprintf("push of %q failed with exit code %d: %v", e.Image, e.ExitCode, e.Cause)
}

// Unwrap returns ErrPushFailed for errors.Is() compatibility.
func (e *PushError) Unwrap() error { return ErrPushFailed }

// EngineErrored reports whether the failure came from the engine itself.
func (e *PushError) EngineErrored() bool { return e.ExitCode == EngineExitCode }

// Error implements the error interface. The credential secret is never part
// of the message.
func (e *AuthError) Error() string {
	return fmt.Sprintf("login to registry %q failed with exit code %d: %v", e.Registry, e.ExitCode, e.Cause)
}

// Unwrap returns ErrAuthenticationFailed for errors.Is() compatibility.
func (e *AuthError) Unwrap() error { return ErrAuthenticationFailed }

// Error implements the error interface.
func (e *TerminatedError) Error() string {
	return fmt.Sprintf("command %v terminated: %v", e.Args, e.Cause)
}

// Unwrap returns ErrTerminated for errors.Is() compatibility.
func (e *TerminatedError) Unwrap() error { return ErrTerminated }
