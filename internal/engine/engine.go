// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"
	"time"
)

type (
	// Engine is the contract a host build orchestrator drives. Each operation
	// is a single request/response cycle: the adapter derives exactly one
	// subprocess invocation per request and holds no cross-call state beyond
	// its immutable configuration.
	Engine interface {
		// Name returns the engine name (e.g. "podman").
		Name() string
		// Available reports whether the engine executable resolves and responds.
		Available(ctx context.Context) bool
		// Version returns the engine version string.
		Version(ctx context.Context) (string, error)

		// Build builds an image, streaming subprocess output to opts.Output
		// line by line as it is produced. The returned result carries the
		// subprocess's real exit code.
		Build(ctx context.Context, opts BuildOptions) (ExecutionResult, error)
		// Run starts a detached container and returns a handle to it.
		Run(ctx context.Context, opts RunOptions) (Container, error)
		// Push uploads an image to its registry, streaming progress to out.
		// If the engine was configured with credentials, Login runs first and
		// an authentication failure suppresses the push entirely.
		Push(ctx context.Context, image ImageRef, out io.Writer) (ExecutionResult, error)
		// Login authenticates against a registry. The secret is delivered on
		// the subprocess's stdin, never in the argument list.
		Login(ctx context.Context, cred Credential) (ExecutionResult, error)

		// Images lists locally available images.
		Images(ctx context.Context) ([]Image, error)
		// InspectImage returns metadata for a single image.
		InspectImage(ctx context.Context, image ImageRef) (*Image, error)
	}

	// Container is a handle to a container started by Run. Attribute accessors
	// (ExitCode, Status) reflect the state captured by the last Reload.
	Container interface {
		// ID returns the container ID.
		ID() string
		// Reload refreshes the cached container attributes.
		Reload(ctx context.Context) error
		// Logs writes the container's log output to opts.Output, following it
		// until the container exits when opts.Follow is set.
		Logs(ctx context.Context, opts LogsOptions) error
		// Stop stops the container, giving it the specified grace period.
		Stop(ctx context.Context, timeout time.Duration) error
		// Kill sends a signal to the container (e.g. "KILL", "TERM").
		Kill(ctx context.Context, signal string) error
		// Remove deletes the container.
		Remove(ctx context.Context) error
		// Wait blocks until the container exits.
		Wait(ctx context.Context) error
		// ExitCode returns the exit code from the last Reload.
		ExitCode() int
		// Status returns the container status from the last Reload.
		Status() string
	}

	// Image describes a locally stored image.
	Image struct {
		// Tags are the image's reference names, including "localhost/"-stripped
		// aliases for local names.
		Tags []string
		// Config is the image config as reported by the engine (entrypoint,
		// cmd, working dir, ...). Nil for list results.
		Config map[string]any
	}

	// ExecutionResult is the terminal outcome of a subprocess invocation.
	ExecutionResult struct {
		// ExitCode is the subprocess's real exit code.
		ExitCode int
		// Streamed reports whether output was forwarded to the caller.
		Streamed bool
	}

	// Options is the immutable engine configuration supplied by the host.
	Options struct {
		// Executable overrides the engine binary name or path. Empty means the
		// engine's default (e.g. "podman"). Resolution against PATH happens at
		// call time, not here, so environment changes between configuration
		// and execution are honored.
		Executable string
		// DefaultTransport is prepended to push destinations that carry no
		// explicit transport, e.g. "docker://".
		DefaultTransport string
		// LogLevel is passed through to the engine as --log-level when set.
		LogLevel string
		// ExtraArgs are engine-level flags inserted before the subcommand.
		ExtraArgs []string
		// Credentials, when set, are used to log in before push operations.
		Credentials *Credential
	}

	// Factory constructs an Engine from host-supplied options.
	Factory func(opts Options) (Engine, error)
)

// EngineExitCode is the exit code podman reserves for engine-level failures,
// distinguishing them from the exit code of the container itself.
const EngineExitCode = 125

// EngineErrored reports whether the result's exit code marks an engine-level
// failure rather than a failure of the build or container.
func (r ExecutionResult) EngineErrored() bool {
	return r.ExitCode == EngineExitCode
}

// Success reports whether the subprocess exited cleanly.
func (r ExecutionResult) Success() bool {
	return r.ExitCode == 0
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an engine factory available under the given name. The host
// resolves adapters by name at startup; registration normally happens in the
// implementing package's init.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("engine: Register called twice for %q", name))
	}
	registry[name] = factory
}

// New constructs the engine registered under name.
func New(name string, opts Options) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownEngineError{Name: name, Known: Names()}
	}
	return factory(opts)
}

// Names returns the registered engine names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogsOptions controls Container.Logs.
type LogsOptions struct {
	// Output receives log lines as they are produced.
	Output io.Writer
	// Follow streams logs until the container exits.
	Follow bool
	// Timestamps prefixes each line with its timestamp.
	Timestamps bool
	// Since limits output to entries after the given engine-parsable time.
	Since string
}

// Clone returns a deep copy of the options, so a configured engine cannot be
// mutated through the caller's slices.
func (o Options) Clone() Options {
	c := o
	c.ExtraArgs = slices.Clone(o.ExtraArgs)
	if o.Credentials != nil {
		cred := *o.Credentials
		c.Credentials = &cred
	}
	return c
}
