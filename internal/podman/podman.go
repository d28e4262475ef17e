// SPDX-License-Identifier: MPL-2.0

package podman

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"repo2podman/internal/engine"
)

const (
	// EngineName is the name this adapter registers under.
	EngineName = "podman"

	// DefaultExecutable is the engine binary used when no override is
	// configured. Compatible CLIs (nerdctl, podman-remote, docker) can be
	// substituted via engine.Options.Executable.
	DefaultExecutable = "podman"

	// DefaultTransport is prepended to push destinations that carry no
	// explicit transport protocol.
	DefaultTransport = "docker://"
)

// transportPattern matches image specs that already carry a transport,
// e.g. "docker://quay.io/org/image:tag" or "oci-archive://out/image.tar".
var transportPattern = regexp.MustCompile(`^[a-zA-Z][\w-]*://`)

// Engine drives a podman-compatible CLI as a subprocess. It holds no mutable
// state beyond its immutable configuration, so concurrent operations are safe;
// each invocation owns its own subprocess and output stream.
type Engine struct {
	executable       string
	defaultTransport string
	logLevel         string
	extraArgs        []string
	credentials      *engine.Credential

	execCommand ExecCommandFunc
	lookPath    LookPathFunc
	logger      *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(e *Engine) {
		e.execCommand = fn
	}
}

// WithLookPath sets a custom executable resolver for testing.
func WithLookPath(fn LookPathFunc) Option {
	return func(e *Engine) {
		e.lookPath = fn
	}
}

// WithLogger sets the logger used for command traces.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates a podman engine from host-supplied options. No subprocess is
// spawned and no executable is resolved here; resolution happens per call.
func New(opts engine.Options, engineOpts ...Option) *Engine {
	opts = opts.Clone()

	e := &Engine{
		executable:       opts.Executable,
		defaultTransport: opts.DefaultTransport,
		logLevel:         opts.LogLevel,
		extraArgs:        opts.ExtraArgs,
		credentials:      opts.Credentials,
		execCommand:      exec.CommandContext,
		lookPath:         exec.LookPath,
		logger:           log.Default().WithPrefix(EngineName),
	}
	if e.executable == "" {
		e.executable = DefaultExecutable
	}
	if e.defaultTransport == "" {
		e.defaultTransport = DefaultTransport
	}
	for _, opt := range engineOpts {
		opt(e)
	}
	return e
}

func init() {
	engine.Register(EngineName, func(opts engine.Options) (engine.Engine, error) {
		return New(opts), nil
	})
}

// Name returns the engine name.
func (e *Engine) Name() string {
	return EngineName
}

// Executable returns the configured engine binary name or path.
func (e *Engine) Executable() string {
	return e.executable
}

// Available reports whether the executable resolves and responds to a
// version query.
func (e *Engine) Available(ctx context.Context) bool {
	if _, err := e.resolve(); err != nil {
		return false
	}
	_, _, err := e.capture(ctx, nil, "version", "--format", "{{.Version}}")
	return err == nil
}

// Version returns the engine version.
func (e *Engine) Version(ctx context.Context) (string, error) {
	lines, _, err := e.capture(ctx, nil, "version", "--format", "{{.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", e.executable, err)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// Build builds an image, streaming subprocess output to opts.Output line by
// line. The result carries the subprocess's real exit code; a non-zero exit
// yields a *engine.BuildError and is never retried.
func (e *Engine) Build(ctx context.Context, opts engine.BuildOptions) (engine.ExecutionResult, error) {
	if err := opts.Validate(); err != nil {
		return engine.ExecutionResult{ExitCode: -1}, err
	}

	args, err := buildArgs(opts)
	if err != nil {
		return engine.ExecutionResult{ExitCode: -1}, err
	}

	result, err := e.stream(ctx, nil, opts.Output, args...)
	if err != nil {
		if passthrough(err) {
			return result, err
		}
		return result, &engine.BuildError{Tag: opts.Tag, ExitCode: result.ExitCode, Cause: err}
	}
	return result, nil
}

// Run starts a detached container and returns a handle to it. The container
// ID is parsed from the subprocess's last output line; earlier lines may be
// pull progress when the image was not already present.
func (e *Engine) Run(ctx context.Context, opts engine.RunOptions) (engine.Container, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	lines, result, err := e.capture(ctx, nil, e.runArgs(opts)...)
	if err != nil {
		if passthrough(err) {
			return nil, err
		}
		return nil, &engine.RunError{Image: opts.Image, ExitCode: result.ExitCode, Cause: err}
	}

	id := lastNonEmpty(lines)
	if id == "" {
		return nil, &engine.RunError{
			Image:    opts.Image,
			ExitCode: result.ExitCode,
			Cause:    errors.New("no container id in run output"),
		}
	}

	// If remove was requested and the container exits immediately, this
	// reload can race with the removal.
	container := &Container{id: id, engine: e}
	if err := container.Reload(ctx); err != nil {
		return nil, err
	}
	return container, nil
}

// Push uploads an image to its registry. Destinations without an explicit
// transport are normalized ("x:1" becomes "docker://docker.io/library/x:1")
// using the configured default transport. If credentials are configured,
// Login runs first; its failure aborts the push before any subprocess spawns.
func (e *Engine) Push(ctx context.Context, image engine.ImageRef, out io.Writer) (engine.ExecutionResult, error) {
	destination := string(image)
	if !transportPattern.MatchString(destination) {
		normalized, err := image.Normalized()
		if err != nil {
			return engine.ExecutionResult{ExitCode: -1}, err
		}
		destination = e.defaultTransport + normalized
	}

	if e.credentials != nil {
		if result, err := e.Login(ctx, *e.credentials); err != nil {
			return result, err
		}
	}

	result, err := e.stream(ctx, nil, out, "push", string(image), destination)
	if err != nil {
		if passthrough(err) {
			return result, err
		}
		return result, &engine.PushError{Image: image, ExitCode: result.ExitCode, Cause: err}
	}
	return result, nil
}

// Login authenticates against a registry. The secret is delivered on the
// subprocess's stdin only.
func (e *Engine) Login(ctx context.Context, cred engine.Credential) (engine.ExecutionResult, error) {
	if err := cred.Validate(); err != nil {
		return engine.ExecutionResult{ExitCode: -1}, err
	}

	e.logger.Debug("logging in", "registry", cred.Registry, "username", cred.Username)

	lines, result, err := e.capture(ctx, strings.NewReader(cred.Secret), loginArgs(cred)...)
	if err != nil {
		if passthrough(err) {
			return result, err
		}
		return result, &engine.AuthError{Registry: cred.Registry, ExitCode: result.ExitCode, Cause: err}
	}
	for _, line := range lines {
		e.logger.Debug("login", "output", line)
	}
	return result, nil
}

// Images lists locally available images. Local "localhost/"-prefixed names
// get an additional stripped alias so callers can match unqualified tags.
func (e *Engine) Images(ctx context.Context) ([]engine.Image, error) {
	lines, _, err := e.capture(ctx, nil, "image", "list", "--format", "json")
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	entries, err := parseImageList(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to parse image list: %w", err)
	}

	images := make([]engine.Image, 0, len(entries))
	for _, entry := range entries {
		// Images without names are skipped (dangling layers).
		if len(entry.Names) == 0 {
			continue
		}
		images = append(images, engine.Image{Tags: expandLocalAliases(entry.Names)})
	}
	return images, nil
}

// InspectImage returns metadata for a single image. WorkingDir defaults to
// "/" when the engine reports none, since hosts rely on it being set.
func (e *Engine) InspectImage(ctx context.Context, image engine.ImageRef) (*engine.Image, error) {
	lines, _, err := e.capture(ctx, nil, "inspect", "--type", "image", "--format", "json", string(image))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect image %q: %w", image, err)
	}

	details, err := parseInspect(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to parse inspect output for %q: %w", image, err)
	}

	config := details.Config
	if config == nil {
		config = map[string]any{}
	}
	if _, ok := config["WorkingDir"]; !ok {
		config["WorkingDir"] = "/"
	}

	return &engine.Image{Tags: details.RepoTags, Config: config}, nil
}

// lastNonEmpty returns the last non-blank line, trimmed.
func lastNonEmpty(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// expandLocalAliases yields each tag plus, for "localhost/" names, the
// unqualified alias.
func expandLocalAliases(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag)
		if stripped, ok := strings.CutPrefix(tag, "localhost/"); ok {
			out = append(out, stripped)
		}
	}
	return out
}
