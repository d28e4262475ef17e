// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
)

var (
	// ErrInvalidImageRef is the sentinel error wrapped by InvalidImageRefError.
	ErrInvalidImageRef = errors.New("invalid image reference")

	// ErrInvalidBuildContext is the sentinel error wrapped by InvalidBuildContextError.
	ErrInvalidBuildContext = errors.New("invalid build context")

	// ErrInvalidDockerfile is the sentinel error wrapped by InvalidDockerfileError.
	ErrInvalidDockerfile = errors.New("invalid dockerfile path")

	// ErrInvalidCredential is the sentinel error wrapped by InvalidCredentialError.
	ErrInvalidCredential = errors.New("invalid registry credential")
)

type (
	// ImageRef is an image reference in name[:tag] form.
	// The zero value ("") is valid where the reference is optional.
	ImageRef string

	// InvalidImageRefError is returned when an ImageRef does not parse as a
	// normalized image reference.
	InvalidImageRefError struct {
		Value ImageRef
		Cause error
	}

	// KeyValue is an ordered key-value pair for build args and labels.
	// Ordered slices are used instead of maps so the derived argument list is
	// deterministic, which matters for build cache behavior.
	KeyValue struct {
		Key   string
		Value string
	}

	// Limits are resource limits applied to the build container. Values are
	// strings because the engine accepts unit suffixes (e.g. "512m").
	Limits struct {
		// CPUSetCPUs pins the build to specific CPUs ("0-3", "0,1").
		CPUSetCPUs string
		// CPUShares is the relative CPU weight.
		CPUShares string
		// Memory is the memory limit.
		Memory string
		// MemorySwap is the total memory-plus-swap limit.
		MemorySwap string
	}

	// BuildOptions describes a single image build. It is consumed once;
	// the derived invocation's argument order is deterministic.
	BuildOptions struct {
		// Tag is the target image reference (name:tag).
		Tag ImageRef
		// ContextDir is the build context directory. Must exist and be readable.
		ContextDir string
		// Dockerfile is the Dockerfile path, resolved relative to ContextDir
		// when not absolute.
		Dockerfile string
		// BuildArgs are build-time variables, emitted in the order given.
		BuildArgs []KeyValue
		// Platform is the target platform (e.g. "linux/arm64"). When empty no
		// platform flag is emitted at all.
		Platform string
		// CacheFrom names images to reuse cached layers from. One --cache-from
		// flag is emitted per entry, preserving input order.
		CacheFrom []ImageRef
		// Labels are extra image labels, emitted in the order given.
		Labels []KeyValue
		// Limits are resource limits for the build.
		Limits Limits
		// Output receives build output lines as they are produced.
		Output io.Writer
	}

	// InvalidBuildContextError is returned when the build context directory
	// does not exist or is not a directory.
	InvalidBuildContextError struct {
		Path  string
		Cause error
	}

	// InvalidDockerfileError is returned when the Dockerfile cannot be
	// resolved within the build context.
	InvalidDockerfileError struct {
		Path  string
		Cause error
	}

	// RunOptions describes a single container run.
	RunOptions struct {
		// Image is the image to run.
		Image ImageRef
		// Command is the command and arguments to execute in the container.
		// Empty means the image default.
		Command []string
		// Env entries are passed through as --env, in the order given.
		Env []string
		// Ports are "host:container" publish mappings, in the order given.
		Ports []string
		// PublishAll publishes all exposed ports to random host ports.
		PublishAll bool
		// Volumes are "host:container[:options]" bind mounts.
		Volumes []string
		// Remove deletes the container when it exits.
		Remove bool
	}

	// Credential authenticates against a registry. The Secret is held only
	// long enough to be written to the login subprocess's stdin; it is never
	// placed in an argument list and never persisted.
	Credential struct {
		// Registry is the registry host (e.g. "quay.io").
		Registry string
		// Username is the account name.
		Username string
		// Secret is the password or token.
		Secret string
	}

	// InvalidCredentialError is returned when a Credential is missing
	// required fields.
	InvalidCredentialError struct {
		Registry  string
		FieldErrs []error
	}
)

// Error implements the error interface.
func (e *InvalidImageRefError) Error() string {
	return fmt.Sprintf("invalid image reference %q: %v", e.Value, e.Cause)
}

// Unwrap returns ErrInvalidImageRef so callers can use errors.Is for detection.
func (e *InvalidImageRefError) Unwrap() error { return ErrInvalidImageRef }

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }

// Validate returns an error if the ImageRef does not parse as a normalized
// image reference. The zero value is valid.
func (r ImageRef) Validate() error {
	if r == "" {
		return nil
	}
	if _, err := reference.ParseNormalizedNamed(string(r)); err != nil {
		return &InvalidImageRefError{Value: r, Cause: err}
	}
	return nil
}

// Normalized returns the fully normalized form of the reference
// ("x:1" becomes "docker.io/library/x:1"), adding :latest when no tag is set.
func (r ImageRef) Normalized() (string, error) {
	named, err := reference.ParseNormalizedNamed(string(r))
	if err != nil {
		return "", &InvalidImageRefError{Value: r, Cause: err}
	}
	return reference.TagNameOnly(named).String(), nil
}

// String returns the pair in "key=value" form.
func (kv KeyValue) String() string { return kv.Key + "=" + kv.Value }

// Error implements the error interface.
func (e *InvalidBuildContextError) Error() string {
	return fmt.Sprintf("invalid build context %q: %v", e.Path, e.Cause)
}

// Unwrap returns ErrInvalidBuildContext for errors.Is() compatibility.
func (e *InvalidBuildContextError) Unwrap() error { return ErrInvalidBuildContext }

// Error implements the error interface.
func (e *InvalidDockerfileError) Error() string {
	return fmt.Sprintf("invalid dockerfile path %q: %v", e.Path, e.Cause)
}

// Unwrap returns ErrInvalidDockerfile for errors.Is() compatibility.
func (e *InvalidDockerfileError) Unwrap() error { return ErrInvalidDockerfile }

// Validate checks that the build context exists, the Dockerfile is resolvable,
// and the tag and cache sources parse as image references.
func (o BuildOptions) Validate() error {
	var errs []error

	if o.ContextDir == "" {
		errs = append(errs, &InvalidBuildContextError{Path: o.ContextDir, Cause: errors.New("must be non-empty")})
	} else if info, err := os.Stat(o.ContextDir); err != nil {
		errs = append(errs, &InvalidBuildContextError{Path: o.ContextDir, Cause: err})
	} else if !info.IsDir() {
		errs = append(errs, &InvalidBuildContextError{Path: o.ContextDir, Cause: errors.New("not a directory")})
	}

	if o.Dockerfile != "" {
		if path, err := o.ResolveDockerfile(); err != nil {
			errs = append(errs, err)
		} else if _, err := os.Stat(path); err != nil {
			errs = append(errs, &InvalidDockerfileError{Path: o.Dockerfile, Cause: err})
		}
	}

	if err := o.Tag.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, src := range o.CacheFrom {
		if err := src.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ResolveDockerfile resolves the Dockerfile path relative to the build
// context. Absolute paths are returned as-is; relative paths must stay inside
// the context directory.
func (o BuildOptions) ResolveDockerfile() (string, error) {
	if o.Dockerfile == "" {
		return "", nil
	}
	if filepath.IsAbs(o.Dockerfile) {
		return o.Dockerfile, nil
	}

	resolved := filepath.Clean(filepath.Join(o.ContextDir, o.Dockerfile))
	rel, err := filepath.Rel(filepath.Clean(o.ContextDir), resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &InvalidDockerfileError{
			Path:  o.Dockerfile,
			Cause: fmt.Errorf("escapes context directory %q", o.ContextDir),
		}
	}
	return resolved, nil
}

// Validate checks that the image reference parses.
func (o RunOptions) Validate() error {
	if o.Image == "" {
		return &InvalidImageRefError{Value: o.Image, Cause: errors.New("must be non-empty")}
	}
	return o.Image.Validate()
}

// Error implements the error interface.
func (e *InvalidCredentialError) Error() string {
	return fmt.Sprintf("invalid credential for registry %q: %d field error(s)", e.Registry, len(e.FieldErrs))
}

// Unwrap returns ErrInvalidCredential for errors.Is() compatibility.
func (e *InvalidCredentialError) Unwrap() error { return ErrInvalidCredential }

// Validate checks that all required credential fields are present.
func (c Credential) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Registry) == "" {
		errs = append(errs, errors.New("registry must be non-empty"))
	}
	if strings.TrimSpace(c.Username) == "" {
		errs = append(errs, errors.New("username must be non-empty"))
	}
	if c.Secret == "" {
		errs = append(errs, errors.New("secret must be non-empty"))
	}
	if len(errs) > 0 {
		return &InvalidCredentialError{Registry: c.Registry, FieldErrs: errs}
	}
	return nil
}
