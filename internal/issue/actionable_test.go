// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "build image"},
			expected: "failed to build image",
		},
		{
			name:     "with resource",
			err:      &ActionableError{Operation: "build image", Resource: "app:1"},
			expected: "failed to build image: app:1",
		},
		{
			name: "with cause",
			err: &ActionableError{
				Operation: "log in to registry",
				Resource:  "quay.io",
				Cause:     errors.New("exit status 1"),
			},
			expected: "failed to log in to registry: quay.io: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("root cause")
	err := NewErrorContext().
		WithOperation("push image").
		Wrap(fmt.Errorf("wrapped: %w", sentinel)).
		BuildError()

	if !errors.Is(err, sentinel) {
		t.Errorf("errors.Is through ActionableError = false, want true")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("build image").
		WithResource("app:1").
		WithSuggestion("Check the Dockerfile for syntax errors").
		WithSuggestion("Run with --verbose for the full build log").
		Wrap(fmt.Errorf("build step failed: %w", errors.New("exit status 2"))).
		Build()

	plain := err.Format(false)
	if !strings.Contains(plain, "• Check the Dockerfile for syntax errors") {
		t.Errorf("Format(false) missing suggestion:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) must not include the error chain:\n%s", plain)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("Format(true) missing error chain:\n%s", verbose)
	}
	if !strings.Contains(verbose, "1. build step failed: exit status 2") {
		t.Errorf("Format(true) missing first chain entry:\n%s", verbose)
	}
	if !strings.Contains(verbose, "2. exit status 2") {
		t.Errorf("Format(true) missing unwrapped cause:\n%s", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("app:1").Build(); err != nil {
		t.Errorf("Build without operation = %v, want nil", err)
	}
	if err := NewErrorContext().WithSuggestion("hint").BuildError(); err != nil {
		t.Errorf("BuildError without operation = %v, want nil", err)
	}

	ae := NewErrorContext().WithOperation("run container").Build()
	if ae == nil || ae.Operation != "run container" {
		t.Fatalf("Build() = %+v", ae)
	}
}
