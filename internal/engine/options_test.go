// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestImageRefValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ref     ImageRef
		wantErr bool
	}{
		{"empty is valid", "", false},
		{"short name", "debian", false},
		{"name with tag", "debian:stable-slim", false},
		{"qualified name", "quay.io/org/app:1", false},
		{"digest", "debian@sha256:0000000000000000000000000000000000000000000000000000000000000000", false},
		{"uppercase name", "Debian:latest", true},
		{"spaces", "not a ref", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.ref.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidImageRef) {
					t.Errorf("Validate(%q) = %v, want ErrInvalidImageRef", tt.ref, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate(%q) = %v, want nil", tt.ref, err)
			}
		})
	}
}

func TestImageRefNormalized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ref      ImageRef
		expected string
	}{
		{"short name", "x:1", "docker.io/library/x:1"},
		{"untagged", "x", "docker.io/library/x:latest"},
		{"qualified", "quay.io/org/app:2", "quay.io/org/app:2"},
		{"qualified untagged", "quay.io/org/app", "quay.io/org/app:latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.ref.Normalized()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Normalized(%q) = %q, want %q", tt.ref, got, tt.expected)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		if _, err := ImageRef("not a ref").Normalized(); !errors.Is(err, ErrInvalidImageRef) {
			t.Errorf("expected ErrInvalidImageRef, got %v", err)
		}
	})
}

func TestKeyValueString(t *testing.T) {
	t.Parallel()

	kv := KeyValue{Key: "HTTP_PROXY", Value: "http://proxy:3128"}
	if kv.String() != "HTTP_PROXY=http://proxy:3128" {
		t.Errorf("String() = %q", kv.String())
	}
}

func TestBuildOptionsValidate(t *testing.T) {
	t.Parallel()

	contextDir := t.TempDir()
	dockerfile := filepath.Join(contextDir, "Dockerfile")
	if err := os.WriteFile(dockerfile, []byte("FROM scratch\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		opts     BuildOptions
		sentinel error
	}{
		{
			name: "valid",
			opts: BuildOptions{
				Tag:        "app:1",
				ContextDir: contextDir,
				Dockerfile: "Dockerfile",
				CacheFrom:  []ImageRef{"app:0"},
			},
		},
		{
			name:     "empty context",
			opts:     BuildOptions{},
			sentinel: ErrInvalidBuildContext,
		},
		{
			name:     "missing context",
			opts:     BuildOptions{ContextDir: filepath.Join(contextDir, "nope")},
			sentinel: ErrInvalidBuildContext,
		},
		{
			name:     "context is a file",
			opts:     BuildOptions{ContextDir: dockerfile},
			sentinel: ErrInvalidBuildContext,
		},
		{
			name:     "missing dockerfile",
			opts:     BuildOptions{ContextDir: contextDir, Dockerfile: "Dockerfile.missing"},
			sentinel: ErrInvalidDockerfile,
		},
		{
			name:     "dockerfile escapes context",
			opts:     BuildOptions{ContextDir: contextDir, Dockerfile: "../Dockerfile"},
			sentinel: ErrInvalidDockerfile,
		},
		{
			name:     "invalid tag",
			opts:     BuildOptions{ContextDir: contextDir, Tag: "Not A Tag"},
			sentinel: ErrInvalidImageRef,
		},
		{
			name:     "invalid cache source",
			opts:     BuildOptions{ContextDir: contextDir, CacheFrom: []ImageRef{"also not"}},
			sentinel: ErrInvalidImageRef,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if tt.sentinel == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Validate() = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

// An empty context with multiple bad fields must report all of them.
func TestBuildOptionsValidate_JoinsErrors(t *testing.T) {
	t.Parallel()

	err := BuildOptions{Tag: "Not A Tag"}.Validate()
	if !errors.Is(err, ErrInvalidBuildContext) {
		t.Errorf("expected ErrInvalidBuildContext in %v", err)
	}
	if !errors.Is(err, ErrInvalidImageRef) {
		t.Errorf("expected ErrInvalidImageRef in %v", err)
	}
}

func TestResolveDockerfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		contextDir string
		dockerfile string
		expected   string
		wantErr    bool
	}{
		{"empty", "/ctx", "", "", false},
		{"absolute kept", "/ctx", "/elsewhere/Dockerfile", "/elsewhere/Dockerfile", false},
		{"relative joined", "/ctx", "Dockerfile", "/ctx/Dockerfile", false},
		{"nested", "/ctx", "build/Dockerfile", "/ctx/build/Dockerfile", false},
		{"dot context", ".", "Dockerfile", "Dockerfile", false},
		{"escape rejected", "/ctx", "../Dockerfile", "", true},
		{"sneaky escape rejected", "/ctx", "build/../../Dockerfile", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := BuildOptions{ContextDir: tt.contextDir, Dockerfile: tt.dockerfile}
			got, err := opts.ResolveDockerfile()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDockerfile) {
					t.Errorf("ResolveDockerfile() = %v, want ErrInvalidDockerfile", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ResolveDockerfile() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRunOptionsValidate(t *testing.T) {
	t.Parallel()

	if err := (RunOptions{Image: "debian:stable-slim"}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (RunOptions{}).Validate(); !errors.Is(err, ErrInvalidImageRef) {
		t.Errorf("Validate() = %v, want ErrInvalidImageRef", err)
	}
}

func TestCredentialValidate(t *testing.T) {
	t.Parallel()

	valid := Credential{Registry: "quay.io", Username: "builder", Secret: "token"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name string
		cred Credential
	}{
		{"missing registry", Credential{Username: "builder", Secret: "token"}},
		{"missing username", Credential{Registry: "quay.io", Secret: "token"}},
		{"missing secret", Credential{Registry: "quay.io", Username: "builder"}},
		{"blank registry", Credential{Registry: "  ", Username: "builder", Secret: "token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.cred.Validate(); !errors.Is(err, ErrInvalidCredential) {
				t.Errorf("Validate() = %v, want ErrInvalidCredential", err)
			}
		})
	}
}
