// SPDX-License-Identifier: MPL-2.0

package podman

import (
	"bufio"
	"slices"
	"strings"
	"testing"
)

func TestParseImageList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lines    []string
		expected [][]string
		wantErr  bool
	}{
		{
			name: "json array",
			lines: []string{
				`[`,
				`  {"Names": ["localhost/app:1"]},`,
				`  {"Names": ["docker.io/library/debian:stable-slim"]}`,
				`]`,
			},
			expected: [][]string{
				{"localhost/app:1"},
				{"docker.io/library/debian:stable-slim"},
			},
		},
		{
			name: "jsonl",
			lines: []string{
				`{"Names": ["localhost/app:1"]}`,
				`{"Names": ["localhost/app:2"]}`,
			},
			expected: [][]string{
				{"localhost/app:1"},
				{"localhost/app:2"},
			},
		},
		{
			name: "lowercase field names",
			lines: []string{
				`[{"names": ["app:1"]}]`,
			},
			expected: [][]string{{"app:1"}},
		},
		{
			name:     "empty output",
			lines:    nil,
			expected: nil,
		},
		{
			name:     "blank lines only",
			lines:    []string{"", "  "},
			expected: nil,
		},
		{
			name:    "malformed json",
			lines:   []string{`[{"Names": ]`},
			wantErr: true,
		},
		{
			name: "malformed jsonl line",
			lines: []string{
				`{"Names": ["app:1"]}`,
				`{"Names": }`,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entries, err := parseImageList(tt.lines)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(entries) != len(tt.expected) {
				t.Fatalf("len(entries) = %d, want %d", len(entries), len(tt.expected))
			}
			for i, entry := range entries {
				if !slices.Equal(entry.Names, tt.expected[i]) {
					t.Errorf("entries[%d].Names = %v, want %v", i, entry.Names, tt.expected[i])
				}
			}
		})
	}
}

func TestParseInspect(t *testing.T) {
	t.Parallel()

	t.Run("single entry", func(t *testing.T) {
		t.Parallel()
		details, err := parseInspect([]string{
			`[{"RepoTags": ["app:1"], "Config": {"WorkingDir": "/srv"}}]`,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(details.RepoTags, []string{"app:1"}) {
			t.Errorf("RepoTags = %v", details.RepoTags)
		}
		if details.Config["WorkingDir"] != "/srv" {
			t.Errorf(`Config["WorkingDir"] = %v`, details.Config["WorkingDir"])
		}
	})

	t.Run("no entries", func(t *testing.T) {
		t.Parallel()
		if _, err := parseInspect([]string{`[]`}); err == nil {
			t.Fatal("expected an error for empty inspect output")
		}
	})

	t.Run("multiple entries", func(t *testing.T) {
		t.Parallel()
		if _, err := parseInspect([]string{`[{}, {}]`}); err == nil {
			t.Fatal("expected an error for ambiguous inspect output")
		}
	})
}

func TestParseContainerInspect(t *testing.T) {
	t.Parallel()

	details, err := parseContainerInspect([]string{
		`[{"Id": "abc123", "State": {"Status": "exited", "ExitCode": 137}}]`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.ID != "abc123" {
		t.Errorf("ID = %q, want %q", details.ID, "abc123")
	}
	if details.State.Status != "exited" || details.State.ExitCode != 137 {
		t.Errorf("State = %+v", details.State)
	}
}

func TestScanOutputLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "newlines",
			input:    "one\ntwo\nthree\n",
			expected: []string{"one", "two", "three"},
		},
		{
			name:     "carriage return progress",
			input:    "Copying blob 10%\rCopying blob 60%\rCopying blob done\n",
			expected: []string{"Copying blob 10%", "Copying blob 60%", "Copying blob done"},
		},
		{
			name:     "crlf",
			input:    "one\r\ntwo\r\n",
			expected: []string{"one", "two"},
		},
		{
			name:     "mixed terminators",
			input:    "a\rb\nc\r\nd",
			expected: []string{"a", "b", "c", "d"},
		},
		{
			name:     "no trailing terminator",
			input:    "tail",
			expected: []string{"tail"},
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			scanner := bufio.NewScanner(strings.NewReader(tt.input))
			scanner.Split(scanOutputLines)
			var lines []string
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				t.Fatalf("unexpected scan error: %v", err)
			}
			if !slices.Equal(lines, tt.expected) {
				t.Errorf("lines = %q, want %q", lines, tt.expected)
			}
		})
	}
}

func TestLineRecorder(t *testing.T) {
	t.Parallel()

	rec := &lineRecorder{}
	for _, line := range []string{"one\n", "two\n", "three"} {
		if _, err := rec.Write([]byte(line)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if !slices.Equal(rec.lines, []string{"one", "two", "three"}) {
		t.Errorf("lines = %q", rec.lines)
	}
}

func TestIsJSONL(t *testing.T) {
	t.Parallel()

	if !isJSONL([]string{`{"a": 1}`, `{"b": 2}`}) {
		t.Error("two object lines must be JSONL")
	}
	if isJSONL([]string{`[{"a": 1}]`}) {
		t.Error("an array is not JSONL")
	}
	if isJSONL(nil) {
		t.Error("empty output is not JSONL")
	}
	if isJSONL([]string{`{"a": 1}`, ``}) {
		t.Error("a blank line disqualifies JSONL")
	}
}

func TestLastNonEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{"last line wins", []string{"progress", "abc123"}, "abc123"},
		{"trailing blanks skipped", []string{"abc123", "", "  "}, "abc123"},
		{"whitespace trimmed", []string{" abc123 "}, "abc123"},
		{"all blank", []string{"", " "}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := lastNonEmpty(tt.lines); got != tt.expected {
				t.Errorf("lastNonEmpty(%q) = %q, want %q", tt.lines, got, tt.expected)
			}
		})
	}
}

func TestExpandLocalAliases(t *testing.T) {
	t.Parallel()

	got := expandLocalAliases([]string{"localhost/app:1", "docker.io/library/app:1"})
	want := []string{"localhost/app:1", "app:1", "docker.io/library/app:1"}
	if !slices.Equal(got, want) {
		t.Errorf("expandLocalAliases = %v, want %v", got, want)
	}
}
