// SPDX-License-Identifier: MPL-2.0

package podman

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"repo2podman/internal/engine"
)

type (
	// mockCommandRecorder captures arguments passed to exec.Command for
	// verification. It uses the TestHelperProcess pattern to simulate
	// engine execution.
	mockCommandRecorder struct {
		mu sync.Mutex

		// Invocations records each call to the mock exec command.
		Invocations []mockInvocation
		// ExitCode is the exit code to return (0 = success).
		ExitCode int
		// Stdout is the default output to write to stdout.
		Stdout string
		// Outputs maps a subcommand (first argument) to its stdout,
		// overriding Stdout. Lets one test serve run and inspect differently.
		Outputs map[string]string
		// FailOn maps a subcommand to a non-zero exit code.
		FailOn map[string]int
		// SleepOn maps a subcommand to a duration the helper sleeps before
		// exiting, to simulate a long-running engine process.
		SleepOn map[string]time.Duration
		// StdinFile, when set, makes the helper copy its stdin to this file
		// so tests can verify what was delivered on the pipe.
		StdinFile string
	}

	// mockInvocation represents a single invocation of the exec command.
	mockInvocation struct {
		Name string
		Args []string
	}
)

// CommandFunc returns an ExecCommandFunc that records invocations and runs
// TestHelperProcess with the configured behavior.
func (m *mockCommandRecorder) CommandFunc(t *testing.T) ExecCommandFunc {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		m.mu.Lock()
		m.Invocations = append(m.Invocations, mockInvocation{Name: name, Args: args})
		m.mu.Unlock()

		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)

		stdout := m.Stdout
		exitCode := m.ExitCode
		var sleep time.Duration
		if len(args) > 0 {
			if out, ok := m.Outputs[args[0]]; ok {
				stdout = out
			}
			if code, ok := m.FailOn[args[0]]; ok {
				exitCode = code
			}
			if d, ok := m.SleepOn[args[0]]; ok {
				sleep = d
			}
		}

		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", exitCode),
			"GO_HELPER_STDOUT=" + stdout,
			fmt.Sprintf("GO_HELPER_SLEEP_MS=%d", sleep.Milliseconds()),
			"GO_HELPER_STDIN_FILE=" + m.StdinFile,
		}
		return cmd
	}
}

// LastArgs returns the arguments from the most recent invocation.
func (m *mockCommandRecorder) LastArgs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Invocations) == 0 {
		return nil
	}
	return m.Invocations[len(m.Invocations)-1].Args
}

// HasArg checks if the last invocation contains a specific argument.
func (m *mockCommandRecorder) HasArg(arg string) bool {
	return slices.Contains(m.LastArgs(), arg)
}

// newTestEngine returns an Engine wired to the recorder, with PATH lookup
// stubbed so no real engine binary is needed.
func newTestEngine(t *testing.T, recorder *mockCommandRecorder, opts engine.Options, engineOpts ...Option) *Engine {
	t.Helper()
	allOpts := append([]Option{
		WithExecCommand(recorder.CommandFunc(t)),
		WithLookPath(func(file string) (string, error) { return "/usr/bin/" + file, nil }),
	}, engineOpts...)
	return New(opts, allOpts...)
}

// TestHelperProcess simulates engine execution for the mock recorder. It is
// not a real test; the mock invokes it as a subprocess.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if file := os.Getenv("GO_HELPER_STDIN_FILE"); file != "" {
		data, _ := io.ReadAll(os.Stdin)
		os.WriteFile(file, data, 0o600)
	}

	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}

	if ms, _ := strconv.Atoi(os.Getenv("GO_HELPER_SLEEP_MS")); ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}

	exitCode := 0
	if code := os.Getenv("GO_HELPER_EXIT_CODE"); code != "" {
		exitCode, _ = strconv.Atoi(code)
	}
	os.Exit(exitCode)
}
