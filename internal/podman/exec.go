// SPDX-License-Identifier: MPL-2.0

package podman

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"slices"
	"strings"
	"sync"

	"repo2podman/internal/engine"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// LookPathFunc resolves an executable name against the command search
	// path. Injectable for testing.
	LookPathFunc func(file string) (string, error)

	// lineRecorder collects streamed lines in memory. stream writes exactly
	// one line (with trailing newline) per Write call, so each call maps to
	// one recorded line.
	lineRecorder struct {
		lines []string
	}
)

// Write implements io.Writer.
func (r *lineRecorder) Write(p []byte) (int, error) {
	r.lines = append(r.lines, strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// resolve looks up the configured executable on PATH. Called once per
// operation, immediately before spawning, so PATH changes made after the
// engine was configured still take effect.
func (e *Engine) resolve() (string, error) {
	path, err := e.lookPath(e.executable)
	if err != nil {
		return "", &engine.NotFoundError{Executable: e.executable, Cause: err}
	}
	return path, nil
}

// stream executes the engine with the given arguments, forwarding each output
// line (stdout and stderr combined) to out as it is produced. Lines are split
// on \n or bare \r so progress-bar output arrives incrementally.
//
// The exit code is always captured in the result. The returned error is nil
// on a clean exit; a *engine.NotFoundError if the executable did not resolve;
// a *engine.TerminatedError if ctx was cancelled and the subprocess killed;
// otherwise the raw subprocess error (typically *exec.ExitError).
func (e *Engine) stream(ctx context.Context, stdin io.Reader, out io.Writer, args ...string) (engine.ExecutionResult, error) {
	var result engine.ExecutionResult

	path, err := e.resolve()
	if err != nil {
		result.ExitCode = -1
		return result, err
	}

	cmdArgs := append(slices.Clone(e.extraArgs), args...)
	e.logger.Debug("executing", "command", path+" "+strings.Join(cmdArgs, " "))

	cmd := e.execCommand(ctx, path, cmdArgs...)
	cmd.Stdin = stdin

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if out == nil {
		out = io.Discard
	}

	var (
		wg       sync.WaitGroup
		streamed bool
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		scanner.Split(scanOutputLines)
		for scanner.Scan() {
			streamed = true
			io.WriteString(out, scanner.Text()+"\n")
		}
	}()

	if err := cmd.Start(); err != nil {
		pw.Close()
		wg.Wait()
		result.ExitCode = -1
		return result, err
	}

	waitErr := cmd.Wait()
	pw.Close()
	wg.Wait()
	result.Streamed = streamed

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		// Cancellation kills the subprocess via exec.CommandContext; report
		// it as a termination, not as an engine failure.
		if ctx.Err() != nil {
			return result, &engine.TerminatedError{Args: cmdArgs, Cause: ctx.Err()}
		}
		return result, waitErr
	}

	return result, nil
}

// capture executes the engine and returns the streamed output lines along
// with the result. Used by operations that parse engine output (run, inspect,
// images) rather than relaying it.
func (e *Engine) capture(ctx context.Context, stdin io.Reader, args ...string) ([]string, engine.ExecutionResult, error) {
	rec := &lineRecorder{}
	result, err := e.stream(ctx, stdin, rec, args...)
	return rec.lines, result, err
}

// scanOutputLines is a bufio.SplitFunc that splits on \n, \r\n, or a bare \r,
// so carriage-return progress updates are forwarded as separate lines.
func scanOutputLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' {
			if i+1 == len(data) && !atEOF {
				// Can't yet tell whether this is a bare \r or half of \r\n.
				return 0, nil, nil
			}
			if i+1 < len(data) && data[i+1] == '\n' {
				advance = i + 2
			}
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// passthrough reports whether the error should be surfaced to the caller
// as-is instead of being wrapped in an operation-specific error kind.
func passthrough(err error) bool {
	return errors.Is(err, engine.ErrEngineNotFound) || errors.Is(err, engine.ErrTerminated)
}
