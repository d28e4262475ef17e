// SPDX-License-Identifier: MPL-2.0

package podman

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"repo2podman/internal/engine"
)

// exitedPollInterval is how often a followed log stream checks whether the
// container has exited. `podman logs --follow` may hang on a stopped
// container, so the follower polls and tears the subprocess down itself.
// Variable so tests can shorten it.
var exitedPollInterval = 2 * time.Second

// Container is a handle to a container started by Run. Attribute accessors
// reflect the state captured by the last Reload; Run reloads once before
// returning the handle.
type Container struct {
	id     string
	engine *Engine
	attrs  containerDetails
}

var _ engine.Container = (*Container)(nil)

// ID returns the container ID as reported by the run command.
func (c *Container) ID() string {
	return c.id
}

// Reload refreshes the cached container attributes via inspect.
func (c *Container) Reload(ctx context.Context) error {
	lines, _, err := c.engine.capture(ctx, nil, "inspect", "--type", "container", "--format", "json", c.id)
	if err != nil {
		return fmt.Errorf("failed to inspect container %q: %w", c.id, err)
	}

	details, err := parseContainerInspect(lines)
	if err != nil {
		return fmt.Errorf("failed to parse inspect output for container %q: %w", c.id, err)
	}
	if !strings.HasPrefix(details.ID, c.id) && !strings.HasPrefix(c.id, details.ID) {
		return fmt.Errorf("inspect returned container %q, want %q", details.ID, c.id)
	}

	c.attrs = *details
	return nil
}

// Logs writes the container's log output to opts.Output. With Follow set it
// streams until the container exits, polling the container state and killing
// the log subprocess itself once the container is gone.
func (c *Container) Logs(ctx context.Context, opts engine.LogsOptions) error {
	args := logsArgs(opts, c.id)

	if !opts.Follow {
		_, err := c.engine.stream(ctx, nil, opts.Output, args...)
		return err
	}

	followCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		ticker := time.NewTicker(exitedPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-followCtx.Done():
				return
			case <-ticker.C:
				if c.exited(followCtx) {
					close(stopped)
					cancel()
					return
				}
			}
		}
	}()

	_, err := c.engine.stream(followCtx, nil, opts.Output, args...)
	if errors.Is(err, engine.ErrTerminated) {
		select {
		case <-stopped:
			// The poller tore the follow down because the container exited;
			// this is normal end of stream, not a caller cancellation.
			return nil
		default:
		}
	}
	return err
}

// exited reports whether the container status is "exited". Errors count as
// exited so a follow does not outlive a removed container.
func (c *Container) exited(ctx context.Context) bool {
	lines, _, err := c.engine.capture(ctx, nil, "inspect", "--format={{.State.Status}}", c.id)
	if err != nil {
		return true
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) == "exited"
}

// Stop stops the container with the given grace period.
func (c *Container) Stop(ctx context.Context, timeout time.Duration) error {
	_, _, err := c.engine.capture(ctx, nil, stopArgs(c.id, timeout)...)
	if err != nil {
		return fmt.Errorf("failed to stop container %q: %w", c.id, err)
	}
	return nil
}

// Kill sends a signal to the container.
func (c *Container) Kill(ctx context.Context, signal string) error {
	_, _, err := c.engine.capture(ctx, nil, "kill", "--signal", signal, c.id)
	if err != nil {
		return fmt.Errorf("failed to kill container %q: %w", c.id, err)
	}
	return nil
}

// Remove deletes the container.
func (c *Container) Remove(ctx context.Context) error {
	_, _, err := c.engine.capture(ctx, nil, "rm", c.id)
	if err != nil {
		return fmt.Errorf("failed to remove container %q: %w", c.id, err)
	}
	return nil
}

// Wait blocks until the container exits.
func (c *Container) Wait(ctx context.Context) error {
	_, _, err := c.engine.capture(ctx, nil, "wait", c.id)
	if err != nil {
		return fmt.Errorf("failed to wait for container %q: %w", c.id, err)
	}
	return nil
}

// ExitCode returns the exit code from the last Reload.
func (c *Container) ExitCode() int {
	return c.attrs.State.ExitCode
}

// Status returns the container status from the last Reload.
func (c *Container) Status() string {
	return c.attrs.State.Status
}
