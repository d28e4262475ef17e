// SPDX-License-Identifier: MPL-2.0

// Package podman implements the engine.Engine contract by driving the podman
// CLI (or any podman-compatible CLI such as nerdctl or podman-remote) as a
// subprocess.
//
// The adapter is a faithful relay: it derives exactly one invocation per
// request, streams subprocess output line by line as it is produced, and
// surfaces the real exit code. It performs no retries and no recovery. The
// engine executable is resolved against PATH at call time, never at
// construction, so environment changes between configuration and execution
// are honored.
package podman
