// SPDX-License-Identifier: MPL-2.0

// Package engine defines the capability surface a host build orchestrator uses
// to drive a container engine: the Engine interface (Build, Run, Push, Login,
// Images, InspectImage), the request option types, and the typed error kinds
// for each failure mode.
//
// Concrete engines register themselves by name via Register; the host resolves
// an implementation at startup with New. The adapter in internal/podman is the
// primary implementation and covers any podman-compatible CLI (podman,
// podman-remote, nerdctl, docker) through its executable override.
package engine
