// SPDX-License-Identifier: MPL-2.0

// repo2podman drives Podman (or a compatible CLI) as a container build
// engine for repository-to-image build orchestrators.
package main

import cmd "repo2podman/cmd/repo2podman"

func main() {
	cmd.Execute()
}
