// SPDX-License-Identifier: MPL-2.0

package podman

import (
	"strconv"
	"time"

	"repo2podman/internal/engine"
)

// buildArgs constructs arguments for an image build command. Argument order
// is deterministic: build args, cache sources (one --cache-from per source,
// input order preserved), resource limits, --rm, tag, dockerfile, labels,
// platform, context. Optional flags are omitted entirely when unset, never
// emitted with an empty value.
//
// Generated command: <exe> build [options] <context>
func buildArgs(opts engine.BuildOptions) ([]string, error) {
	args := []string{"build"}

	for _, kv := range opts.BuildArgs {
		args = append(args, "--build-arg", kv.String())
	}

	for _, src := range opts.CacheFrom {
		args = append(args, "--cache-from", string(src))
	}

	if opts.Limits.CPUSetCPUs != "" {
		args = append(args, "--cpuset-cpus", opts.Limits.CPUSetCPUs)
	}
	if opts.Limits.CPUShares != "" {
		args = append(args, "--cpu-shares", opts.Limits.CPUShares)
	}
	if opts.Limits.Memory != "" {
		args = append(args, "--memory", opts.Limits.Memory)
	}
	if opts.Limits.MemorySwap != "" {
		args = append(args, "--memory-swap", opts.Limits.MemorySwap)
	}

	// --force-rm is deliberately not used, for compatibility with other
	// podman-like CLIs.
	args = append(args, "--rm")

	if opts.Tag != "" {
		args = append(args, "--tag", string(opts.Tag))
	}

	if opts.Dockerfile != "" {
		dockerfile, err := opts.ResolveDockerfile()
		if err != nil {
			return nil, err
		}
		args = append(args, "--file", dockerfile)
	}

	for _, kv := range opts.Labels {
		args = append(args, "--label", kv.String())
	}

	if opts.Platform != "" {
		args = append(args, "--platform", opts.Platform)
	}

	args = append(args, opts.ContextDir)

	return args, nil
}

// runArgs constructs arguments for a container run command. The container is
// always detached; the caller observes it through the returned handle.
//
// Generated command: <exe> run [options] <image> [command...]
func (e *Engine) runArgs(opts engine.RunOptions) []string {
	args := []string{"run"}

	if opts.PublishAll {
		args = append(args, "--publish-all")
	}

	for _, p := range opts.Ports {
		args = append(args, "--publish", p)
	}

	args = append(args, "--detach")

	for _, v := range opts.Volumes {
		args = append(args, "--volume", v)
	}

	for _, env := range opts.Env {
		args = append(args, "--env", env)
	}

	if opts.Remove {
		args = append(args, "--rm")
	}

	if e.logLevel != "" {
		args = append(args, "--log-level="+e.logLevel)
	}

	args = append(args, string(opts.Image))
	args = append(args, opts.Command...)

	return args
}

// loginArgs constructs arguments for a registry login command. The secret is
// never part of the argument list; it goes to the subprocess's stdin via
// --password-stdin so it cannot leak through process listings.
func loginArgs(cred engine.Credential) []string {
	return []string{
		"login",
		"--username", cred.Username,
		"--password-stdin",
		cred.Registry,
	}
}

// logsArgs constructs arguments for a container logs command.
func logsArgs(opts engine.LogsOptions, containerID string) []string {
	args := []string{"logs"}
	if opts.Timestamps {
		args = append(args, "--timestamps")
	}
	if opts.Since != "" {
		args = append(args, "--since", opts.Since)
	}
	if opts.Follow {
		args = append(args, "--follow")
	}
	return append(args, containerID)
}

// stopArgs constructs arguments for a container stop command.
func stopArgs(containerID string, timeout time.Duration) []string {
	return []string{"stop", "--timeout", strconv.Itoa(int(timeout.Seconds())), containerID}
}
