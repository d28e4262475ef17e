// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"repo2podman/internal/engine"
	"repo2podman/internal/issue"
)

var (
	buildTag        string
	buildDockerfile string
	buildArgFlags   []string
	buildCacheFrom  []string
	buildLabels     []string
	buildPlatform   string
	buildCPUSetCPUs string
	buildCPUShares  string
	buildMemory     string
	buildMemSwap    string

	buildCmd = &cobra.Command{
		Use:   "build CONTEXT",
		Short: "Build an image from a build context directory",
		Long: `Build an image by invoking the engine's build command, streaming its
output as it is produced. A non-zero engine exit code becomes this
command's exit code.`,
		Args: cobra.ExactArgs(1),
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildTag, "tag", "t", "", "image tag (name:tag)")
	buildCmd.Flags().StringVarP(&buildDockerfile, "file", "f", "", "Dockerfile path, relative to the context")
	buildCmd.Flags().StringArrayVar(&buildArgFlags, "build-arg", nil, "build-time variable (KEY=VALUE, repeatable)")
	buildCmd.Flags().StringArrayVar(&buildCacheFrom, "cache-from", nil, "image to reuse cached layers from (repeatable, order preserved)")
	buildCmd.Flags().StringArrayVar(&buildLabels, "label", nil, "image label (KEY=VALUE, repeatable)")
	buildCmd.Flags().StringVar(&buildPlatform, "platform", "", "target platform (e.g. linux/arm64)")
	buildCmd.Flags().StringVar(&buildCPUSetCPUs, "cpuset-cpus", "", "CPUs to allow the build (e.g. 0-3)")
	buildCmd.Flags().StringVar(&buildCPUShares, "cpu-shares", "", "relative CPU weight for the build")
	buildCmd.Flags().StringVar(&buildMemory, "memory", "", "memory limit for the build (e.g. 512m)")
	buildCmd.Flags().StringVar(&buildMemSwap, "memory-swap", "", "memory plus swap limit for the build")
}

func runBuild(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	buildArgs, err := parseKeyValues(buildArgFlags, "--build-arg")
	if err != nil {
		return err
	}
	labels, err := parseKeyValues(buildLabels, "--label")
	if err != nil {
		return err
	}

	platform := buildPlatform
	if platform == "" {
		platform = cfg.Platform
	}

	opts := engine.BuildOptions{
		Tag:        engine.ImageRef(buildTag),
		ContextDir: args[0],
		Dockerfile: buildDockerfile,
		BuildArgs:  buildArgs,
		Platform:   platform,
		CacheFrom:  toImageRefs(buildCacheFrom),
		Labels:     labels,
		Limits: engine.Limits{
			CPUSetCPUs: buildCPUSetCPUs,
			CPUShares:  buildCPUShares,
			Memory:     buildMemory,
			MemorySwap: buildMemSwap,
		},
		Output: cmd.OutOrStdout(),
	}

	result, err := eng.Build(cmd.Context(), opts)
	if err != nil {
		return buildFailure(eng.Name(), opts, result, err)
	}

	if buildTag != "" {
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Built ")+RefStyle.Render(buildTag))
	}
	return nil
}

// buildFailure wraps a build error with actionable context and the real exit
// code. Cancellation and a missing executable are surfaced as-is.
func buildFailure(engineName string, opts engine.BuildOptions, result engine.ExecutionResult, err error) error {
	if errors.Is(err, engine.ErrTerminated) || errors.Is(err, engine.ErrEngineNotFound) {
		return err
	}

	ctx := issue.NewErrorContext().
		WithOperation("build image")
	switch {
	case opts.Tag != "":
		ctx.WithResource(string(opts.Tag))
	case opts.Dockerfile != "":
		ctx.WithResource(opts.Dockerfile)
	default:
		ctx.WithResource(opts.ContextDir)
	}
	ctx.WithSuggestion("Check Dockerfile syntax for errors")
	ctx.WithSuggestion("Verify the build context path exists and is accessible")
	ctx.WithSuggestion("Ensure base images are available (try: " + engineName + " pull <base-image>)")
	ctx.WithSuggestion("Run with --verbose to see the executed command")

	return &ExitError{Code: exitCode(result), Err: ctx.Wrap(err).BuildError()}
}

// exitCode maps a result onto a usable shell exit code.
func exitCode(result engine.ExecutionResult) int {
	if result.ExitCode > 0 {
		return result.ExitCode
	}
	return 1
}

// parseKeyValues parses repeated KEY=VALUE flag values, preserving order.
func parseKeyValues(values []string, flag string) ([]engine.KeyValue, error) {
	kvs := make([]engine.KeyValue, 0, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid %s %q: must be KEY=VALUE", flag, v)
		}
		kvs = append(kvs, engine.KeyValue{Key: key, Value: value})
	}
	return kvs, nil
}

// toImageRefs converts raw flag values into image references.
func toImageRefs(values []string) []engine.ImageRef {
	refs := make([]engine.ImageRef, 0, len(values))
	for _, v := range values {
		refs = append(refs, engine.ImageRef(v))
	}
	return refs
}
