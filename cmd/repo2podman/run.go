// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"repo2podman/internal/engine"
	"repo2podman/internal/issue"
)

var (
	runEnv        []string
	runPorts      []string
	runPublishAll bool
	runVolumes    []string
	runRemove     bool
	runAttach     bool

	runCmd = &cobra.Command{
		Use:   "run IMAGE [-- COMMAND...]",
		Short: "Start a detached container",
		Long: `Start a container from an image. The container runs detached and its id
is printed. With --attach, logs are followed until the container exits
and its exit code becomes this command's exit code.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().StringArrayVarP(&runEnv, "env", "e", nil, "environment variable (KEY=VALUE, repeatable)")
	runCmd.Flags().StringArrayVarP(&runPorts, "publish", "p", nil, "port mapping (host:container, repeatable)")
	runCmd.Flags().BoolVar(&runPublishAll, "publish-all", false, "publish all exposed ports to random host ports")
	runCmd.Flags().StringArrayVar(&runVolumes, "volume", nil, "bind mount (host:container[:options], repeatable)")
	runCmd.Flags().BoolVar(&runRemove, "rm", false, "remove the container when it exits")
	runCmd.Flags().BoolVarP(&runAttach, "attach", "a", false, "follow logs and wait for the container to exit")
}

func runRun(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	opts := engine.RunOptions{
		Image:      engine.ImageRef(args[0]),
		Command:    args[1:],
		Env:        runEnv,
		Ports:      runPorts,
		PublishAll: runPublishAll,
		Volumes:    runVolumes,
		Remove:     runRemove,
	}

	container, err := eng.Run(cmd.Context(), opts)
	if err != nil {
		return runFailure(eng.Name(), opts, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), RefStyle.Render(container.ID()))

	if !runAttach {
		return nil
	}

	logOpts := engine.LogsOptions{Output: cmd.OutOrStdout(), Follow: true}
	if err := container.Logs(cmd.Context(), logOpts); err != nil {
		return err
	}
	if err := container.Wait(cmd.Context()); err != nil {
		return err
	}
	if err := container.Reload(cmd.Context()); err != nil {
		return err
	}
	if code := container.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// runFailure wraps a run error with actionable context. Cancellation and a
// missing executable are surfaced as-is.
func runFailure(engineName string, opts engine.RunOptions, err error) error {
	if errors.Is(err, engine.ErrTerminated) || errors.Is(err, engine.ErrEngineNotFound) {
		return err
	}

	return issue.NewErrorContext().
		WithOperation("run container").
		WithResource(string(opts.Image)).
		WithSuggestion("Verify the image exists (try: " + engineName + " images)").
		WithSuggestion("Check that volume mount paths exist on the host").
		WithSuggestion("Ensure port mappings don't conflict with running services").
		WithSuggestion("Run with --verbose to see the executed command").
		Wrap(err).
		BuildError()
}
