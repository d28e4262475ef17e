// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"repo2podman/internal/config"
	"repo2podman/internal/engine"
	"repo2podman/internal/issue"
)

var pushCmd = &cobra.Command{
	Use:   "push IMAGE",
	Short: "Push an image to its registry",
	Long: `Push an image, streaming progress output. Destinations without an
explicit transport are normalized using the configured default transport
("x:1" becomes "docker://docker.io/library/x:1"). When registry
credentials are configured, login runs first; an authentication failure
aborts the push.`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	image := engine.ImageRef(args[0])
	result, err := eng.Push(cmd.Context(), image, cmd.OutOrStdout())
	if err != nil {
		if errors.Is(err, engine.ErrTerminated) || errors.Is(err, engine.ErrEngineNotFound) {
			return err
		}

		ctx := issue.NewErrorContext().
			WithOperation("push image").
			WithResource(string(image))
		if errors.Is(err, engine.ErrAuthenticationFailed) {
			ctx.WithSuggestion("Check the registry host and username in the config")
			ctx.WithSuggestion("Verify " + config.RegistrySecretEnv + " holds a valid token")
		} else {
			ctx.WithSuggestion("Verify the image exists locally (try: repo2podman images)")
			ctx.WithSuggestion("Log in first if the registry is private (repo2podman login)")
		}
		return &ExitError{Code: exitCode(result), Err: ctx.Wrap(err).BuildError()}
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Pushed ")+RefStyle.Render(string(image)))
	return nil
}
