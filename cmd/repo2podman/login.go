// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"repo2podman/internal/config"
	"repo2podman/internal/engine"
	"repo2podman/internal/issue"
)

var (
	loginUsername string

	loginCmd = &cobra.Command{
		Use:   "login REGISTRY",
		Short: "Authenticate against a registry",
		Long: `Log in to a registry. The secret is read from the ` + config.RegistrySecretEnv + `
environment variable, or from stdin when the variable is unset. It is
passed to the engine on the subprocess's stdin and never appears in an
argument list.`,
		Args: cobra.ExactArgs(1),
		RunE: runLogin,
	}
)

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "registry account name")
	loginCmd.MarkFlagRequired("username")
}

func runLogin(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	secret := os.Getenv(config.RegistrySecretEnv)
	if secret == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read secret from stdin: %w", err)
		}
		secret = strings.TrimSpace(string(data))
	}

	cred := engine.Credential{
		Registry: args[0],
		Username: loginUsername,
		Secret:   secret,
	}

	if _, err := eng.Login(cmd.Context(), cred); err != nil {
		if errors.Is(err, engine.ErrTerminated) || errors.Is(err, engine.ErrEngineNotFound) {
			return err
		}
		return issue.NewErrorContext().
			WithOperation("log in to registry").
			WithResource(cred.Registry).
			WithSuggestion("Verify the username and secret are correct").
			WithSuggestion("Check the registry host is reachable").
			Wrap(err).
			BuildError()
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Logged in to ")+RefStyle.Render(cred.Registry))
	return nil
}
