// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"repo2podman/internal/engine"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List registered engine adapters",
	Long: `List the engine adapter names that can be selected with --engine. The
hosting orchestrator resolves adapters from the same registry.`,
	Args: cobra.NoArgs,
	RunE: runEngines,
}

func runEngines(cmd *cobra.Command, _ []string) error {
	for _, name := range engine.Names() {
		marker := "  "
		if name == string(cfg.Engine) {
			marker = SuccessStyle.Render("* ")
		}
		fmt.Fprintln(cmd.OutOrStdout(), marker+name)
	}
	return nil
}
