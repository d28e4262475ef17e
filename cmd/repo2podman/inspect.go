// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"repo2podman/internal/engine"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect IMAGE",
	Short: "Show image metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	image, err := eng.InspectImage(cmd.Context(), engine.ImageRef(args[0]))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(image, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode image metadata: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
