// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List local images",
	Long: `List locally available images, one per line with all its tags. Local
"localhost/"-prefixed names are also shown with the prefix stripped.`,
	Args: cobra.NoArgs,
	RunE: runImages,
}

func runImages(cmd *cobra.Command, _ []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	images, err := eng.Images(cmd.Context())
	if err != nil {
		return err
	}

	for _, image := range images {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(image.Tags, " "))
	}
	return nil
}
