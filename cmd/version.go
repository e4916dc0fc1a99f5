package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shibing624/file-server/pkg/version"
)

// NewVersionCommand creates the 'version' command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			if version.Commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", version.Name, version.Version, version.Commit)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Name, version.Version)
		},
	}
}
