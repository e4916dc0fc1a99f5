// Package cmd holds the cobra commands for the file server binary.
package cmd

import (
	"context"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shibing624/file-server/pkg/logging"
	"github.com/shibing624/file-server/pkg/version"
)

// NewRootCommand returns the root command with all subcommands attached.
// Running the bare binary starts the server, same as `file-server serve`.
func NewRootCommand(ctx context.Context, fs afero.Fs, logger *logging.Logger) *cobra.Command {
	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:   "file-server",
		Short: "Self-hosted password-protected file storage.",
		Long: `File Server is a single-binary HTTP file storage service. Uploads are
password-protected, stored under date-and-fingerprint names, listed with
human-readable sizes and served back as static files.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(ctx, fs, cmd.OutOrStdout(), logger)
		},
	}
	rootCmd.AddCommand(NewServeCommand(ctx, fs, logger))
	rootCmd.AddCommand(NewHistoryCommand(fs, logger))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
