package main

import (
	"context"
	"os"

	"github.com/spf13/afero"

	"github.com/shibing624/file-server/cmd"
	"github.com/shibing624/file-server/pkg/logging"
)

func main() {
	fs := afero.NewOsFs()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.GetLogger()

	rootCmd := cmd.NewRootCommand(ctx, fs, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
