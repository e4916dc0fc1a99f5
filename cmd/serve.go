package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shibing624/file-server/pkg/config"
	"github.com/shibing624/file-server/pkg/history"
	"github.com/shibing624/file-server/pkg/logging"
	"github.com/shibing624/file-server/pkg/server"
	"github.com/shibing624/file-server/pkg/storage"
	"github.com/shibing624/file-server/pkg/version"
)

// Styles for the startup banner.
var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// NewServeCommand creates the 'serve' command.
func NewServeCommand(ctx context.Context, fs afero.Fs, logger *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Start the file server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(ctx, fs, cmd.OutOrStdout(), logger)
		},
	}
}

// runServe loads the configuration, prepares the storage root and serves
// until interrupted.
func runServe(ctx context.Context, fs afero.Fs, out io.Writer, logger *logging.Logger) error {
	settings, err := config.Load(fs, logger)
	if err != nil {
		return err
	}
	// A .env file may have set LOG_LEVEL after the logger was created.
	logger.SetLevel(logging.ParseLevel(settings.LogLevel))
	if logging.ParseLevel(settings.LogLevel) != log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := storage.EnsureRoot(fs, settings.StorageDir); err != nil {
		return err
	}

	var events *history.Log
	if settings.HistoryEnabled() {
		events, err = history.Open(settings.HistoryDB, logger)
		if err != nil {
			logger.Warn("history log unavailable, continuing without it", "error", err)
			events = nil
		} else {
			defer events.Close()
		}
	}

	io.WriteString(out, banner(settings)+"\n")
	if settings.GeneratedPassword {
		io.WriteString(out, passwordNotice(settings.UploadPassword)+"\n")
	}

	logger.Info("Starting File Server", "version", version.Version, "addr", settings.ListenAddr(), "base_url", settings.BaseURL)
	logger.Info("Storage directory", "path", settings.StorageDir)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(fs, settings, events, logger).Run(ctx)
}

// banner renders the startup box with the essential runtime facts.
func banner(settings *config.Settings) string {
	lines := []string{
		titleStyle.Render("📁 " + version.Name + " v" + version.Version),
		"",
		labelStyle.Render("Listening   ") + settings.ListenAddr(),
		labelStyle.Render("Storage     ") + settings.StorageDir,
		labelStyle.Render("Base URL    ") + settings.BaseURL,
		labelStyle.Render("API info    ") + settings.BaseURL + "/api",
	}
	return bannerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// passwordNotice is printed once when the password had to be generated.
func passwordNotice(secret string) string {
	return warnStyle.Render("UPLOAD_PASSWORD is not set.") + "\n" +
		"Temporary password for this run: " + secret + "\n" +
		"Set UPLOAD_PASSWORD to keep a stable password across restarts."
}
