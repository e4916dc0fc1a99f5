package cmd

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shibing624/file-server/pkg/config"
	"github.com/shibing624/file-server/pkg/history"
	"github.com/shibing624/file-server/pkg/logging"
)

// NewHistoryCommand creates the 'history' command, an offline reader for the
// upload/delete event log. It opens the same database the server writes, so
// it works while the server is running or stopped.
func NewHistoryCommand(fs afero.Fs, logger *logging.Logger) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent upload and delete events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(fs, logger)
			if err != nil {
				return err
			}
			if !settings.HistoryEnabled() {
				return errors.New("history is disabled (HISTORY_DB=off)")
			}

			events, err := history.Open(settings.HistoryDB, logger)
			if err != nil {
				return err
			}
			defer events.Close()

			recent, err := events.Recent(limit)
			if err != nil {
				return err
			}
			total, err := events.Count()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recent) == 0 {
				fmt.Fprintln(out, "No recorded events.")
				return nil
			}
			for _, e := range recent {
				fmt.Fprintf(out, "%s  %-6s  %9s  %s  %s\n",
					e.At.Local().Format("2006-01-02 15:04:05"),
					e.Action,
					humanize.IBytes(uint64(e.Size)),
					e.Filename,
					e.RemoteIP,
				)
			}
			fmt.Fprintf(out, "%d events total\n", total)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events to show")

	return cmd
}
