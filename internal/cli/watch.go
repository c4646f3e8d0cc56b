package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the inbox continuously and triage new messages",
	Long: `Run the background watcher: the inbox is polled on the configured
interval, new messages are scored and have their action items
extracted, and urgent or high priority mail raises a notification.
Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireMailbox(); err != nil {
			return err
		}

		poller, err := Application.NewPoller()
		if err != nil {
			return err
		}

		logger := Application.Logger

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		poller.Start()
		defer poller.Stop()

		logger.Info("watching inbox",
			"interval_sec", Application.Config.Mailbox.PollIntervalSec)

		for {
			select {
			case <-sigCh:
				logger.Info("shutting down")
				return nil

			case result := <-poller.Results():
				if result.AuthError != nil {
					return fmt.Errorf("%s", result.AuthError.Message)
				}
				if result.Error != nil {
					logger.Error("poll failed", "error", result.Error)
					continue
				}
				for _, analysis := range result.Analyses {
					logger.Info("triaged message",
						"subject", analysis.Email.Subject,
						"from", analysis.Email.FromAddress,
						"score", analysis.Priority.Score,
						"category", analysis.Priority.Category,
						"actions", len(analysis.Actions),
					)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
