// Package cli implements the mailtriage command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kannann1/mail-response-ai/internal/app"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// Application is the wired application used by the commands. Set by
// main before Execute.
var Application *app.App

var rootCmd = &cobra.Command{
	Use:   "mailtriage",
	Short: "AI-assisted email triage from the terminal",
	Long: `mailtriage reads your inbox over IMAP, scores each message for
priority, extracts action items into a local task list, and drafts
replies in your own voice using a local Ollama model.

All analysis runs locally; nothing leaves your machine except the
IMAP/SMTP traffic to your own mail server.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mailtriage %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// requireApp guards commands that need the wired application.
func requireApp() error {
	if Application == nil {
		return fmt.Errorf("application not initialized")
	}
	return nil
}

// requireMailbox guards commands that talk to the mail server.
func requireMailbox() error {
	if err := requireApp(); err != nil {
		return err
	}
	if Application.Mailbox == nil {
		return fmt.Errorf("mailbox not configured; run 'mailtriage config init' and set the account password")
	}
	return nil
}
