package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kannann1/mail-response-ai/internal/model"
	"github.com/kannann1/mail-response-ai/internal/triage"
)

var (
	triageDays  int
	triageLimit int
	triageDraft bool
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Fetch and analyze inbox messages once",
	Long: `Fetch unread messages (or recent messages with --days), run each
through priority scoring and action item extraction, and store the
results. With --draft, a reply draft is also generated per message.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireMailbox(); err != nil {
			return err
		}

		ctx := cmd.Context()

		var (
			messages []model.RawMessage
			err      error
		)
		if triageDays > 0 {
			messages, err = Application.Mailbox.Recent(ctx, triageDays, triageLimit)
		} else {
			messages, err = Application.Mailbox.Unread(ctx, triageLimit)
		}
		if err != nil {
			return fmt.Errorf("fetching messages: %w", err)
		}

		if len(messages) == 0 {
			fmt.Println("No messages to triage.")
			return nil
		}

		for _, raw := range messages {
			analysis, err := Application.Triager.Process(ctx, raw)
			if err != nil {
				return fmt.Errorf("processing message %d: %w", raw.UID, err)
			}

			printAnalysis(analysis)

			if triageDraft {
				draft, id, err := Application.Triager.DraftReply(
					ctx, analysis.Email, nil,
				)
				if err != nil {
					return fmt.Errorf("drafting reply: %w", err)
				}
				printDraft(draft, id)
			}
		}

		return nil
	},
}

// printAnalysis renders one triaged message.
func printAnalysis(a triage.Analysis) {
	fmt.Printf("[%s] %s\n", strings.ToUpper(a.Priority.Category), a.Email.Subject)
	fmt.Printf("  from:  %s <%s>\n", a.Email.FromDisplay, a.Email.FromAddress)
	fmt.Printf("  score: %d (%s)\n",
		a.Priority.Score, strings.Join(a.Priority.Explanations, ", "))

	for _, item := range a.Actions {
		line := fmt.Sprintf("  task:  %s", item.Text)
		if item.DueDate != "" {
			line += fmt.Sprintf(" (due %s)", item.DueDate)
		}
		fmt.Println(line)
	}
	fmt.Println()
}

// printDraft renders a generated reply draft.
func printDraft(d model.ResponseDraft, id string) {
	review := "auto-sendable"
	if d.NeedsReview {
		review = "needs review"
	}
	fmt.Printf("  draft %s (confidence %.2f, %s):\n", id, d.ConfidenceScore, review)
	for _, line := range strings.Split(d.ResponseText, "\n") {
		fmt.Printf("    %s\n", line)
	}
	fmt.Println()
}

func init() {
	triageCmd.Flags().IntVar(&triageDays, "days", 0,
		"triage messages from the last N days instead of unread only")
	triageCmd.Flags().IntVar(&triageLimit, "limit", 50,
		"maximum number of messages to fetch")
	triageCmd.Flags().BoolVar(&triageDraft, "draft", false,
		"also generate a reply draft for each message")
	rootCmd.AddCommand(triageCmd)
}
