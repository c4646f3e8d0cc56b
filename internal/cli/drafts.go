package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kannann1/mail-response-ai/internal/store"
)

var (
	draftsReviewOnly bool
	draftsLimit      int
	draftsFull       bool
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List generated reply drafts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		filter := store.DraftFilter{Limit: draftsLimit}
		if draftsReviewOnly {
			needsReview := true
			filter.NeedsReview = &needsReview
		}

		drafts, err := Application.Store.GetDrafts(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("listing drafts: %w", err)
		}

		if len(drafts) == 0 {
			fmt.Println("No drafts.")
			return nil
		}

		for _, d := range drafts {
			review := ""
			if d.NeedsReview {
				review = " [needs review]"
			}
			fmt.Printf("%s  [%s]%s reply to %q (%s), confidence %.2f\n",
				d.ID, d.Status, review, d.EmailSubject, d.EmailFrom, d.Confidence)

			if draftsFull {
				for _, line := range strings.Split(d.Formatted, "\n") {
					fmt.Printf("    %s\n", line)
				}
				fmt.Println()
			}
		}

		return nil
	},
}

var draftsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		if err := Application.Store.DeleteDraft(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting draft: %w", err)
		}

		fmt.Printf("Draft %s deleted.\n", args[0])
		return nil
	},
}

func init() {
	draftsCmd.Flags().BoolVar(&draftsReviewOnly, "review", false,
		"only show drafts flagged for review")
	draftsCmd.Flags().IntVar(&draftsLimit, "limit", 20,
		"maximum number of drafts to list")
	draftsCmd.Flags().BoolVar(&draftsFull, "full", false,
		"print the full formatted reply for each draft")

	draftsCmd.AddCommand(draftsRmCmd)
	rootCmd.AddCommand(draftsCmd)
}
