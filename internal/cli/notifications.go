package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show unread priority notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		notifications, err := Application.Store.GetUnreadNotifications(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing notifications: %w", err)
		}

		if len(notifications) == 0 {
			fmt.Println("No unread notifications.")
			return nil
		}

		for _, n := range notifications {
			fmt.Printf("%s  [%s] %s\n", n.ID, n.Category, n.Message)
			fmt.Printf("          at %s\n", n.CreatedAt.Format("2006-01-02 15:04"))
		}

		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		err := Application.Store.MarkNotificationRead(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("marking notification read: %w", err)
		}

		fmt.Printf("Notification %s marked read.\n", args[0])
		return nil
	},
}

func init() {
	notificationsCmd.AddCommand(notificationsReadCmd)
	rootCmd.AddCommand(notificationsCmd)
}
