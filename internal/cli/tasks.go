package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kannann1/mail-response-ai/internal/model"
	"github.com/kannann1/mail-response-ai/internal/store"
)

var (
	tasksStatus   string
	tasksPriority string
	tasksQuery    string
	tasksLimit    int
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List extracted action items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		filter := store.TaskFilter{
			SortBy:   "created_at",
			SortDesc: true,
			Limit:    tasksLimit,
		}
		if tasksStatus != "" {
			filter.Status = &tasksStatus
		}
		if tasksPriority != "" {
			filter.Priority = &tasksPriority
		}
		if tasksQuery != "" {
			filter.Query = &tasksQuery
		}

		tasks, err := Application.Store.GetTasks(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks.")
			return nil
		}

		for _, t := range tasks {
			due := ""
			if t.DueDate != "" {
				due = fmt.Sprintf(" due %s", t.DueDate)
			}
			fmt.Printf("%s  [%s] %s%s\n", t.ID, t.Status, t.Text, due)
			fmt.Printf("          from %q (%s)\n", t.EmailSubject, t.EmailFrom)
		}

		return nil
	},
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		err := Application.Store.UpdateTaskStatus(
			cmd.Context(), args[0], model.TaskStatusComplete,
		)
		if err != nil {
			return fmt.Errorf("completing task: %w", err)
		}

		fmt.Printf("Task %s marked complete.\n", args[0])
		return nil
	},
}

var tasksRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		if err := Application.Store.DeleteTask(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting task: %w", err)
		}

		fmt.Printf("Task %s deleted.\n", args[0])
		return nil
	},
}

func init() {
	tasksCmd.Flags().StringVar(&tasksStatus, "status", "",
		`filter by status ("Not Started", "In Progress", "Complete")`)
	tasksCmd.Flags().StringVar(&tasksPriority, "priority", "",
		`filter by priority ("High", "Medium", "Low")`)
	tasksCmd.Flags().StringVar(&tasksQuery, "query", "",
		"search task text and email subject")
	tasksCmd.Flags().IntVar(&tasksLimit, "limit", 50,
		"maximum number of tasks to list")

	tasksCmd.AddCommand(tasksDoneCmd)
	tasksCmd.AddCommand(tasksRmCmd)
	rootCmd.AddCommand(tasksCmd)
}
