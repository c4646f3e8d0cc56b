package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Manage writing style samples used for reply drafting",
}

var styleAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a sample of your own writing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		text := strings.Join(args, " ")
		if err := Application.Store.AddStyleSample(cmd.Context(), text); err != nil {
			return err
		}

		fmt.Println("Style sample added.")
		return nil
	},
}

var styleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored style samples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		samples, err := Application.Store.GetStyleSamples(cmd.Context())
		if err != nil {
			return err
		}

		if len(samples) == 0 {
			fmt.Println("No style samples.")
			return nil
		}

		for _, s := range samples {
			fmt.Printf("%s  %s\n", s.ID, s.Text)
		}
		return nil
	},
}

var styleRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a style sample",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		if err := Application.Store.DeleteStyleSample(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Style sample %s deleted.\n", args[0])
		return nil
	},
}

func init() {
	styleCmd.AddCommand(styleAddCmd)
	styleCmd.AddCommand(styleListCmd)
	styleCmd.AddCommand(styleRmCmd)
	rootCmd.AddCommand(styleCmd)
}
