package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kannann1/mail-response-ai/internal/credential"
	"github.com/kannann1/mail-response-ai/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration and credentials",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := model.DefaultConfigPath()

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		cfg, err := model.LoadConfig(path)
		if err != nil {
			return err
		}
		if err := model.SaveConfig(path, cfg); err != nil {
			return err
		}

		fmt.Printf("Wrote default configuration to %s\n", path)
		fmt.Println("Edit it to set your mailbox account, then run 'mailtriage config set-password'.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireApp(); err != nil {
			return err
		}

		cfg := Application.Config
		fmt.Printf("user:     %s (%s), style %q\n",
			cfg.User.Name, cfg.User.Role, cfg.User.CommunicationStyle)
		fmt.Printf("mailbox:  %s via %s:%s / %s:%s (tls=%v)\n",
			cfg.Mailbox.Username,
			cfg.Mailbox.IMAPHost, cfg.Mailbox.IMAPPort,
			cfg.Mailbox.SMTPHost, cfg.Mailbox.SMTPPort,
			cfg.Mailbox.UseTLS)
		fmt.Printf("ollama:   %s model %s\n", cfg.Ollama.Host, cfg.Ollama.Model)
		fmt.Printf("contacts: %d VIP, %d important\n",
			len(cfg.Contacts.VIP), len(cfg.Contacts.Important))
		fmt.Printf("review:   always_review=%v\n", cfg.Review.AlwaysReview)
		return nil
	},
}

var configSetPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the mailbox password in the system keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("Mailbox password: ")

		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		password = strings.TrimRight(password, "\r\n")
		if password == "" {
			return fmt.Errorf("empty password")
		}

		if err := credential.SetMailboxPassword(password); err != nil {
			return err
		}

		fmt.Println("Password stored.")
		return nil
	},
}

var configClearPasswordCmd = &cobra.Command{
	Use:   "clear-password",
	Short: "Remove the mailbox password from the system keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credential.ClearMailboxPassword(); err != nil {
			return err
		}

		fmt.Println("Password removed.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetPasswordCmd)
	configCmd.AddCommand(configClearPasswordCmd)
	rootCmd.AddCommand(configCmd)
}
