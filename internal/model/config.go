package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// UserProfile describes the person the assistant drafts replies for.
type UserProfile struct {
	// Name is the user's display name, used in signatures.
	Name string `mapstructure:"name" yaml:"name"`

	// Role is the user's job title, used in prompts and signatures.
	Role string `mapstructure:"role" yaml:"role"`

	// Email is the address replies are sent from.
	Email string `mapstructure:"email" yaml:"email"`

	// CommunicationStyle steers the tone of generated replies
	// (e.g., "professional", "casual").
	CommunicationStyle string `mapstructure:"communication_style" yaml:"communication_style"`
}

// ContactsConfig holds the sender-importance lists consulted by the
// priority scorer and the review policy.
type ContactsConfig struct {
	// VIP addresses always score highest and force draft review.
	VIP []string `mapstructure:"vip" yaml:"vip"`

	// Important addresses score above ordinary senders.
	Important []string `mapstructure:"important" yaml:"important"`
}

// MailboxConfig holds the IMAP/SMTP connection settings.
type MailboxConfig struct {
	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort string `mapstructure:"imap_port" yaml:"imap_port"`
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort string `mapstructure:"smtp_port" yaml:"smtp_port"`
	Username string `mapstructure:"username" yaml:"username"`
	UseTLS   bool   `mapstructure:"use_tls" yaml:"use_tls"`

	// PollIntervalSec is how often (in seconds) the watcher checks
	// for new mail.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// OllamaConfig holds settings for the local text generation service.
type OllamaConfig struct {
	Host        string  `mapstructure:"host" yaml:"host"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// ReviewConfig holds the draft review policy.
type ReviewConfig struct {
	// AlwaysReview forces every generated draft to be flagged for
	// human review regardless of confidence. Defaults to true.
	AlwaysReview bool `mapstructure:"always_review" yaml:"always_review"`
}

// AppConfig is the top-level application configuration. It is read
// once at startup and treated as immutable; components capture the
// pieces they need at construction time.
type AppConfig struct {
	User     UserProfile    `mapstructure:"user" yaml:"user"`
	Contacts ContactsConfig `mapstructure:"contacts" yaml:"contacts"`
	Mailbox  MailboxConfig  `mapstructure:"mailbox" yaml:"mailbox"`
	Ollama   OllamaConfig   `mapstructure:"ollama" yaml:"ollama"`
	Review   ReviewConfig   `mapstructure:"review" yaml:"review"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailtriage/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailtriage", "config.yaml")
}

// DefaultDBPath returns the default path for the local database,
// located next to the configuration file.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "mailtriage.db")
	}
	return filepath.Join(home, ".config", "mailtriage", "mailtriage.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		User: UserProfile{
			Name:               "User",
			Role:               "Professional",
			CommunicationStyle: "professional",
		},
		Mailbox: MailboxConfig{
			IMAPPort:        "993",
			SMTPPort:        "465",
			UseTLS:          true,
			PollIntervalSec: 120,
		},
		Ollama: OllamaConfig{
			Host:        "http://localhost:11434",
			Model:       "llama3",
			Temperature: 0.7,
		},
		Review: ReviewConfig{
			AlwaysReview: true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("user.name", "User")
	v.SetDefault("user.role", "Professional")
	v.SetDefault("user.communication_style", "professional")
	v.SetDefault("mailbox.imap_port", "993")
	v.SetDefault("mailbox.smtp_port", "465")
	v.SetDefault("mailbox.use_tls", true)
	v.SetDefault("mailbox.poll_interval_sec", 120)
	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3")
	v.SetDefault("ollama.temperature", 0.7)
	v.SetDefault("review.always_review", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Mailbox.PollIntervalSec <= 0 {
		cfg.Mailbox.PollIntervalSec = 120
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("user", cfg.User)
	v.Set("contacts", cfg.Contacts)
	v.Set("mailbox", cfg.Mailbox)
	v.Set("ollama", cfg.Ollama)
	v.Set("review", cfg.Review)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
