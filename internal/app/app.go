// Package app wires configuration, credentials, storage, the
// generation service, and the mailbox into a ready-to-use application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	aiservice "github.com/kannann1/mail-response-ai/internal/ai"
	"github.com/kannann1/mail-response-ai/internal/compose"
	"github.com/kannann1/mail-response-ai/internal/credential"
	"github.com/kannann1/mail-response-ai/internal/extract"
	"github.com/kannann1/mail-response-ai/internal/mailbox"
	"github.com/kannann1/mail-response-ai/internal/model"
	"github.com/kannann1/mail-response-ai/internal/priority"
	"github.com/kannann1/mail-response-ai/internal/store"
	appsync "github.com/kannann1/mail-response-ai/internal/sync"
	"github.com/kannann1/mail-response-ai/internal/triage"
)

// passwordEnvVar overrides the keyring lookup for the mailbox password.
const passwordEnvVar = "MAILTRIAGE_PASSWORD"

// pingTimeout bounds the startup reachability check of the generation
// service.
const pingTimeout = 3 * time.Second

// App holds the assembled application components. Generator and
// Mailbox may be nil when unconfigured or unreachable; the pipeline
// degrades rather than failing.
type App struct {
	Config    *model.AppConfig
	Store     *store.SQLiteStore
	Generator aiservice.Generator
	Mailbox   *mailbox.Mailbox
	Triager   *triage.Service
	Logger    *slog.Logger
}

// New loads configuration from configPath, opens the local database,
// and assembles the triage pipeline.
func New(configPath string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dbPath := model.DefaultDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	gen := connectGenerator(cfg.Ollama, logger)
	mb := connectMailbox(cfg.Mailbox, logger)

	scorer := priority.NewScorer(cfg.Contacts)
	extractor := extract.New(gen)
	composer := compose.New(gen, cfg.User, cfg.Contacts, cfg.Review)
	composer.Tune(cfg.Ollama.Temperature, cfg.Ollama.MaxTokens)

	if samples, err := st.GetStyleSamples(context.Background()); err == nil && len(samples) > 0 {
		texts := make([]string, 0, len(samples))
		for _, s := range samples {
			texts = append(texts, s.Text)
		}
		composer.SetStyleSamples(texts)
	}

	return &App{
		Config:    cfg,
		Store:     st,
		Generator: gen,
		Mailbox:   mb,
		Triager:   triage.New(scorer, extractor, composer, st),
		Logger:    logger,
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	return a.Store.Close()
}

// NewPoller creates a background watcher over the app's mailbox.
func (a *App) NewPoller() (*appsync.Poller, error) {
	if a.Mailbox == nil {
		return nil, fmt.Errorf("mailbox not configured")
	}
	interval := time.Duration(a.Config.Mailbox.PollIntervalSec) * time.Second
	return appsync.New(a.Mailbox, a.Triager, interval, 50), nil
}

// connectGenerator builds the Ollama client and verifies it is
// reachable. Returns nil when unconfigured or unreachable.
func connectGenerator(
	cfg model.OllamaConfig,
	logger *slog.Logger,
) aiservice.Generator {
	if cfg.Host == "" || cfg.Model == "" {
		logger.Info("generation service not configured; AI features disabled")
		return nil
	}

	client := aiservice.NewOllamaClient(cfg.Host, cfg.Model)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		logger.Warn("generation service unreachable; AI features disabled",
			"host", cfg.Host, "error", err)
		return nil
	}

	return client
}

// connectMailbox builds the mailbox when an account and password are
// available. The password comes from the environment first, then the
// system keyring.
func connectMailbox(
	cfg model.MailboxConfig,
	logger *slog.Logger,
) *mailbox.Mailbox {
	if cfg.Username == "" || cfg.IMAPHost == "" {
		logger.Info("mailbox not configured; fetch and send disabled")
		return nil
	}

	password := os.Getenv(passwordEnvVar)
	if password == "" {
		var err error
		password, err = credential.MailboxPassword()
		if err != nil {
			logger.Warn("mailbox password unavailable; fetch and send disabled",
				"error", err)
			return nil
		}
	}

	return mailbox.New(cfg, password)
}
