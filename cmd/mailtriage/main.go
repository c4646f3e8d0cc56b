package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/kannann1/mail-response-ai/internal/app"
	"github.com/kannann1/mail-response-ai/internal/cli"
	"github.com/kannann1/mail-response-ai/internal/model"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// A .env file is optional; it can carry MAILTRIAGE_PASSWORD and
	// MAILTRIAGE_CONFIG for development setups.
	_ = godotenv.Load()

	cli.SetVersionInfo(version, commit, date)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	configPath := os.Getenv("MAILTRIAGE_CONFIG")
	if configPath == "" {
		configPath = model.DefaultConfigPath()
	}

	application, err := app.New(configPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing mailtriage: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	cli.Application = application

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
