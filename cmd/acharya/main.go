// Package main is the CLI entry point for the MasterversAcharya Telegram
// bot, which bridges Telegram chats to the spiritual-guidance agent API.
//
// Start the bot:
//
//	acharya serve --config acharya.yaml
//
// Configuration can also come from environment variables:
//
//   - TELEGRAM_BOT_TOKEN: Telegram bot token
//   - GOOGLE_API_KEY: Gemini API key for the knowledge service
//   - OPENAI_API_KEY: OpenAI API key when generator.provider is "openai"
//   - ACHARYA_AGENT_URL: Base URL of the agent run service
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags.
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "acharya",
		Short:        "MasterversAcharya - spiritual guidance Telegram bot",
		Long:         "MasterversAcharya relays Telegram conversations to a spiritual-guidance\nagent API, managing per-user sessions and caching knowledge queries.",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(buildServeCmd())
	return rootCmd
}
