package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/masterversa/acharya/internal/agentapi"
	"github.com/masterversa/acharya/internal/config"
	"github.com/masterversa/acharya/internal/generation"
	"github.com/masterversa/acharya/internal/knowledge"
	"github.com/masterversa/acharya/internal/observability"
	"github.com/masterversa/acharya/internal/sessions"
	"github.com/masterversa/acharya/internal/telegram"
)

func buildServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "acharya.yaml", "Path to configuration file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(registry)

	agent, err := agentapi.NewClient(agentapi.Config{
		BaseURL:    cfg.Agent.BaseURL,
		AppName:    cfg.Agent.AppName,
		Timeout:    cfg.Agent.Timeout,
		RunTimeout: cfg.Agent.RunTimeout,
		Logger:     logger,
		Metrics:    metrics,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The bot is useless without the agent service, so refuse to start.
	if err := agent.Ping(ctx); err != nil {
		return fmt.Errorf("agent service is not reachable at %s: %w", cfg.Agent.BaseURL, err)
	}

	generator, err := generation.New(generation.Config{
		Provider: cfg.Generator.Provider,
		APIKey:   cfg.Generator.APIKey,
		Model:    cfg.Generator.Model,
	})
	if err != nil {
		return err
	}

	knowledgeSvc := knowledge.NewService(knowledge.ServiceConfig{
		Generator: generator,
		TTL:       cfg.Cache.TTL,
		CacheSize: cfg.Cache.MaxSize,
		Logger:    logger,
		Metrics:   metrics,
	})
	defer knowledgeSvc.Close()

	manager := sessions.NewManager(sessions.NewMemoryStore(), agent, logger)

	bot, err := telegram.New(telegram.Config{
		Token:      cfg.Telegram.BotToken,
		RateLimit:  cfg.Telegram.RateLimit,
		RateBurst:  cfg.Telegram.RateBurst,
		RunTimeout: cfg.Agent.RunTimeout,
		Logger:     logger,
		Metrics:    metrics,
	}, manager, agent, knowledgeSvc)
	if err != nil {
		return err
	}

	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Listen, registry, logger)
		go metricsServer.Start()
	}

	logger.Info("starting",
		"version", version,
		"agent_url", cfg.Agent.BaseURL,
		"app_name", cfg.Agent.AppName,
		"generator", generator.Name())

	bot.Start(ctx)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
