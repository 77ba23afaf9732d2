// Package config loads and validates the service configuration from YAML,
// with environment variables expanded in the file and a small set of
// well-known variables overriding individual fields.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Agent     AgentConfig     `yaml:"agent"`
	Generator GeneratorConfig `yaml:"generator"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	// RateLimit is the outbound messages-per-second budget per bot.
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the rate limiter burst capacity.
	RateBurst int `yaml:"rate_burst"`
}

// AgentConfig configures the upstream agent HTTP API.
type AgentConfig struct {
	BaseURL string `yaml:"base_url"`
	AppName string `yaml:"app_name"`
	// Timeout bounds session and artifact calls.
	Timeout time.Duration `yaml:"timeout"`
	// RunTimeout bounds message runs, which invoke the model.
	RunTimeout time.Duration `yaml:"run_timeout"`
}

// GeneratorConfig configures the knowledge-query model provider. Provider
// calls are single-attempt; there is no retry knob.
type GeneratorConfig struct {
	// Provider is "gemini" or "openai".
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// CacheConfig configures the knowledge response cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
	// MaxSize bounds the entry count (0 = unbounded).
	MaxSize int `yaml:"max_size"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`
	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Defaults applied when the file omits a field.
const (
	defaultAppName      = "masterversacharya"
	defaultAgentURL     = "http://localhost:8000"
	defaultAgentTimeout = 10 * time.Second
	defaultRunTimeout   = 15 * time.Second
	defaultCacheTTL     = 24 * time.Hour
	defaultRateLimit    = 25.0
	defaultRateBurst    = 5
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultMetricsAddr  = ":9090"
)

func (c *Config) applyDefaults() {
	if c.Agent.BaseURL == "" {
		c.Agent.BaseURL = defaultAgentURL
	}
	if c.Agent.AppName == "" {
		c.Agent.AppName = defaultAppName
	}
	if c.Agent.Timeout <= 0 {
		c.Agent.Timeout = defaultAgentTimeout
	}
	if c.Agent.RunTimeout <= 0 {
		c.Agent.RunTimeout = defaultRunTimeout
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = defaultCacheTTL
	}
	if c.Telegram.RateLimit <= 0 {
		c.Telegram.RateLimit = defaultRateLimit
	}
	if c.Telegram.RateBurst <= 0 {
		c.Telegram.RateBurst = defaultRateBurst
	}
	if c.Generator.Provider == "" {
		c.Generator.Provider = "gemini"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = defaultMetricsAddr
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.New("config: telegram.bot_token is required (or set TELEGRAM_BOT_TOKEN)")
	}
	if c.Generator.APIKey == "" {
		return errors.New("config: generator.api_key is required (or set GOOGLE_API_KEY / OPENAI_API_KEY)")
	}
	switch c.Generator.Provider {
	case "gemini", "google", "openai":
	default:
		return fmt.Errorf("config: unknown generator.provider %q", c.Generator.Provider)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging.level %q", c.Logging.Level)
	}
	return nil
}
