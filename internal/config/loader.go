package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, expands $VAR references against the
// environment, applies env-var overrides and defaults, and validates the
// result. An empty path loads defaults and overrides only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyOverrides lets well-known environment variables win over the file.
// The credential variables match what the deployment tooling already sets.
func (c *Config) applyOverrides() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("ACHARYA_AGENT_URL"); v != "" {
		c.Agent.BaseURL = v
	}
	if v := os.Getenv("ACHARYA_APP_NAME"); v != "" {
		c.Agent.AppName = v
	}
	if c.Generator.APIKey == "" {
		switch c.Generator.Provider {
		case "openai":
			c.Generator.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			c.Generator.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	}
}
