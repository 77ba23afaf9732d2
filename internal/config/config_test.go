package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acharya.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "GOOGLE_API_KEY", "OPENAI_API_KEY",
		"ACHARYA_AGENT_URL", "ACHARYA_APP_NAME",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_FullFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  bot_token: "123:abc"
  rate_limit: 10
agent:
  base_url: "http://agent:8000"
  app_name: "acharya"
  timeout: 5s
  run_timeout: 30s
generator:
  provider: gemini
  api_key: "g-key"
  model: "gemini-1.5-pro"
cache:
  ttl: 1h
  max_size: 500
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("BotToken = %q", cfg.Telegram.BotToken)
	}
	if cfg.Agent.BaseURL != "http://agent:8000" || cfg.Agent.RunTimeout != 30*time.Second {
		t.Errorf("Agent = %+v", cfg.Agent)
	}
	if cfg.Cache.TTL != time.Hour || cfg.Cache.MaxSize != 500 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  bot_token: "123:abc"
generator:
  api_key: "g-key"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Agent.BaseURL != defaultAgentURL || cfg.Agent.AppName != defaultAppName {
		t.Errorf("Agent defaults = %+v", cfg.Agent)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
	}
	if cfg.Generator.Provider != "gemini" {
		t.Errorf("Provider = %q", cfg.Generator.Provider)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging defaults = %+v", cfg.Logging)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACHARYA_TEST_TOKEN", "tok-from-env")
	path := writeConfig(t, `
telegram:
  bot_token: "${ACHARYA_TEST_TOKEN}"
generator:
  api_key: "g-key"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "tok-from-env" {
		t.Errorf("BotToken = %q, want tok-from-env", cfg.Telegram.BotToken)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("ACHARYA_AGENT_URL", "http://override:9000")
	path := writeConfig(t, `
telegram:
  bot_token: "file-token"
generator:
  api_key: "g-key"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("BotToken = %q, env override lost", cfg.Telegram.BotToken)
	}
	if cfg.Agent.BaseURL != "http://override:9000" {
		t.Errorf("BaseURL = %q, env override lost", cfg.Agent.BaseURL)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	clearEnv(t)

	if _, err := Load(writeConfig(t, "generator:\n  api_key: k\n")); err == nil {
		t.Error("missing bot token accepted")
	}
	if _, err := Load(writeConfig(t, "telegram:\n  bot_token: t\n")); err == nil {
		t.Error("missing generator key accepted")
	}
}

func TestLoad_ProviderKeyFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	path := writeConfig(t, `
telegram:
  bot_token: "123:abc"
generator:
  provider: openai
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want sk-env", cfg.Generator.APIKey)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	clearEnv(t)
	bad := writeConfig(t, `
telegram:
  bot_token: t
generator:
  provider: cohere
  api_key: k
`)
	if _, err := Load(bad); err == nil {
		t.Error("unknown provider accepted")
	}

	badLevel := writeConfig(t, `
telegram:
  bot_token: t
generator:
  api_key: k
logging:
  level: loud
`)
	if _, err := Load(badLevel); err == nil {
		t.Error("unknown log level accepted")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load("/nonexistent/acharya.yaml"); err == nil {
		t.Error("missing file accepted")
	}
}
