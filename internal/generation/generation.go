// Package generation wraps the generative-model SDKs behind a single
// prompt-in, text-out interface. Every Generate call is a single attempt;
// failures surface to the caller, which reports them to the user rather
// than retrying.
package generation

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Config selects and configures a provider.
type Config struct {
	// Provider is "gemini" or "openai".
	Provider string
	APIKey   string
	// Model overrides the provider default.
	Model string
}

// New constructs the provider named in cfg.
func New(cfg Config) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini", "google":
		return NewGemini(cfg)
	case "openai":
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("generation: unknown provider %q", cfg.Provider)
	}
}
