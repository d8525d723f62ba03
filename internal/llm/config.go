package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures the LLM provider.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "mock".
	Provider string

	APIKey string
	Model  string

	Retry   RetryConfig
	Timeout time.Duration
}

// RetryConfig bounds the retry middleware.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns defaults suitable for short scoring calls.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from ALGODRILL_* environment variables,
// falling back to the standard provider key variables and then defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("ALGODRILL_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if m := os.Getenv("ALGODRILL_LLM_MODEL"); m != "" {
		cfg.Model = m
	}
	if k := os.Getenv("ALGODRILL_LLM_API_KEY"); k != "" {
		cfg.APIKey = k
		return cfg
	}

	// Fall back to the conventional per-provider key variables.
	switch cfg.Provider {
	case "anthropic":
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "openai":
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	case "gemini":
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return cfg
}

// Validate checks the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "gemini":
		if c.APIKey == "" {
			return fmt.Errorf("API key is required for the %s provider", c.Provider)
		}
	case "mock":
		// No key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// defaultModels maps each provider to the model used when none is set.
var defaultModels = map[string]string{
	"anthropic": "claude-haiku-4-5-20251001",
	"openai":    "gpt-4o-mini",
	"gemini":    "gemini-2.0-flash",
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}
