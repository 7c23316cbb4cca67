package llm

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrUnknownProvider is returned for provider names outside the list below.
var ErrUnknownProvider = errors.New("unknown LLM provider")

// Provider names accepted by Config.Provider and by per-request provider
// selection.
const (
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the default text provider.
	// Values: "ollama", "gemini", "anthropic", "openai", "mock"
	Provider string

	Ollama    OllamaConfig
	Gemini    GeminiConfig
	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Retry     RetryConfig

	// Timeout bounds a single provider call, retries included.
	// Default: 30s.
	Timeout time.Duration
}

// OllamaConfig holds configuration for the local model server. Ollama
// serves an OpenAI-compatible API under /v1.
type OllamaConfig struct {
	BaseURL string // Default: "http://localhost:11434/v1"
	Model   string // Default: "llama3.1:8b"
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderOllama,
		Ollama: OllamaConfig{
			BaseURL: defaultOllamaBaseURL,
			Model:   "llama3.1:8b",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. The standard GEMINI_API_KEY,
// ANTHROPIC_API_KEY and OPENAI_API_KEY variables are honored when the
// PATHWISE_-prefixed ones are unset.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("PATHWISE_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if u := os.Getenv("PATHWISE_OLLAMA_BASE_URL"); u != "" {
		cfg.Ollama.BaseURL = u
	}
	if m := os.Getenv("PATHWISE_OLLAMA_MODEL"); m != "" {
		cfg.Ollama.Model = m
	}

	cfg.Gemini.APIKey = firstEnv("PATHWISE_GEMINI_API_KEY", "GEMINI_API_KEY")
	if m := os.Getenv("PATHWISE_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	cfg.Anthropic.APIKey = firstEnv("PATHWISE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	if m := os.Getenv("PATHWISE_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	cfg.OpenAI.APIKey = firstEnv("PATHWISE_OPENAI_API_KEY", "OPENAI_API_KEY")
	if m := os.Getenv("PATHWISE_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("PATHWISE_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if t := os.Getenv("PATHWISE_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that the default provider has its required settings.
func (c Config) Validate() error {
	return c.validateProvider(c.Provider)
}

// validateProvider checks a single provider's settings. A missing API key
// is reported as *ErrMissingCredential.
func (c Config) validateProvider(name string) error {
	switch name {
	case ProviderOllama:
		if c.Ollama.BaseURL == "" {
			return &ErrMissingCredential{Provider: name, EnvVar: "PATHWISE_OLLAMA_BASE_URL"}
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return &ErrMissingCredential{Provider: name, EnvVar: "GEMINI_API_KEY"}
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return &ErrMissingCredential{Provider: name, EnvVar: "ANTHROPIC_API_KEY"}
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return &ErrMissingCredential{Provider: name, EnvVar: "OPENAI_API_KEY"}
		}
	case ProviderMock:
		// No settings needed.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return nil
}
