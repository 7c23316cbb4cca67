package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pathwise/pathwise/internal/app"
	"github.com/pathwise/pathwise/internal/llm"
	"github.com/pathwise/pathwise/internal/logger"
)

// settings is the file and environment configuration of the CLI.
type settings struct {
	LogMode string
	LLM     llm.Config
}

// loadSettings reads, in increasing priority: defaults, an optional
// pathwise.yaml, a .env file and the process environment.
func loadSettings(configFile string) (*settings, error) {
	// A missing .env is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("PATHWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := llm.DefaultConfig()
	v.SetDefault("log.mode", "prod")
	v.SetDefault("llm.provider", cfg.Provider)
	v.SetDefault("llm.timeout", cfg.Timeout)
	v.SetDefault("llm.retry.max_attempts", cfg.Retry.MaxAttempts)
	v.SetDefault("ollama.base_url", cfg.Ollama.BaseURL)
	v.SetDefault("ollama.model", cfg.Ollama.Model)
	v.SetDefault("gemini.model", cfg.Gemini.Model)
	v.SetDefault("anthropic.model", cfg.Anthropic.Model)
	v.SetDefault("openai.model", cfg.OpenAI.Model)
	v.SetDefault("openai.base_url", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("pathwise")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// API keys keep their standard names as a fallback.
	env := llm.ConfigFromEnv()

	cfg.Provider = v.GetString("llm.provider")
	cfg.Timeout = v.GetDuration("llm.timeout")
	cfg.Retry.MaxAttempts = v.GetInt("llm.retry.max_attempts")
	cfg.Ollama.BaseURL = v.GetString("ollama.base_url")
	cfg.Ollama.Model = v.GetString("ollama.model")
	cfg.Gemini.Model = v.GetString("gemini.model")
	cfg.Gemini.APIKey = firstNonEmpty(v.GetString("gemini.api_key"), env.Gemini.APIKey)
	cfg.Anthropic.Model = v.GetString("anthropic.model")
	cfg.Anthropic.APIKey = firstNonEmpty(v.GetString("anthropic.api_key"), env.Anthropic.APIKey)
	cfg.OpenAI.Model = v.GetString("openai.model")
	cfg.OpenAI.BaseURL = v.GetString("openai.base_url")
	cfg.OpenAI.APIKey = firstNonEmpty(v.GetString("openai.api_key"), env.OpenAI.APIKey)

	return &settings{
		LogMode: v.GetString("log.mode"),
		LLM:     cfg,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, s := range vals {
		if s != "" {
			return s
		}
	}
	return ""
}

// openApp builds the engine from flags, config and environment. The
// returned cleanup closes the store and flushes logs.
func openApp(cmd *cobra.Command) (*app.App, func(), error) {
	configFile, _ := cmd.Flags().GetString("config")
	s, err := loadSettings(configFile)
	if err != nil {
		return nil, nil, err
	}
	if mode, _ := cmd.Flags().GetString("log-mode"); mode != "" {
		s.LogMode = mode
	}

	log, err := logger.New(s.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}

	opts := app.DefaultOptions(dbPath)
	opts.LLM = s.LLM
	opts.Logger = log

	a, err := app.New(opts)
	if err != nil {
		return nil, nil, err
	}
	return a, func() {
		a.Close()
		log.Sync()
	}, nil
}
