package llm

const defaultOllamaBaseURL = "http://localhost:11434/v1"

// OllamaProvider is the local-model provider. Ollama exposes an
// OpenAI-compatible API, so the OpenAI SDK is reused with a local base URL
// and no API key.
type OllamaProvider struct {
	*OpenAIProvider
}

// NewOllamaProvider creates a provider targeting a local Ollama server.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	inner := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  "ollama",
		Model:   cfg.Model,
		BaseURL: baseURL,
	})
	inner.name = ProviderOllama

	return &OllamaProvider{OpenAIProvider: inner}, nil
}
