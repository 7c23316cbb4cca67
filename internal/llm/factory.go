package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/pathwise/pathwise/internal/logger"
	"github.com/pathwise/pathwise/internal/store"
)

// RegistryOptions holds the optional collaborators of a Registry.
type RegistryOptions struct {
	EventRepo store.EventRepo // audit log; nil disables it
	Metrics   *Metrics        // nil disables metrics
	Logger    *logger.Logger
	Mock      *MockProvider // served for the "mock" name
}

// Registry builds providers by name on first use and caches them.
// Construction is lazy so an unconfigured provider only fails the requests
// that ask for it.
type Registry struct {
	cfg  Config
	opts RegistryOptions

	mu        sync.Mutex
	providers map[string]Provider
}

// NewRegistry creates a Registry over cfg.
func NewRegistry(cfg Config, opts RegistryOptions) *Registry {
	opts.Logger = logger.Or(opts.Logger)
	if opts.Mock == nil {
		opts.Mock = NewMockProvider()
	}
	return &Registry{
		cfg:       cfg,
		opts:      opts,
		providers: make(map[string]Provider),
	}
}

// Default returns the name of the configured default provider.
func (r *Registry) Default() string {
	return r.cfg.Provider
}

// Provider returns the decorated provider for name; an empty name selects
// the default. Missing settings are reported as *ErrMissingCredential and
// unknown names wrap ErrUnknownProvider.
func (r *Registry) Provider(ctx context.Context, name string) (Provider, error) {
	if name == "" {
		name = r.cfg.Provider
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[name]; ok {
		return p, nil
	}

	if err := r.cfg.validateProvider(name); err != nil {
		return nil, err
	}

	base, err := r.newBase(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}

	p := r.decorate(name, base)
	r.providers[name] = p
	r.opts.Logger.Debug("llm provider ready", "provider", name, "model", base.ModelID())
	return p, nil
}

// Audio returns an audio-capable provider. An empty name selects Gemini,
// the only hosted provider that grades recorded speech.
func (r *Registry) Audio(ctx context.Context, name string) (AudioProvider, error) {
	if name == "" {
		name = ProviderGemini
	}
	if name != ProviderGemini && name != ProviderMock {
		return nil, fmt.Errorf("%s: %w", name, ErrAudioUnsupported)
	}
	p, err := r.Provider(ctx, name)
	if err != nil {
		return nil, err
	}
	return audioOf(p)
}

func (r *Registry) newBase(ctx context.Context, name string) (Provider, error) {
	switch name {
	case ProviderOllama:
		return NewOllamaProvider(r.cfg.Ollama)
	case ProviderGemini:
		return NewGeminiProvider(ctx, r.cfg.Gemini)
	case ProviderAnthropic:
		return NewAnthropicProvider(r.cfg.Anthropic)
	case ProviderOpenAI:
		return NewOpenAIProvider(r.cfg.OpenAI)
	case ProviderMock:
		return r.opts.Mock, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// decorate wraps base with middleware:
// caller → timeout → retry → metrics → logging → base.
// Every attempt is logged and measured; the timeout spans all retries.
func (r *Registry) decorate(name string, base Provider) Provider {
	p := base
	if r.opts.EventRepo != nil {
		p = WithLogging(p, name, r.opts.EventRepo, r.opts.Logger)
	}
	if r.opts.Metrics != nil {
		p = WithMetrics(p, r.opts.Metrics)
	}
	p = WithRetry(p, r.cfg.Retry)
	return WithTimeout(p, r.cfg.Timeout)
}
