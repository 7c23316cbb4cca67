package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the provider returned a response with no
// usable text (no choices, no text block).
type ErrInvalidResponse struct {
	Text string
	Err  error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Text string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrMissingCredential indicates a provider cannot be used because its
// API key or other required configuration is absent. It is a configuration
// problem, never retried.
type ErrMissingCredential struct {
	Provider string
	EnvVar   string
}

func (e *ErrMissingCredential) Error() string {
	if e.EnvVar != "" {
		return fmt.Sprintf("%s provider not configured: %s is not set", e.Provider, e.EnvVar)
	}
	return fmt.Sprintf("%s provider not configured", e.Provider)
}

// ErrTimeout indicates a provider call exceeded its deadline.
type ErrTimeout struct {
	After time.Duration
	Err   error
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("LLM request timed out after %s", e.After)
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// ErrAudioUnsupported is returned when audio input is sent to a provider
// that only accepts text.
var ErrAudioUnsupported = errors.New("provider does not accept audio input")

// audioOf returns p as an AudioProvider or ErrAudioUnsupported.
func audioOf(p Provider) (AudioProvider, error) {
	ap, ok := p.(AudioProvider)
	if !ok {
		return nil, fmt.Errorf("%s: %w", p.ModelID(), ErrAudioUnsupported)
	}
	return ap, nil
}
