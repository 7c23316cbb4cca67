package llm

import (
	"context"
	"time"
)

// Provider is the core abstraction for language-model interaction.
// Consumers call Generate with a Request and receive the model's text.
// The text is not guaranteed to be well-formed JSON even when a Schema is
// set; callers parse it through llmjson.
type Provider interface {
	// Generate sends a prompt to the model and returns its output.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// AudioProvider is an optional capability of providers that accept binary
// media alongside a prompt. Only the hosted multimodal provider implements
// it; callers discover it with a type assertion.
type AudioProvider interface {
	Provider

	// GenerateFromAudio sends the audio file at req.AudioPath along with
	// the prompt and returns the model's text.
	GenerateFromAudio(ctx context.Context, req AudioRequest) (*Response, error)
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Sets the model's role and constraints.
	System string

	// Messages is the conversation history. Engine calls are single-turn,
	// so this normally holds one user message.
	Messages []Message

	// Schema, when set, asks the provider to use its native structured
	// output mechanism. Providers without one ignore it.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// AudioRequest is a Request with an audio attachment.
type AudioRequest struct {
	Request

	// AudioPath is a local file path. The caller owns the file.
	AudioPath string

	// MIMEType of the audio, e.g. "audio/wav".
	MIMEType string
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt is shorthand for a single-turn request body.
func UserPrompt(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (used as the schema name for OpenAI and
	// as the compile cache key). Kebab-case, e.g. "quiz".
	Name string

	// Description is a human-readable description of what this schema
	// represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Text is the raw generated output.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string

	// Latency is the wall-clock duration of the provider call.
	Latency time.Duration
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
