package evaluate

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pathwise/pathwise/internal/apperr"
	"github.com/pathwise/pathwise/internal/llm"
)

// SpeechInput is a recorded answer to grade against a reference text.
type SpeechInput struct {
	// Audio is copied verbatim; nothing is transcoded.
	Audio io.Reader `validate:"required"`

	// Filename supplies the container extension. Anything outside wav,
	// mp3, ogg, m4a and webm is treated as wav.
	Filename string

	// Reference is the text the learner was asked to say. When empty it
	// falls back to the body, then the title, of ContentID.
	Reference string
	ContentID string

	// Provider names an audio-capable provider; empty selects gemini.
	Provider string
}

// SpeechResult is the grade of one recording.
type SpeechResult struct {
	Grade    float64 `json:"grade"`
	Feedback string  `json:"feedback"`

	// ParseError is set when the model output could not be decoded; Grade
	// is then 0 and Feedback holds the raw text.
	ParseError bool   `json:"parse_error,omitempty"`
	Raw        string `json:"raw_response,omitempty"`
}

const noFeedback = "No feedback provided."

// EvaluateSpeech grades a recording. The audio lives in a temp file only
// for the duration of the provider call. An unconfigured provider is a
// provider_unavailable error; unparseable grading is not an error.
func (e *Evaluator) EvaluateSpeech(ctx context.Context, in SpeechInput) (_ *SpeechResult, err error) {
	ext := llm.AudioExt(in.Filename)
	ctx, span := tracer.Start(ctx, opSpeech, trace.WithAttributes(
		attribute.String("content.id", in.ContentID),
		attribute.String("audio.ext", ext),
	))
	defer func() { endSpan(span, err) }()

	if err := e.check(opSpeech, in); err != nil {
		return nil, err
	}

	reference, err := e.referenceFor(ctx, in)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(e.config.TempDir, "speech-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp audio file: %w", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			e.log.Warn("failed to remove temp audio file", "path", path, "error", rmErr)
		}
	}()

	n, err := io.Copy(f, in.Audio)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("write temp audio file: %w", err)
	}
	if n == 0 {
		return nil, apperr.Errorf(apperr.KindValidation, opSpeech, "audio is empty")
	}

	provider, err := e.providers.Audio(ctx, in.Provider)
	if err != nil {
		return nil, apperr.FromProvider(opSpeech, err)
	}

	resp, err := provider.GenerateFromAudio(llm.WithPurpose(ctx, llm.PurposeSpeech), llm.AudioRequest{
		Request: llm.Request{
			Messages:    llm.UserPrompt(buildSpeechMessage(reference)),
			Schema:      SpeechSchema,
			MaxTokens:   e.config.SpeechMaxTokens,
			Temperature: e.config.SpeechTemperature,
		},
		AudioPath: path,
		MIMEType:  llm.AudioMIMEType(path),
	})
	if err != nil {
		return nil, apperr.FromProvider(opSpeech, err)
	}

	return e.parseSpeech(resp.Text), nil
}

func (e *Evaluator) parseSpeech(raw string) *SpeechResult {
	var out struct {
		Grade    *float64 `json:"grade"`
		Feedback *string  `json:"feedback"`
	}
	if err := e.speech.Decode(raw, &out); err != nil {
		e.log.Warn("unparseable speech grading", "raw", raw, "error", err)
		return &SpeechResult{Feedback: raw, ParseError: true, Raw: raw}
	}

	res := &SpeechResult{Feedback: noFeedback, Raw: raw}
	if out.Grade != nil {
		res.Grade = min(max(*out.Grade, 0), 100)
	}
	if out.Feedback != nil {
		res.Feedback = *out.Feedback
	}
	return res
}

func (e *Evaluator) referenceFor(ctx context.Context, in SpeechInput) (string, error) {
	if in.Reference != "" {
		return in.Reference, nil
	}
	if in.ContentID == "" {
		return "", apperr.Errorf(apperr.KindValidation, opSpeech, "reference text is required")
	}
	c, err := e.contents.Content(ctx, in.ContentID)
	if err != nil {
		return "", apperr.FromStore(opSpeech, err)
	}
	if c.Body != "" {
		return c.Body, nil
	}
	return c.Title, nil
}
