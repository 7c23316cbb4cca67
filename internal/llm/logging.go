package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pathwise/pathwise/internal/logger"
	"github.com/pathwise/pathwise/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	name      string
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithLogging wraps a Provider with event logging. name is the provider
// name recorded with each event.
func WithLogging(p Provider, name string, repo store.EventRepo, log *logger.Logger) Provider {
	return &LoggingProvider{inner: p, name: name, eventRepo: repo, log: logger.Or(log)}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	l.record(ctx, serializeRequest(req), start, resp, err)
	return resp, err
}

// GenerateFromAudio logs audio requests like text ones; the audio itself
// is represented by its file name.
func (l *LoggingProvider) GenerateFromAudio(ctx context.Context, req AudioRequest) (*Response, error) {
	ap, err := audioOf(l.inner)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := ap.GenerateFromAudio(ctx, req)
	body := fmt.Sprintf("[audio: %s %s]\n", req.AudioPath, req.MIMEType) + serializeRequest(req.Request)
	l.record(ctx, body, start, resp, err)
	return resp, err
}

func (l *LoggingProvider) record(ctx context.Context, body string, start time.Time, resp *Response, err error) {
	data := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: body,
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Text
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed",
			"provider", l.name, "model", data.Model, "purpose", data.Purpose, "error", err)
	}

	// Logging failures never fail the request.
	if logErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		l.log.Warn("failed to log LLM request event", "error", logErr)
	}
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
