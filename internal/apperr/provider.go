package apperr

import (
	"context"
	"errors"

	"github.com/pathwise/pathwise/internal/llm"
	"github.com/pathwise/pathwise/internal/llmjson"
	"github.com/pathwise/pathwise/internal/store"
)

// FromProvider classifies an error returned by a model provider, the
// parser or a content lookup. Errors that are already classified pass
// through unchanged.
func FromProvider(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		classified *Error
		missing    *llm.ErrMissingCredential
		timeout    *llm.ErrTimeout
		parse      *llmjson.ParseError
		invalid    *llm.ErrInvalidResponse
		truncated  *llm.ErrMaxTokensExceeded
	)
	switch {
	case errors.As(err, &classified):
		return err
	case errors.Is(err, store.ErrNotFound):
		return New(KindNotFound, op, err)
	case errors.As(err, &missing),
		errors.Is(err, llm.ErrUnknownProvider),
		errors.Is(err, llm.ErrAudioUnsupported):
		return New(KindProviderUnavailable, op, err)
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return New(KindProviderTimeout, op, err)
	case errors.As(err, &parse):
		return New(KindParseFailure, op, err).WithRaw(parse.Raw)
	case errors.As(err, &invalid):
		return New(KindProviderFault, op, err).WithRaw(invalid.Text)
	case errors.As(err, &truncated):
		return New(KindProviderFault, op, err).WithRaw(truncated.Text)
	default:
		return New(KindProviderFault, op, err)
	}
}
