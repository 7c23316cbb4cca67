package llm

import (
	"context"
	"errors"
	"time"
)

// TimeoutProvider bounds every call with a deadline. A call that runs past
// it fails with *ErrTimeout.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider with a per-call deadline. A non-positive
// timeout returns p unchanged.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: timeout}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.inner.Generate(ctx, req)
	return resp, t.mapErr(ctx, err)
}

func (t *TimeoutProvider) GenerateFromAudio(ctx context.Context, req AudioRequest) (*Response, error) {
	ap, err := audioOf(t.inner)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := ap.GenerateFromAudio(ctx, req)
	return resp, t.mapErr(ctx, err)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}

// mapErr converts a deadline hit into ErrTimeout. SDKs wrap the context
// error in their own types, so the ctx itself is checked too.
func (t *TimeoutProvider) mapErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ErrTimeout{After: t.timeout, Err: err}
	}
	return err
}
