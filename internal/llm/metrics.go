package llm

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the provider call collectors.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathwise_llm_requests_total",
			Help: "LLM provider calls by model, purpose and outcome.",
		}, []string{"model", "purpose", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathwise_llm_request_duration_seconds",
			Help:    "LLM provider call latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"model", "purpose"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration)
	}
	return m
}

// MetricsProvider is a decorator that counts and times provider calls.
type MetricsProvider struct {
	inner   Provider
	metrics *Metrics
}

// WithMetrics wraps a Provider with call metrics.
func WithMetrics(p Provider, m *Metrics) Provider {
	return &MetricsProvider{inner: p, metrics: m}
}

func (m *MetricsProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := m.inner.Generate(ctx, req)
	m.observe(ctx, start, err)
	return resp, err
}

func (m *MetricsProvider) GenerateFromAudio(ctx context.Context, req AudioRequest) (*Response, error) {
	ap, err := audioOf(m.inner)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := ap.GenerateFromAudio(ctx, req)
	m.observe(ctx, start, err)
	return resp, err
}

func (m *MetricsProvider) ModelID() string {
	return m.inner.ModelID()
}

func (m *MetricsProvider) observe(ctx context.Context, start time.Time, err error) {
	model, purpose := m.inner.ModelID(), PurposeFrom(ctx)
	m.metrics.Duration.WithLabelValues(model, purpose).Observe(time.Since(start).Seconds())
	m.metrics.Requests.WithLabelValues(model, purpose, outcome(err)).Inc()
}

// outcome labels an error by its type.
func outcome(err error) string {
	var (
		rl      *ErrRateLimit
		timeout *ErrTimeout
		missing *ErrMissingCredential
		invalid *ErrInvalidResponse
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &missing):
		return "unconfigured"
	case errors.As(err, &invalid):
		return "invalid_response"
	default:
		return "error"
	}
}
