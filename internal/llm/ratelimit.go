// File path: internal/llm/ratelimit.go
package llm

import (
	"context"
	"os"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerSecond = 2
	defaultBurst             = 4
)

// limitedProvider throttles calls to the wrapped backend so a burst of
// concurrent diagnosis requests cannot stampede it.
type limitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps a provider with a token-bucket limiter.
func WithRateLimit(inner Provider, rps float64, burst int) Provider {
	if inner == nil {
		return nil
	}
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &limitedProvider{inner: inner, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func withConfiguredRateLimit(inner Provider) Provider {
	rps := float64(defaultRequestsPerSecond)
	if raw := strings.TrimSpace(os.Getenv("LLM_RATE_LIMIT")); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			rps = parsed
		}
	}
	return WithRateLimit(inner, rps, defaultBurst)
}

func (l *limitedProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.inner.Chat(ctx, messages)
}

func (l *limitedProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.Embed(ctx, input)
}

func (l *limitedProvider) Name() string {
	return l.inner.Name()
}

func (l *limitedProvider) Model() string {
	return l.inner.Model()
}
