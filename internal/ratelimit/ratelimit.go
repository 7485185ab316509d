package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/amishk599/boxscore/internal/ai"
)

// LimitedProvider is a decorator that paces calls to the wrapped ai.Provider.
// It only delays; a failed call is never repeated.
type LimitedProvider struct {
	inner   ai.Provider
	limiter *rate.Limiter
}

// NewLimitedProvider wraps inner with a token bucket allowing perSecond calls
// per second (burst 1). A non-positive perSecond returns inner unchanged.
func NewLimitedProvider(inner ai.Provider, perSecond float64) ai.Provider {
	if perSecond <= 0 {
		return inner
	}
	return &LimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Complete waits for the limiter to allow a call, then delegates to the wrapped provider.
func (p *LimitedProvider) Complete(ctx context.Context, prompt string, opts ai.CompletionOptions) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}
	return p.inner.Complete(ctx, prompt, opts)
}
