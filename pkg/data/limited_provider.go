package data

import (
	"context"
	"time"

	"github.com/ducminhle1904/mc-portfolio/internal/safety"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
)

// Request budgets for the remote sources
const (
	YahooRequestsPerSecond = 2.0
	YahooBurst             = 4
	BybitRequestsPerSecond = 10.0
	BybitBurst             = 10
)

// RateLimitedProvider spaces out History calls to a remote source
type RateLimitedProvider struct {
	provider PriceHistoryProvider
	limiter  *safety.RateLimiter
}

// NewRateLimitedProvider wraps provider so every History call takes a token from limiter
func NewRateLimitedProvider(provider PriceHistoryProvider, limiter *safety.RateLimiter) *RateLimitedProvider {
	return &RateLimitedProvider{provider: provider, limiter: limiter}
}

// Name returns the name of the underlying provider
func (p *RateLimitedProvider) Name() string {
	return p.provider.Name()
}

// History implements PriceHistoryProvider
func (p *RateLimitedProvider) History(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.provider.History(ctx, ticker, start, end)
}
