package data

import (
	"fmt"
	"os"

	"github.com/ducminhle1904/mc-portfolio/internal/exchange/bybit"
	"github.com/ducminhle1904/mc-portfolio/internal/safety"
)

// ProviderOptions selects and configures a provider
type ProviderOptions struct {
	Source   string // csv, yahoo or bybit
	DataRoot string
	// BybitCategory is spot, linear or inverse
	BybitCategory string
	// YahooBaseURL overrides the chart endpoint
	YahooBaseURL string
	// RequestsPerSecond overrides the remote source request budget
	RequestsPerSecond float64
}

// NewProvider builds the provider for a source, wrapped in a cache. Remote
// sources are rate limited. Bybit keys are read from BYBIT_API_KEY and
// BYBIT_API_SECRET when set.
func NewProvider(opts ProviderOptions) (*CachedProvider, error) {
	var provider PriceHistoryProvider

	switch opts.Source {
	case "csv":
		provider = NewCSVProvider(opts.DataRoot)
	case "yahoo", "":
		if opts.YahooBaseURL != "" {
			provider = NewYahooProviderWithURL(opts.YahooBaseURL)
		} else {
			provider = NewYahooProvider()
		}
		provider = NewRateLimitedProvider(provider, opts.limiter("yahoo", YahooBurst, YahooRequestsPerSecond))
	case "bybit":
		client := bybit.NewClient(bybit.Config{
			APIKey:    os.Getenv("BYBIT_API_KEY"),
			APISecret: os.Getenv("BYBIT_API_SECRET"),
		})
		provider = NewRateLimitedProvider(NewBybitProvider(client, opts.BybitCategory),
			opts.limiter("bybit", BybitBurst, BybitRequestsPerSecond))
	default:
		return nil, fmt.Errorf("unknown data source %q", opts.Source)
	}

	return NewCachedProvider(provider), nil
}

func (o ProviderOptions) limiter(name string, burst int, rate float64) *safety.RateLimiter {
	if o.RequestsPerSecond > 0 {
		rate = o.RequestsPerSecond
	}
	return safety.NewRateLimiter(name, burst, rate)
}
