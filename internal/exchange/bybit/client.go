package bybit

import (
	"context"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// klineFetcher performs one GET /v5/market/kline call
type klineFetcher func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Client wraps the Bybit API client for public market data
type Client struct {
	httpClient *bybit_api.Client
	fetchKline klineFetcher
	retry      RetryConfig
	testnet    bool
	demo       bool
}

// Config holds the configuration for the Bybit client. Market data is
// public, so the key pair is optional.
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool // Demo trading environment
	BaseURL   string
}

// NewClient creates a new Bybit client
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		if config.Demo {
			baseURL = "https://api-demo.bybit.com"
		} else if config.Testnet {
			baseURL = bybit_api.TESTNET
		} else {
			baseURL = bybit_api.MAINNET
		}
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	c := &Client{
		httpClient: httpClient,
		retry:      DefaultRetryConfig(),
		testnet:    config.Testnet,
		demo:       config.Demo,
	}
	c.fetchKline = func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	}
	return c
}

// WithRetryConfig replaces the retry policy
func (c *Client) WithRetryConfig(cfg RetryConfig) *Client {
	c.retry = cfg
	return c
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	if c.demo {
		return "demo"
	} else if c.testnet {
		return "testnet"
	} else {
		return "mainnet"
	}
}
