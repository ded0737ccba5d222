package config

// Package config provides configuration management for portfolio optimization runs

// Validator interface for configuration validation
type Validator interface {
	Validate(cfg *PortfolioConfig) error
}

// Price history sources
const (
	SourceCSV   = "csv"
	SourceYahoo = "yahoo"
	SourceBybit = "bybit"
)

// Common configuration constants
const (
	// Default parameter values
	DefaultHorizonYears    = 2.0
	DefaultSteps           = 252
	DefaultRiskFreeRate    = 0.04
	DefaultDiversification = 0.01
	DefaultSimulations     = 1000
	DefaultSource          = SourceYahoo
	DefaultStartDate       = "2015-01-01"
	DefaultEndDate         = "2023-01-01"

	// Validation limits
	MaxSimulations  = 1_000_000
	MaxSteps        = 100_000
	MaxHoldoutRatio = 0.5

	// File and directory constants
	DefaultDataRoot  = "data"
	DefaultOutputDir = "results"
	DefaultDBPath    = "results/runs.db"
	DateLayout       = "2006-01-02"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "MCP_"
)

// DefaultTickers is the equity basket used when none is configured
var DefaultTickers = []string{"AAPL", "MSFT", "GOOGL", "SPY"}
