package config

import (
	"fmt"
	"math"
	"strings"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/optimization"
)

// PortfolioValidator implements validation for portfolio configurations
type PortfolioValidator struct{}

// NewPortfolioValidator creates a new portfolio validator
func NewPortfolioValidator() *PortfolioValidator {
	return &PortfolioValidator{}
}

// Validate checks every field; the error matches ErrInvalidConfig
func (v *PortfolioValidator) Validate(cfg *PortfolioConfig) error {
	if cfg == nil {
		return perrors.NewConfigurationError("config", "validate", "configuration is nil")
	}
	if err := v.validate(cfg); err != nil {
		return perrors.NewConfigurationError("config", "validate", err.Error())
	}
	return nil
}

func (v *PortfolioValidator) validate(cfg *PortfolioConfig) error {
	if err := v.validateTickers(cfg.Tickers); err != nil {
		return err
	}

	switch cfg.Source {
	case SourceCSV, SourceYahoo, SourceBybit:
	default:
		return fmt.Errorf("source must be one of %s, %s, %s, got: %q", SourceCSV, SourceYahoo, SourceBybit, cfg.Source)
	}

	start, end, err := cfg.Period()
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return fmt.Errorf("start date %s must be before end date %s", cfg.StartDate, cfg.EndDate)
	}
	if cfg.Source != SourceCSV && (start.IsZero() || end.IsZero()) {
		return fmt.Errorf("source %s requires both start_date and end_date", cfg.Source)
	}

	if !(cfg.HorizonYears > 0) || math.IsInf(cfg.HorizonYears, 0) {
		return fmt.Errorf("horizon years must be positive, got: %v", cfg.HorizonYears)
	}
	if cfg.Steps <= 0 || cfg.Steps > MaxSteps {
		return fmt.Errorf("steps must be between 1 and %d, got: %d", MaxSteps, cfg.Steps)
	}
	if cfg.Simulations <= 0 || cfg.Simulations > MaxSimulations {
		return fmt.Errorf("simulations must be between 1 and %d, got: %d", MaxSimulations, cfg.Simulations)
	}
	if math.IsNaN(cfg.RiskFreeRate) || math.IsInf(cfg.RiskFreeRate, 0) {
		return fmt.Errorf("risk free rate must be finite, got: %v", cfg.RiskFreeRate)
	}
	if !(cfg.Diversification >= 0) || math.IsInf(cfg.Diversification, 0) {
		return fmt.Errorf("diversification must be non-negative, got: %v", cfg.Diversification)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got: %d", cfg.Workers)
	}
	if !(cfg.HoldoutRatio >= 0 && cfg.HoldoutRatio <= MaxHoldoutRatio) {
		return fmt.Errorf("holdout ratio must be between 0 and %.2f, got: %v", MaxHoldoutRatio, cfg.HoldoutRatio)
	}
	if cfg.Capital < 0 {
		return fmt.Errorf("capital must be non-negative, got: %.2f", cfg.Capital)
	}

	return v.validateOptimizer(cfg.Optimizer)
}

func (v *PortfolioValidator) validateTickers(tickers []string) error {
	if len(tickers) == 0 {
		return fmt.Errorf("at least one ticker is required")
	}
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		name := strings.TrimSpace(t)
		if name == "" {
			return fmt.Errorf("ticker names must not be blank")
		}
		if seen[name] {
			return fmt.Errorf("duplicate ticker: %s", name)
		}
		seen[name] = true
	}
	return nil
}

func (v *PortfolioValidator) validateOptimizer(o OptimizerConfig) error {
	switch optimization.Method(o.Method) {
	case optimization.MethodSQP, optimization.MethodNelderMead:
	default:
		return fmt.Errorf("optimizer method must be %s or %s, got: %q", optimization.MethodSQP, optimization.MethodNelderMead, o.Method)
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("optimizer max iterations must be positive, got: %d", o.MaxIterations)
	}
	if !(o.FunctionTolerance > 0) {
		return fmt.Errorf("optimizer function tolerance must be positive, got: %v", o.FunctionTolerance)
	}
	if !(o.ConstraintTolerance > 0) {
		return fmt.Errorf("optimizer constraint tolerance must be positive, got: %v", o.ConstraintTolerance)
	}
	return nil
}
