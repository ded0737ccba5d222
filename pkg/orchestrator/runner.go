package orchestrator

import (
	"context"
	"fmt"

	"github.com/ducminhle1904/mc-portfolio/pkg/allocation"
	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/data"
	"github.com/ducminhle1904/mc-portfolio/pkg/validation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RunReport is everything a full run produces
type RunReport struct {
	Allocation *Allocation               `json:"allocation"`
	Plan       *allocation.Plan          `json:"plan,omitempty"`
	Holdout    *validation.HoldoutResult `json:"holdout,omitempty"`
}

// Runner drives a configured run from price history to persisted result
type Runner struct {
	provider data.PriceHistoryProvider
	recorder RunRecorder
	logger   zerolog.Logger
}

// NewRunner creates a runner; recorder may be nil
func NewRunner(provider data.PriceHistoryProvider, recorder RunRecorder, logger zerolog.Logger) *Runner {
	return &Runner{provider: provider, recorder: recorder, logger: logger}
}

// Run loads profiles for cfg.Tickers, builds weights and, when capital is
// configured, splits it across the assets at their last prices. With a
// holdout ratio the profiles come from the leading part of the period only
// and the weights are replayed over the rest.
func (r *Runner) Run(ctx context.Context, cfg *config.PortfolioConfig, opts ...Option) (*RunReport, error) {
	start, end, err := cfg.Period()
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Strs("tickers", cfg.Tickers).
		Str("source", r.provider.Name()).
		Str("start", cfg.StartDate).
		Str("end", cfg.EndDate).
		Msg("📊 loading price history")

	histories, err := LoadHistories(ctx, r.provider, cfg.Tickers, start, end)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	var split *validation.HoldoutSplit
	if cfg.HoldoutRatio > 0 {
		split, err = validation.Split(cfg.Tickers, histories, 1-cfg.HoldoutRatio)
		if err != nil {
			return nil, fmt.Errorf("holdout split: %w", err)
		}
		histories = split.Train
		r.logger.Info().
			Str("cutoff", split.Cutoff.Format(config.DateLayout)).
			Float64("holdout_ratio", cfg.HoldoutRatio).
			Msg("✂️ holding out the end of the period")
	}

	profiles, err := ProfilesFromHistories(cfg.Tickers, histories, cfg.Steps)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	portfolio, err := NewPortfolio(*cfg, profiles, append([]Option{WithLogger(r.logger)}, opts...)...)
	if err != nil {
		return nil, err
	}

	alloc, err := portfolio.BuildInitialWeights(ctx, cfg.Simulations)
	if err != nil {
		return nil, err
	}

	report := &RunReport{Allocation: alloc}

	if split != nil {
		holdout, err := validation.Evaluate(alloc.Tickers(), alloc.Weights(), split.Test, cfg.RiskFreeRate)
		if err != nil {
			return nil, fmt.Errorf("holdout evaluation: %w", err)
		}
		holdout.Cutoff = split.Cutoff
		report.Holdout = holdout
		r.logger.Info().
			Float64("return", holdout.TotalReturn).
			Float64("sharpe", holdout.Sharpe).
			Float64("max_drawdown", holdout.MaxDrawdown).
			Int("periods", holdout.Periods).
			Msg("🔍 holdout replay")
	}

	if cfg.Capital > 0 {
		plan, err := allocation.Split(decimal.NewFromFloat(cfg.Capital), alloc.Tickers(), alloc.Weights(), alloc.LastPrices(),
			allocation.Options{QuantityPlaces: quantityPlaces(cfg.Source)})
		if err != nil {
			return nil, fmt.Errorf("split capital: %w", err)
		}
		report.Plan = plan
		r.logger.Info().
			Str("invested", plan.Invested.StringFixed(2)).
			Str("cash", plan.Cash.StringFixed(2)).
			Msg("💰 capital allocated")
	}

	if r.recorder != nil {
		if err := r.recorder.SaveRun(ctx, alloc, report.Plan); err != nil {
			return report, fmt.Errorf("save run %s: %w", alloc.ID, err)
		}
	}

	return report, nil
}

// quantityPlaces is 8 for crypto sources and whole shares otherwise
func quantityPlaces(source string) int32 {
	if source == config.SourceBybit {
		return 8
	}
	return 0
}
