package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/internal/monitoring"
	"github.com/ducminhle1904/mc-portfolio/pkg/asset"
	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/optimization"
	"github.com/ducminhle1904/mc-portfolio/pkg/simulation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const component = "orchestrator"

// Portfolio sequences sampling and optimization for a fixed set of assets.
// Portfolios share no mutable state and may run concurrently.
type Portfolio struct {
	cfg       config.PortfolioConfig
	profiles  []asset.Profile
	streams   simulation.StreamFactory
	sampler   ReturnSampler
	optimizer WeightOptimizer
	logger    zerolog.Logger
}

// Option configures a Portfolio
type Option func(*Portfolio)

// WithSampler replaces the default worker-pool sampler
func WithSampler(s ReturnSampler) Option {
	return func(p *Portfolio) { p.sampler = s }
}

// WithOptimizer replaces the optimizer built from cfg.Optimizer
func WithOptimizer(o WeightOptimizer) Option {
	return func(p *Portfolio) { p.optimizer = o }
}

// WithStreams sets the random stream factory used by the default sampler
func WithStreams(f simulation.StreamFactory) Option {
	return func(p *Portfolio) { p.streams = f }
}

// WithLogger sets the logger handed to the portfolio and its default services
func WithLogger(l zerolog.Logger) Option {
	return func(p *Portfolio) { p.logger = l }
}

// NewPortfolio creates a portfolio over profiles, in order
func NewPortfolio(cfg config.PortfolioConfig, profiles []asset.Profile, opts ...Option) (*Portfolio, error) {
	if len(profiles) == 0 {
		return nil, perrors.New(perrors.ErrorCategoryValidation, perrors.ErrNoAssets, component, "new portfolio", "at least one asset is required")
	}

	seen := make(map[string]struct{}, len(profiles))
	for _, pr := range profiles {
		if _, dup := seen[pr.Ticker]; dup {
			return nil, perrors.NewConfigurationError(component, "new portfolio", fmt.Sprintf("duplicate ticker %q", pr.Ticker))
		}
		seen[pr.Ticker] = struct{}{}
	}

	p := &Portfolio{
		cfg:      *cfg.Clone(),
		profiles: append([]asset.Profile(nil), profiles...),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.streams == nil {
		p.streams = simulation.NewSeededStreams(p.cfg.Seed)
	}
	if p.sampler == nil {
		p.sampler = simulation.NewSampler(p.streams,
			simulation.WithWorkers(p.cfg.Workers),
			simulation.WithLogger(p.logger.With().Str("component", "sampler").Logger()))
	}
	if p.optimizer == nil {
		p.optimizer = optimization.NewOptimizer(p.cfg.Optimizer.Settings(),
			optimization.WithLogger(p.logger.With().Str("component", "optimizer").Logger()))
	}

	return p, nil
}

// Profiles returns a copy of the asset profiles
func (p *Portfolio) Profiles() []asset.Profile {
	return append([]asset.Profile(nil), p.profiles...)
}

// BuildInitialWeights samples `simulations` return draws per asset and
// optimizes the penalized Sharpe ratio over them.
//
// A run that does not converge still yields the best weights found, with
// Converged false and Warning set; it is an error only under
// StrictConvergence.
func (p *Portfolio) BuildInitialWeights(ctx context.Context, simulations int) (*Allocation, error) {
	if simulations <= 0 {
		return nil, perrors.NewSimulationCountError(component, simulations)
	}

	started := time.Now()

	returns, err := p.sampler.SampleReturns(ctx, p.profiles, simulations)
	if err != nil {
		monitoring.RecordError(string(perrors.CategoryOf(err)))
		return nil, fmt.Errorf("sample returns: %w", err)
	}

	means := returns.MeanReturns()
	for i, pr := range p.profiles {
		p.logger.Info().
			Str("ticker", pr.Ticker).
			Float64("mean_return", means[i]).
			Msg("📈 mean simulated return")
	}

	objective := optimization.NewObjective(returns, p.cfg.RiskFreeRate, p.cfg.Diversification)
	res, err := p.optimizer.Optimize(ctx, objective, len(p.profiles))

	var warning string
	switch {
	case err == nil:
	case errors.Is(err, perrors.ErrOptimizationDidNotConverge) && res != nil:
		if p.cfg.Optimizer.StrictConvergence {
			monitoring.RecordError(string(perrors.ErrorCategoryConvergence))
			return nil, err
		}
		warning = err.Error()
		p.logger.Warn().
			Str("status", res.Status).
			Int("iterations", res.Iterations).
			Msg("⚠️ optimizer did not converge, using best weights found")
	default:
		monitoring.RecordError(string(perrors.CategoryOf(err)))
		return nil, fmt.Errorf("optimize weights: %w", err)
	}

	stats := objective.Stats(res.Weights)

	alloc := &Allocation{
		ID:              uuid.NewString(),
		Assets:          make([]AssetAllocation, len(p.profiles)),
		ExpectedReturn:  stats.ExpectedReturn,
		StdDev:          stats.StdDev,
		Sharpe:          stats.Sharpe,
		Objective:       res.Objective,
		Converged:       res.Converged,
		Status:          res.Status,
		Warning:         warning,
		Iterations:      res.Iterations,
		Evaluations:     res.Evaluations,
		Method:          string(res.Method),
		Simulations:     simulations,
		Steps:           p.profiles[0].StepCount,
		StepSize:        p.cfg.StepSize(),
		RiskFreeRate:    p.cfg.RiskFreeRate,
		Diversification: p.cfg.Diversification,
		CreatedAt:       started.UTC(),
	}
	if seeded, ok := p.streams.(*simulation.SeededStreams); ok {
		alloc.Seed = seeded.Seed()
	}

	for i, pr := range p.profiles {
		alloc.Assets[i] = AssetAllocation{
			Ticker:       pr.Ticker,
			Weight:       res.Weights[i],
			MeanReturn:   means[i],
			InitialPrice: pr.InitialPrice,
			Drift:        pr.Drift,
			Volatility:   pr.Volatility,
		}
		monitoring.UpdateWeight(pr.Ticker, res.Weights[i])
	}
	alloc.Duration = time.Since(started)

	p.logger.Info().
		Str("id", alloc.ID).
		Bool("converged", alloc.Converged).
		Float64("sharpe", alloc.Sharpe).
		Dur("elapsed", alloc.Duration).
		Msg("✅ weights built")

	return alloc, nil
}
