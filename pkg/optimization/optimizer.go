package optimization

import (
	"context"
	"fmt"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/internal/monitoring"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

const component = "optimizer"

// Optimizer finds simplex weights minimizing a Function
type Optimizer struct {
	settings Settings
	logger   zerolog.Logger
}

// Option configures an Optimizer
type Option func(*Optimizer)

// WithLogger sets the optimizer logger
func WithLogger(l zerolog.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// NewOptimizer creates an optimizer; zero settings fields take defaults
func NewOptimizer(settings Settings, opts ...Option) *Optimizer {
	o := &Optimizer{
		settings: settings.withDefaults(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Settings returns the effective settings
func (o *Optimizer) Settings() Settings {
	return o.settings
}

// Optimize minimizes f over weights in [0,1] summing to 1, starting from
// equal weights.
//
// When the iteration budget runs out, or the final point violates the
// constraints beyond ConstraintTolerance, the best iterate is returned
// together with an error matching ErrOptimizationDidNotConverge.
func (o *Optimizer) Optimize(ctx context.Context, f Function, assetCount int) (*Result, error) {
	if assetCount <= 0 {
		return nil, perrors.New(perrors.ErrorCategoryValidation, perrors.ErrNoAssets, component, "optimize", "at least one asset is required")
	}

	var (
		res *Result
		err error
	)
	switch o.settings.Method {
	case MethodSQP:
		res, err = minimizeSQP(ctx, f, assetCount, o.settings)
	case MethodNelderMead:
		res, err = minimizeNelderMead(ctx, f, assetCount, o.settings)
	default:
		return nil, perrors.NewConfigurationError(component, "optimize",
			fmt.Sprintf("unknown optimizer method %q", o.settings.Method))
	}
	if err != nil {
		return res, err
	}

	if !Feasible(res.Weights, o.settings.ConstraintTolerance) {
		res.Converged = false
		res.Status = "Infeasible"
	} else {
		clampToSimplex(res.Weights)
	}

	monitoring.RecordOptimizerRun(string(res.Method), res.Converged, res.Iterations)

	o.logger.Debug().
		Str("method", string(res.Method)).
		Str("status", res.Status).
		Int("iterations", res.Iterations).
		Int("evaluations", res.Evaluations).
		Float64("objective", res.Objective).
		Msg("optimizer finished")

	if !res.Converged {
		return res, perrors.NewConvergenceError(component, res.Status, res.Iterations)
	}
	return res, nil
}

// OptimizeWeights maximizes the penalized Sharpe ratio of a return matrix
func OptimizeWeights(ctx context.Context, returns mat.Matrix, riskFree, diversification float64, settings Settings) (*Result, error) {
	_, c := returns.Dims()
	if c == 0 {
		return nil, perrors.New(perrors.ErrorCategoryValidation, perrors.ErrNoAssets, component, "optimize", "return matrix has no columns")
	}
	return NewOptimizer(settings).Optimize(ctx, NewObjective(returns, riskFree, diversification), c)
}
