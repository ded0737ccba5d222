package optimization

import (
	"context"
	"errors"
	"math"
	"testing"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/asset"
	"github.com/ducminhle1904/mc-portfolio/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func assertOnSimplex(t *testing.T, w []float64) {
	t.Helper()
	assert.InDelta(t, 1.0, floats.Sum(w), 1e-6)
	for _, x := range w {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 1.0)
	}
}

func TestOptimizeWeights_OutputOnSimplex(t *testing.T) {
	for _, method := range []Method{MethodSQP, MethodNelderMead} {
		t.Run(string(method), func(t *testing.T) {
			settings := DefaultSettings()
			settings.Method = method
			settings.MaxIterations = 2000

			res, err := OptimizeWeights(context.Background(), smallReturns(), 0.01, 0.01, settings)
			require.NoError(t, err)
			require.Len(t, res.Weights, 3)
			assertOnSimplex(t, res.Weights)
			assert.True(t, res.Converged)
			assert.Equal(t, method, res.Method)
		})
	}
}

func TestOptimizeWeights_ImprovesOnUniform(t *testing.T) {
	returns := smallReturns()
	res, err := OptimizeWeights(context.Background(), returns, 0.01, 0.01, DefaultSettings())
	require.NoError(t, err)

	uniform := SharpeObjective(Uniform(3), returns, 0.01, 0.01)
	assert.LessOrEqual(t, res.Objective, uniform)
	assert.InDelta(t, SharpeObjective(res.Weights, returns, 0.01, 0.01), res.Objective, 1e-9)
}

func TestOptimize_FiniteDifferenceFallback(t *testing.T) {
	// minimum of sum((w - target)^2) on the simplex is target itself
	target := []float64{0.2, 0.5, 0.3}
	f := FunctionFunc(func(w []float64) float64 {
		var s float64
		for i := range w {
			d := w[i] - target[i]
			s += d * d
		}
		return s
	})

	res, err := NewOptimizer(Settings{}).Optimize(context.Background(), f, 3)
	require.NoError(t, err)
	for i := range target {
		assert.InDelta(t, target[i], res.Weights[i], 1e-3)
	}
}

func TestOptimize_SingleAsset(t *testing.T) {
	res, err := NewOptimizer(DefaultSettings()).Optimize(context.Background(), NewObjective(mat.NewDense(3, 1, []float64{0.1, 0.2, 0.0}), 0, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, res.Weights)
	assert.True(t, res.Converged)
}

func TestOptimize_DegenerateStaysUniform(t *testing.T) {
	res, err := OptimizeWeights(context.Background(), mat.NewDense(1, 2, []float64{0.1, 0.2}), 0.04, 0.01, DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, DegeneratePenalty, res.Objective)
	assert.InDelta(t, 0.5, res.Weights[0], 1e-12)
}

func TestOptimize_IterationLimitReportsNonConvergence(t *testing.T) {
	settings := DefaultSettings()
	settings.MaxIterations = 1
	settings.FunctionTolerance = 1e-300

	res, err := OptimizeWeights(context.Background(), smallReturns(), 0.01, 0.01, settings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, perrors.ErrOptimizationDidNotConverge))
	require.NotNil(t, res)
	assert.False(t, res.Converged)
	assertOnSimplex(t, res.Weights)
}

func TestOptimize_Errors(t *testing.T) {
	_, err := NewOptimizer(DefaultSettings()).Optimize(context.Background(), FunctionFunc(func([]float64) float64 { return 0 }), 0)
	assert.True(t, errors.Is(err, perrors.ErrNoAssets))

	_, err = NewOptimizer(Settings{Method: "annealing"}).Optimize(context.Background(), FunctionFunc(func([]float64) float64 { return 0 }), 2)
	assert.True(t, errors.Is(err, perrors.ErrInvalidConfig))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = OptimizeWeights(ctx, smallReturns(), 0, 0, DefaultSettings())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimizeWeights_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("simulates 2000 paths per asset")
	}

	profiles := []asset.Profile{
		{Ticker: "A", InitialPrice: 100, Drift: 0.0005, Volatility: 0.01, StepCount: 252},
		{Ticker: "B", InitialPrice: 100, Drift: 0.0002, Volatility: 0.02, StepCount: 252},
	}

	returns, err := simulation.NewSampler(simulation.NewSeededStreams(12345)).
		SampleReturns(context.Background(), profiles, 2000)
	require.NoError(t, err)

	res, err := OptimizeWeights(context.Background(), returns, 0.04, 0.01, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assertOnSimplex(t, res.Weights)
	assert.Greater(t, res.Weights[0], res.Weights[1])
	assert.False(t, math.IsNaN(res.Objective))
}
