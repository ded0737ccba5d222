package orchestrator

import (
	"context"
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/allocation"
	"github.com/ducminhle1904/mc-portfolio/pkg/asset"
	"github.com/ducminhle1904/mc-portfolio/pkg/optimization"
	"github.com/ducminhle1904/mc-portfolio/pkg/simulation"
)

// ReturnSampler produces the simulations x assets return matrix
type ReturnSampler interface {
	SampleReturns(ctx context.Context, profiles []asset.Profile, simulations int) (*simulation.ReturnMatrix, error)
}

// WeightOptimizer searches the weight simplex for the minimum of f
type WeightOptimizer interface {
	Optimize(ctx context.Context, f optimization.Function, assetCount int) (*optimization.Result, error)
}

// RunRecorder persists finished runs
type RunRecorder interface {
	SaveRun(ctx context.Context, alloc *Allocation, plan *allocation.Plan) error
}

// AssetAllocation is the outcome for one asset
type AssetAllocation struct {
	Ticker       string  `json:"ticker"`
	Weight       float64 `json:"weight"`
	MeanReturn   float64 `json:"mean_return"`
	InitialPrice float64 `json:"initial_price"`
	Drift        float64 `json:"drift"`
	Volatility   float64 `json:"volatility"`
}

// Allocation is the result of one BuildInitialWeights call. Assets keep the
// input ticker order.
type Allocation struct {
	ID     string            `json:"id"`
	Assets []AssetAllocation `json:"assets"`

	ExpectedReturn float64 `json:"expected_return"`
	StdDev         float64 `json:"std_dev"`
	Sharpe         float64 `json:"sharpe"`
	Objective      float64 `json:"objective"`

	Converged   bool   `json:"converged"`
	Status      string `json:"status"`
	Warning     string `json:"warning,omitempty"`
	Iterations  int    `json:"iterations"`
	Evaluations int    `json:"evaluations"`
	Method      string `json:"method"`

	Simulations     int     `json:"simulations"`
	Steps           int     `json:"steps"`
	StepSize        float64 `json:"step_size"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
	Diversification float64 `json:"diversification"`
	Seed            uint64  `json:"seed"`

	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Weights returns the weights in ticker order
func (a *Allocation) Weights() []float64 {
	out := make([]float64, len(a.Assets))
	for i, as := range a.Assets {
		out[i] = as.Weight
	}
	return out
}

// Tickers returns the tickers in input order
func (a *Allocation) Tickers() []string {
	out := make([]string, len(a.Assets))
	for i, as := range a.Assets {
		out[i] = as.Ticker
	}
	return out
}

// LastPrices returns the most recent observed price per asset
func (a *Allocation) LastPrices() []float64 {
	out := make([]float64, len(a.Assets))
	for i, as := range a.Assets {
		out[i] = as.InitialPrice
	}
	return out
}
