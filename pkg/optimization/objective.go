package optimization

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DegeneratePenalty is returned when the portfolio return distribution has
// no positive spread, which makes the Sharpe ratio undefined.
const DegeneratePenalty = 1e6

// SharpeObjective scores weights against a simulations x assets return
// matrix as the negative Sharpe ratio plus an L2 diversification term:
//
//	-(mean - riskFree)/std + diversification * sum(w^2)
//
// std is the sample standard deviation of the per-row portfolio returns.
// len(weights) must equal the number of columns.
func SharpeObjective(weights []float64, returns mat.Matrix, riskFree, diversification float64) float64 {
	mean, std := portfolioMoments(weights, returns)
	if !(std > 0) {
		return DegeneratePenalty
	}
	return -(mean-riskFree)/std + diversification*floats.Dot(weights, weights)
}

func portfolioMoments(weights []float64, returns mat.Matrix) (mean, std float64) {
	r, c := returns.Dims()
	if r == 0 || c == 0 {
		return math.NaN(), math.NaN()
	}

	var port mat.VecDense
	port.MulVec(returns, mat.NewVecDense(c, weights))
	if r == 1 {
		return port.AtVec(0), math.NaN()
	}

	return stat.MeanStdDev(port.RawVector().Data, nil)
}

// Objective is SharpeObjective bound to one return matrix, with cached
// column means and covariance for the analytic gradient.
type Objective struct {
	returns         mat.Matrix
	riskFree        float64
	diversification float64

	means []float64
	cov   *mat.SymDense
}

// NewObjective precomputes the moments of returns
func NewObjective(returns mat.Matrix, riskFree, diversification float64) *Objective {
	r, c := returns.Dims()

	means := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, returns)
		means[j] = stat.Mean(col, nil)
	}

	o := &Objective{
		returns:         returns,
		riskFree:        riskFree,
		diversification: diversification,
		means:           means,
	}
	if c > 0 {
		o.cov = mat.NewSymDense(c, nil)
		if r > 1 {
			stat.CovarianceMatrix(o.cov, returns, nil)
		}
	}
	return o
}

// Dim returns the number of assets
func (o *Objective) Dim() int {
	return len(o.means)
}

// Value implements Function
func (o *Objective) Value(weights []float64) float64 {
	return SharpeObjective(weights, o.returns, o.riskFree, o.diversification)
}

// Gradient implements Differentiable. It is zero where Value returns
// DegeneratePenalty.
func (o *Objective) Gradient(grad, weights []float64) {
	n := len(weights)
	if n == 0 || o.cov == nil {
		return
	}
	w := mat.NewVecDense(n, weights)

	var cw mat.VecDense
	cw.MulVec(o.cov, w)

	variance := mat.Dot(w, &cw)
	if !(variance > 0) || math.IsInf(variance, 0) {
		for i := range grad {
			grad[i] = 0
		}
		return
	}

	s := math.Sqrt(variance)
	excess := floats.Dot(o.means, weights) - o.riskFree
	s3 := s * variance

	for i := 0; i < n; i++ {
		grad[i] = -(o.means[i]/s - excess*cw.AtVec(i)/s3) + 2*o.diversification*weights[i]
	}
}

// PortfolioStats summarizes the simulated return distribution of a weighting
type PortfolioStats struct {
	ExpectedReturn float64 `json:"expected_return"`
	StdDev         float64 `json:"std_dev"`
	Sharpe         float64 `json:"sharpe"`
}

// Stats reports the portfolio mean, sample std and Sharpe ratio at weights.
// Sharpe is 0 when std is not positive.
func (o *Objective) Stats(weights []float64) PortfolioStats {
	mean, std := portfolioMoments(weights, o.returns)
	var st PortfolioStats
	if !math.IsNaN(mean) {
		st.ExpectedReturn = mean
	}
	if std > 0 {
		st.StdDev = std
		st.Sharpe = (mean - o.riskFree) / std
	}
	return st
}
