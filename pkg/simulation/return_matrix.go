package simulation

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ReturnMatrix holds simulated total returns, one row per draw and one
// column per asset in the order of Tickers.
type ReturnMatrix struct {
	*mat.Dense
	Tickers []string
}

// NewReturnMatrix allocates a zeroed simulations x assets matrix
func NewReturnMatrix(simulations int, tickers []string) *ReturnMatrix {
	names := make([]string, len(tickers))
	copy(names, tickers)
	return &ReturnMatrix{
		Dense:   mat.NewDense(simulations, len(tickers), nil),
		Tickers: names,
	}
}

// Simulations returns the number of rows
func (m *ReturnMatrix) Simulations() int {
	r, _ := m.Dims()
	return r
}

// Assets returns the number of columns
func (m *ReturnMatrix) Assets() int {
	_, c := m.Dims()
	return c
}

// Column copies the simulated returns of asset j
func (m *ReturnMatrix) Column(j int) []float64 {
	return mat.Col(nil, j, m.Dense)
}

// MeanReturns returns the mean simulated return of every asset
func (m *ReturnMatrix) MeanReturns() []float64 {
	means := make([]float64, m.Assets())
	for j := range means {
		means[j] = stat.Mean(m.Column(j), nil)
	}
	return means
}
