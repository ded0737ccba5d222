package asset

import (
	"math"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"gonum.org/v1/gonum/stat"
)

const component = "asset"

// Profile holds the per-asset statistics the simulator consumes.
// It is a value type; copies are independent.
type Profile struct {
	Ticker       string  `json:"ticker"`
	InitialPrice float64 `json:"initial_price"`
	Drift        float64 `json:"drift"`
	Volatility   float64 `json:"volatility"`
	StepCount    int     `json:"step_count"`
}

// ExtractStatistics derives the initial price, drift and volatility of a price series.
//
// Drift is the mean of the log-returns between consecutive observations and
// volatility is their sample standard deviation (n-1). The initial price of
// the simulation is the most recent observation. A series of exactly two
// prices has a single log-return and zero volatility.
func ExtractStatistics(prices []float64) (initial, drift, volatility float64, err error) {
	return extract("", prices)
}

// NewProfile validates a price series and builds the profile for ticker
func NewProfile(ticker string, prices []float64, steps int) (Profile, error) {
	if steps <= 0 {
		return Profile{}, perrors.NewConfigurationError(component, "new profile "+ticker,
			"step count must be positive").WithContext("ticker", ticker).WithContext("steps", steps)
	}

	initial, drift, volatility, err := extract(ticker, prices)
	if err != nil {
		return Profile{}, err
	}

	return Profile{
		Ticker:       ticker,
		InitialPrice: initial,
		Drift:        drift,
		Volatility:   volatility,
		StepCount:    steps,
	}, nil
}

// NewProfileFromHistory is NewProfile over provider output
func NewProfileFromHistory(ticker string, history []types.PricePoint, steps int) (Profile, error) {
	return NewProfile(ticker, types.Closes(history), steps)
}

func extract(ticker string, prices []float64) (initial, drift, volatility float64, err error) {
	switch {
	case len(prices) == 0:
		return 0, 0, 0, perrors.NewNoDataError(component, ticker, "price series is empty")
	case len(prices) < 2:
		return 0, 0, 0, perrors.NewInsufficientDataError(component, ticker, len(prices))
	}

	for i, p := range prices {
		if !(p > 0) || math.IsInf(p, 0) {
			return 0, 0, 0, perrors.NewInvalidPriceError(component, ticker, i, p)
		}
	}

	logReturns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		logReturns[i-1] = math.Log(prices[i] / prices[i-1])
	}

	drift = stat.Mean(logReturns, nil)
	if len(logReturns) > 1 {
		volatility = stat.StdDev(logReturns, nil)
	}

	return prices[len(prices)-1], drift, volatility, nil
}
