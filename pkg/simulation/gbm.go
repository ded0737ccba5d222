package simulation

import (
	"math"

	"github.com/ducminhle1904/mc-portfolio/pkg/asset"
)

// SimulatePath generates one geometric Brownian motion price path of
// steps+1 prices starting at initial:
//
//	p[t] = p[t-1] * exp(drift - 0.5*volatility^2 + volatility*Z)
//
// drift and volatility are per-step quantities; no time scaling is applied.
func SimulatePath(initial, drift, volatility float64, steps int, src NormalSource) []float64 {
	if steps < 0 {
		steps = 0
	}
	path := make([]float64, steps+1)
	SimulatePathInto(path, initial, drift, volatility, src)
	return path
}

// SimulatePathInto writes a path into dst, using len(dst)-1 steps.
// dst must not be shared with another goroutine while in use.
func SimulatePathInto(dst []float64, initial, drift, volatility float64, src NormalSource) []float64 {
	if len(dst) == 0 {
		return dst
	}

	c := drift - 0.5*volatility*volatility
	dst[0] = initial
	for t := 1; t < len(dst); t++ {
		dst[t] = dst[t-1] * math.Exp(c+volatility*src.NormFloat64())
	}
	return dst
}

// SimulateProfile simulates one path for an asset profile
func SimulateProfile(p asset.Profile, src NormalSource) []float64 {
	return SimulatePath(p.InitialPrice, p.Drift, p.Volatility, p.StepCount, src)
}

// TotalReturn is final/initial - 1 over a path
func TotalReturn(path []float64) float64 {
	if len(path) == 0 || path[0] == 0 {
		return math.NaN()
	}
	return path[len(path)-1]/path[0] - 1
}
