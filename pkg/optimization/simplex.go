package optimization

import (
	"math"
	"sort"
)

// ProjectOntoSimplex replaces v with its Euclidean projection onto
// {w : w_i >= 0, sum(w) = 1} (Duchi et al. 2008).
func ProjectOntoSimplex(v []float64) {
	n := len(v)
	if n == 0 {
		return
	}

	u := make([]float64, n)
	copy(u, v)
	sort.Sort(sort.Reverse(sort.Float64Slice(u)))

	// rho: largest j with u[j] - (sum(u[:j+1]) - 1)/(j+1) > 0
	cumSum := 0.0
	rho := 0
	rhoSum := u[0]
	for j := 0; j < n; j++ {
		cumSum += u[j]
		if u[j]-(cumSum-1)/float64(j+1) > 0 {
			rho = j
			rhoSum = cumSum
		}
	}
	theta := (rhoSum - 1) / float64(rho+1)

	for i := range v {
		v[i] -= theta
		if v[i] < 0 {
			v[i] = 0
		}
	}
}

// Uniform returns the equal-weight starting point
func Uniform(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// Feasible reports whether w lies on the simplex within tol
func Feasible(w []float64, tol float64) bool {
	sum := 0.0
	for _, x := range w {
		if math.IsNaN(x) || x < -tol || x > 1+tol {
			return false
		}
		sum += x
	}
	return math.Abs(sum-1) <= tol
}

// clampToSimplex removes rounding noise from a feasible point
func clampToSimplex(w []float64) {
	sum := 0.0
	for i, x := range w {
		if x < 0 {
			w[i] = 0
		} else if x > 1 {
			w[i] = 1
		}
		sum += w[i]
	}
	if sum > 0 {
		for i := range w {
			w[i] /= sum
		}
	}
}
