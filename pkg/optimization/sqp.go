package optimization

import (
	"context"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
)

const (
	// armijo is the sufficient-decrease constant of the line search
	armijo = 1e-4
	// maxBacktracks bounds step halvings per iteration
	maxBacktracks = 60
	// maxStep caps the inverse curvature of the quadratic model
	maxStep = 1e4
	// stepTolerance treats smaller projected steps as stationary
	stepTolerance = 1e-12
)

// sqpState is the iterate of a projected quasi-Newton run
type sqpState struct {
	x     []float64
	fx    float64
	grad  []float64
	trial []float64
	step  float64
	evals int
}

// gradientFunc returns f's analytic gradient or a central difference one
func gradientFunc(f Function, evals *int) func(grad, x []float64) {
	if d, ok := f.(Differentiable); ok {
		return d.Gradient
	}
	settings := &fd.Settings{Formula: fd.Central}
	return func(grad, x []float64) {
		fd.Gradient(grad, f.Value, x, settings)
		*evals += 2 * len(x)
	}
}

// minimizeSQP minimizes f over the simplex starting from uniform weights.
//
// Each iteration solves the quadratic model
//
//	min_y  g'(y-x) + |y-x|^2/(2*step)  s.t. y on the simplex
//
// exactly by projecting x - step*g, then backtracks on step until the
// Armijo condition holds. step grows after accepted iterations so the
// model tracks the local curvature.
func minimizeSQP(ctx context.Context, f Function, n int, settings Settings) (*Result, error) {
	st := &sqpState{
		x:     Uniform(n),
		grad:  make([]float64, n),
		trial: make([]float64, n),
		step:  1,
	}
	st.fx = f.Value(st.x)
	st.evals = 1

	gradient := gradientFunc(f, &st.evals)

	result := &Result{Method: MethodSQP, Status: "IterationLimit"}

	iter := 0
	for iter < settings.MaxIterations {
		if err := ctx.Err(); err != nil {
			return st.result(result, iter), err
		}
		iter++

		gradient(st.grad, st.x)

		done, status := st.lineSearch(f, settings.FunctionTolerance)
		if done {
			result.Converged = true
			result.Status = status
			break
		}
	}

	return st.result(result, iter), nil
}

// lineSearch performs one backtracking iteration. It reports whether the
// run has converged and why.
func (st *sqpState) lineSearch(f Function, ftol float64) (bool, string) {
	for bt := 0; bt < maxBacktracks; bt++ {
		copy(st.trial, st.x)
		floats.AddScaled(st.trial, -st.step, st.grad)
		ProjectOntoSimplex(st.trial)

		dist := floats.Distance(st.trial, st.x, 2)
		if dist < stepTolerance {
			return true, "StepConvergence"
		}

		ft := f.Value(st.trial)
		st.evals++

		// g'(y - x) is negative for any projected descent step
		slope := floats.Dot(st.grad, st.trial) - floats.Dot(st.grad, st.x)
		if !math.IsNaN(ft) && ft <= st.fx+armijo*slope {
			decrease := st.fx - ft
			copy(st.x, st.trial)
			st.fx = ft
			st.step = math.Min(2*st.step, maxStep)
			if decrease < ftol {
				return true, "FunctionConvergence"
			}
			return false, ""
		}

		st.step /= 2
	}
	// No decrease at machine-precision step sizes: x is stationary.
	return true, "LineSearchStalled"
}

func (st *sqpState) result(r *Result, iter int) *Result {
	r.Weights = append([]float64(nil), st.x...)
	r.Objective = st.fx
	r.Iterations = iter
	r.Evaluations = st.evals
	return r
}
