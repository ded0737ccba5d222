package optimization

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// projectionPenalty weights the squared distance to the simplex so the
// unconstrained search stays close to feasible points
const projectionPenalty = 1e3

// contextConverger stops gonum's loop once ctx is done
type contextConverger struct {
	ctx   context.Context
	inner optimize.Converger
}

func (c *contextConverger) Init(dim int) {
	c.inner.Init(dim)
}

func (c *contextConverger) Converged(loc *optimize.Location) optimize.Status {
	if c.ctx.Err() != nil {
		return optimize.Failure
	}
	return c.inner.Converged(loc)
}

var successStatuses = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.FunctionConvergence: true,
	optimize.GradientThreshold:   true,
	optimize.StepConvergence:     true,
	optimize.MethodConverge:      true,
}

// minimizeNelderMead runs gonum's Nelder-Mead on f composed with the
// simplex projection, plus a penalty on the distance to the projection.
func minimizeNelderMead(ctx context.Context, f Function, n int, settings Settings) (*Result, error) {
	projected := make([]float64, n)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			copy(projected, x)
			ProjectOntoSimplex(projected)
			d := floats.Distance(x, projected, 2)
			return f.Value(projected) + projectionPenalty*d*d
		},
	}

	optSettings := &optimize.Settings{
		MajorIterations: settings.MaxIterations,
		Converger: &contextConverger{
			ctx: ctx,
			inner: &optimize.FunctionConverge{
				Absolute:   settings.FunctionTolerance,
				Iterations: 20,
			},
		},
	}

	res, err := optimize.Minimize(problem, Uniform(n), optSettings, &optimize.NelderMead{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if res == nil {
		return nil, fmt.Errorf("nelder-mead failed: %w", err)
	}

	weights := append([]float64(nil), res.X...)
	ProjectOntoSimplex(weights)

	return &Result{
		Weights:     weights,
		Objective:   f.Value(weights),
		Iterations:  res.Stats.MajorIterations,
		Evaluations: res.Stats.FuncEvaluations + 1,
		Converged:   err == nil && successStatuses[res.Status],
		Status:      res.Status.String(),
		Method:      MethodNelderMead,
	}, nil
}
