package optimization

// Package optimization searches the weight simplex for the allocation that
// minimizes a portfolio objective.

// Function is a scalar objective over a weight vector
type Function interface {
	Value(weights []float64) float64
}

// Differentiable is a Function with an analytic gradient. Optimizers fall
// back to central finite differences for plain Functions.
type Differentiable interface {
	Function
	Gradient(grad, weights []float64)
}

// FunctionFunc adapts a plain func to Function
type FunctionFunc func(weights []float64) float64

// Value calls f(weights)
func (f FunctionFunc) Value(weights []float64) float64 {
	return f(weights)
}

// Method selects the search algorithm
type Method string

const (
	// MethodSQP solves a sequence of quadratic subproblems over the simplex
	MethodSQP Method = "sqp"
	// MethodNelderMead runs gonum's Nelder-Mead on a projected problem
	MethodNelderMead Method = "nelder-mead"
)

// Defaults mirror the reference SLSQP configuration
const (
	DefaultMaxIterations       = 200
	DefaultFunctionTolerance   = 1e-8
	DefaultConstraintTolerance = 1e-6
)

// Settings controls an optimizer run
type Settings struct {
	Method              Method  `json:"method"`
	MaxIterations       int     `json:"max_iterations"`
	FunctionTolerance   float64 `json:"function_tolerance"`
	ConstraintTolerance float64 `json:"constraint_tolerance"`
}

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		Method:              MethodSQP,
		MaxIterations:       DefaultMaxIterations,
		FunctionTolerance:   DefaultFunctionTolerance,
		ConstraintTolerance: DefaultConstraintTolerance,
	}
}

// withDefaults fills zero fields
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.Method == "" {
		s.Method = d.Method
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.FunctionTolerance <= 0 {
		s.FunctionTolerance = d.FunctionTolerance
	}
	if s.ConstraintTolerance <= 0 {
		s.ConstraintTolerance = d.ConstraintTolerance
	}
	return s
}

// Result is the outcome of an optimizer run
type Result struct {
	Weights     []float64 `json:"weights"`
	Objective   float64   `json:"objective"`
	Iterations  int       `json:"iterations"`
	Evaluations int       `json:"evaluations"`
	Converged   bool      `json:"converged"`
	Status      string    `json:"status"`
	Method      Method    `json:"method"`
}
