package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory groups failures by how the caller should react to them
type ErrorCategory string

const (
	// Fatal for the whole portfolio build
	ErrorCategoryData          ErrorCategory = "DATA"
	ErrorCategoryValidation    ErrorCategory = "VALIDATION"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Retried by providers, fatal once retries are exhausted
	ErrorCategoryNetwork ErrorCategory = "NETWORK"

	// Reported with a best-effort result
	ErrorCategoryConvergence ErrorCategory = "CONVERGENCE"
)

// Sentinel errors. Match them with errors.Is; PortfolioError values carrying
// one of these as Kind compare equal to it.
var (
	ErrNoDataForAsset             = stderrors.New("no data for asset")
	ErrInsufficientData           = stderrors.New("insufficient data")
	ErrInvalidPrice               = stderrors.New("invalid price")
	ErrInvalidSimulationCount     = stderrors.New("invalid simulation count")
	ErrNoAssets                   = stderrors.New("no assets")
	ErrInvalidConfig              = stderrors.New("invalid configuration")
	ErrOptimizationDidNotConverge = stderrors.New("optimization did not converge")
)

// PortfolioError represents a categorized error with context
type PortfolioError struct {
	Category   ErrorCategory
	Kind       error
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *PortfolioError) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, msg, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, msg)
}

// Unwrap returns the underlying error for error unwrapping
func (e *PortfolioError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is the sentinel this error was built from
func (e *PortfolioError) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

// IsFatal returns whether this error must abort the portfolio build
func (e *PortfolioError) IsFatal() bool {
	switch e.Category {
	case ErrorCategoryConvergence:
		return false
	default:
		return true
	}
}

// WithContext adds context information to the error
func (e *PortfolioError) WithContext(key string, value interface{}) *PortfolioError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Wrap attaches an underlying cause
func (e *PortfolioError) Wrap(err error) *PortfolioError {
	e.Underlying = err
	return e
}

// New creates a categorized error for a known sentinel
func New(category ErrorCategory, kind error, component, operation, message string) *PortfolioError {
	return &PortfolioError{
		Category:  category,
		Kind:      kind,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

func NewNoDataError(component, ticker, message string) *PortfolioError {
	return New(ErrorCategoryData, ErrNoDataForAsset, component, "load "+ticker, message).WithContext("ticker", ticker)
}

func NewInsufficientDataError(component, ticker string, observations int) *PortfolioError {
	return New(ErrorCategoryData, ErrInsufficientData, component, "load "+ticker,
		fmt.Sprintf("need at least 2 price observations, got %d", observations)).
		WithContext("ticker", ticker).
		WithContext("observations", observations)
}

func NewInvalidPriceError(component, ticker string, index int, price float64) *PortfolioError {
	return New(ErrorCategoryValidation, ErrInvalidPrice, component, "load "+ticker,
		fmt.Sprintf("price at index %d must be positive and finite, got %v", index, price)).
		WithContext("ticker", ticker)
}

func NewSimulationCountError(component string, count int) *PortfolioError {
	return New(ErrorCategoryValidation, ErrInvalidSimulationCount, component, "sample",
		fmt.Sprintf("simulation count must be positive, got %d", count))
}

func NewConfigurationError(component, operation, message string) *PortfolioError {
	return New(ErrorCategoryConfiguration, ErrInvalidConfig, component, operation, message)
}

func NewConvergenceError(component, status string, iterations int) *PortfolioError {
	return New(ErrorCategoryConvergence, ErrOptimizationDidNotConverge, component, "optimize",
		fmt.Sprintf("stopped with status %s after %d iterations", status, iterations)).
		WithContext("iterations", iterations)
}

func NewNetworkError(component, operation string, err error) *PortfolioError {
	return &PortfolioError{
		Category:   ErrorCategoryNetwork,
		Component:  component,
		Operation:  operation,
		Message:    "request failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// CategoryOf returns the category of err, or "" when err is not a PortfolioError
func CategoryOf(err error) ErrorCategory {
	var pe *PortfolioError
	if stderrors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// IsFatal reports whether err must abort the build. Unknown errors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var pe *PortfolioError
	if stderrors.As(err, &pe) {
		return pe.IsFatal()
	}
	return true
}
