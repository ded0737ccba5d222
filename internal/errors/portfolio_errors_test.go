package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortfolioError_IsMatchesSentinel(t *testing.T) {
	err := NewInsufficientDataError("asset", "AAPL", 1)

	assert.True(t, stderrors.Is(err, ErrInsufficientData))
	assert.False(t, stderrors.Is(err, ErrNoDataForAsset))
	assert.Contains(t, err.Error(), "AAPL")
	assert.Equal(t, "AAPL", err.Context["ticker"])
}

func TestPortfolioError_WrappedStillMatches(t *testing.T) {
	inner := NewNoDataError("data", "MSFT", "empty history")
	wrapped := fmt.Errorf("load profiles: %w", inner)

	assert.True(t, stderrors.Is(wrapped, ErrNoDataForAsset))
	assert.Equal(t, ErrorCategoryData, CategoryOf(wrapped))
	assert.True(t, IsFatal(wrapped))
}

func TestPortfolioError_ConvergenceIsNotFatal(t *testing.T) {
	err := NewConvergenceError("optimizer", "IterationLimit", 200)

	assert.False(t, IsFatal(err))
	assert.True(t, stderrors.Is(err, ErrOptimizationDidNotConverge))
}

func TestPortfolioError_UnwrapUnderlying(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewNetworkError("yahoo", "fetch SPY", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, ErrorCategoryNetwork, CategoryOf(err))
	assert.True(t, IsFatal(err))
	assert.False(t, IsFatal(nil))
}
