package validation

import (
	"errors"
	"testing"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

func series(start time.Time, closes ...float64) []types.PricePoint {
	out := make([]types.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = types.PricePoint{Timestamp: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestCutoffByRatio(t *testing.T) {
	a := series(day0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)             // Jan 1 - Jan 11
	b := series(day0.AddDate(0, 0, 1), 1, 2, 3, 4, 5, 6, 7, 8, 9, 10) // Jan 2 - Jan 11

	cutoff, err := CutoffByRatio([][]types.PricePoint{a, b}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, day0.AddDate(0, 0, 1).Add(108*time.Hour), cutoff)
}

func TestCutoffByRatio_Errors(t *testing.T) {
	a := series(day0, 1, 2, 3, 4)

	_, err := CutoffByRatio([][]types.PricePoint{a}, 1)
	assert.True(t, errors.Is(err, perrors.ErrInvalidConfig))

	_, err = CutoffByRatio(nil, 0.5)
	assert.True(t, errors.Is(err, perrors.ErrNoAssets))

	_, err = CutoffByRatio([][]types.PricePoint{series(day0, 1, 2)}, 0.5)
	assert.True(t, errors.Is(err, perrors.ErrInsufficientData))

	disjoint := series(day0.AddDate(1, 0, 0), 1, 2, 3, 4)
	_, err = CutoffByRatio([][]types.PricePoint{a, disjoint}, 0.5)
	assert.True(t, errors.Is(err, perrors.ErrInsufficientData))
}

func TestSplitAt(t *testing.T) {
	points := series(day0, 1, 2, 3, 4, 5)
	train, test := SplitAt(points, day0.AddDate(0, 0, 3))
	assert.Len(t, train, 3)
	assert.Len(t, test, 2)
	assert.Equal(t, 4.0, test[0].Close)
}

func TestSplit(t *testing.T) {
	a := series(day0, 10, 11, 12, 13, 14, 15, 16, 17, 18)
	b := series(day0, 20, 21, 22, 23, 24, 25, 26, 27, 28)

	split, err := Split([]string{"A", "B"}, [][]types.PricePoint{a, b}, 0.75)
	require.NoError(t, err)
	assert.Equal(t, day0.AddDate(0, 0, 6), split.Cutoff)
	assert.Len(t, split.Train[0], 6)
	assert.Len(t, split.Test[1], 3)

	_, err = Split([]string{"A"}, [][]types.PricePoint{a, b}, 0.75)
	assert.True(t, errors.Is(err, perrors.ErrInvalidConfig))

	// Too little left for the test side
	_, err = Split([]string{"A", "B"}, [][]types.PricePoint{a, b}, 0.99)
	assert.True(t, errors.Is(err, perrors.ErrInsufficientData))
}

func TestEvaluate_BuyAndHold(t *testing.T) {
	a := series(day0, 100, 110, 121)
	b := series(day0, 100, 100, 100)

	result, err := Evaluate([]string{"A", "B"}, []float64{0.5, 0.5}, [][]types.PricePoint{a, b}, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Periods)
	assert.Equal(t, day0, result.Start)
	assert.Equal(t, day0.AddDate(0, 0, 2), result.End)
	assert.InDelta(t, 0.105, result.TotalReturn, 1e-12)
	assert.InDelta(t, 0.21, result.Assets[0].Return, 1e-12)
	assert.InDelta(t, 0.0, result.Assets[1].Return, 1e-12)
	assert.Zero(t, result.MaxDrawdown)
	assert.Greater(t, result.StdDev, 0.0)
	assert.Greater(t, result.Sharpe, 0.0)
}

func TestEvaluate_Drawdown(t *testing.T) {
	a := series(day0, 100, 120, 90, 100)

	result, err := Evaluate([]string{"A"}, []float64{1}, [][]types.PricePoint{a}, 0.04)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.TotalReturn, 1e-12)
	assert.InDelta(t, 0.25, result.MaxDrawdown, 1e-12)
	assert.Less(t, result.Sharpe, 0.0)
}

func TestEvaluate_AlignsCalendarDays(t *testing.T) {
	// B trades every day, A skips Jan 2
	a := []types.PricePoint{
		{Timestamp: day0, Close: 100},
		{Timestamp: day0.AddDate(0, 0, 2), Close: 110},
		{Timestamp: day0.AddDate(0, 0, 3), Close: 120},
	}
	b := series(day0.Add(16*time.Hour), 50, 999, 50, 50)

	result, err := Evaluate([]string{"A", "B"}, []float64{1, 0}, [][]types.PricePoint{a, b}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Periods)
	assert.InDelta(t, 0.2, result.TotalReturn, 1e-12)
	assert.InDelta(t, 0.0, result.Assets[1].Return, 1e-12)
}

func TestEvaluate_Errors(t *testing.T) {
	a := series(day0, 100, 101)

	_, err := Evaluate(nil, nil, nil, 0)
	assert.True(t, errors.Is(err, perrors.ErrNoAssets))

	_, err = Evaluate([]string{"A"}, []float64{0.5, 0.5}, [][]types.PricePoint{a}, 0)
	assert.True(t, errors.Is(err, perrors.ErrInvalidConfig))

	_, err = Evaluate([]string{"A"}, []float64{1}, [][]types.PricePoint{series(day0, 100)}, 0)
	assert.True(t, errors.Is(err, perrors.ErrInsufficientData))

	_, err = Evaluate([]string{"A"}, []float64{1}, [][]types.PricePoint{series(day0, 0, 1)}, 0)
	assert.True(t, errors.Is(err, perrors.ErrInvalidPrice))
}
