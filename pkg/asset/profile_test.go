package asset

import (
	"errors"
	"math"
	"testing"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStatistics(t *testing.T) {
	prices := []float64{100, 110, 99, 108.9}

	initial, drift, vol, err := ExtractStatistics(prices)
	require.NoError(t, err)

	r := []float64{math.Log(1.1), math.Log(0.9), math.Log(1.1)}
	mean := (r[0] + r[1] + r[2]) / 3
	var ss float64
	for _, x := range r {
		ss += (x - mean) * (x - mean)
	}

	assert.Equal(t, 108.9, initial)
	assert.InDelta(t, mean, drift, 1e-12)
	assert.InDelta(t, math.Sqrt(ss/2), vol, 1e-12)
}

func TestExtractStatistics_ConstantSeries(t *testing.T) {
	_, drift, vol, err := ExtractStatistics([]float64{50, 50, 50, 50})
	require.NoError(t, err)
	assert.Equal(t, 0.0, drift)
	assert.Equal(t, 0.0, vol)
}

func TestExtractStatistics_TwoPoints(t *testing.T) {
	initial, drift, vol, err := ExtractStatistics([]float64{100, 105})
	require.NoError(t, err)
	assert.Equal(t, 105.0, initial)
	assert.InDelta(t, math.Log(1.05), drift, 1e-12)
	assert.Equal(t, 0.0, vol)
}

func TestNewProfile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		steps  int
		want   error
	}{
		{"empty", nil, 252, perrors.ErrNoDataForAsset},
		{"single", []float64{100}, 252, perrors.ErrInsufficientData},
		{"zero price", []float64{100, 0, 101}, 252, perrors.ErrInvalidPrice},
		{"negative price", []float64{-1, 100}, 252, perrors.ErrInvalidPrice},
		{"nan price", []float64{100, math.NaN()}, 252, perrors.ErrInvalidPrice},
		{"inf price", []float64{100, math.Inf(1)}, 252, perrors.ErrInvalidPrice},
		{"bad steps", []float64{100, 101}, 0, perrors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfile("TEST", tt.prices, tt.steps)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Contains(t, err.Error(), "TEST")
		})
	}
}

func TestNewProfileFromHistory(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history := []types.PricePoint{
		{Timestamp: start, Close: 10},
		{Timestamp: start.AddDate(0, 0, 1), Close: 11},
		{Timestamp: start.AddDate(0, 0, 2), Close: 12},
	}

	p, err := NewProfileFromHistory("XYZ", history, 10)
	require.NoError(t, err)
	assert.Equal(t, "XYZ", p.Ticker)
	assert.Equal(t, 12.0, p.InitialPrice)
	assert.Equal(t, 10, p.StepCount)
	assert.Greater(t, p.Volatility, 0.0)
}
