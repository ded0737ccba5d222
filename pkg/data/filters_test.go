package data

import (
	"testing"
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestSortAndDedup(t *testing.T) {
	points := []types.PricePoint{
		{Timestamp: date("2020-01-03"), Close: 3},
		{Timestamp: date("2020-01-01"), Close: 1},
		{Timestamp: date("2020-01-03"), Close: 4},
		{Timestamp: date("2020-01-02"), Close: 2},
	}

	out := SortAndDedup(points)
	assert.Equal(t, []float64{1, 2, 4}, types.Closes(out))
	assert.NoError(t, ValidateTimeSequence(out))
}

func TestFilterByDateRange(t *testing.T) {
	points := []types.PricePoint{
		{Timestamp: date("2020-01-01"), Close: 1},
		{Timestamp: date("2020-01-02"), Close: 2},
		{Timestamp: date("2020-01-03"), Close: 3},
	}

	assert.Len(t, FilterByDateRange(points, time.Time{}, time.Time{}), 3)
	assert.Equal(t, []float64{2, 3}, types.Closes(FilterByDateRange(points, date("2020-01-02"), time.Time{})))
	assert.Equal(t, []float64{1, 2}, types.Closes(FilterByDateRange(points, time.Time{}, date("2020-01-02"))))
	assert.Empty(t, FilterByDateRange(points, date("2021-01-01"), time.Time{}))
}

func TestValidateTimeSequence_Rejects(t *testing.T) {
	points := []types.PricePoint{
		{Timestamp: date("2020-01-02")},
		{Timestamp: date("2020-01-02")},
	}
	assert.Error(t, ValidateTimeSequence(points))
}
