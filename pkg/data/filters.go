package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/types"
)

// FilterByDateRange keeps points within [start, end]; zero bounds are open
func FilterByDateRange(points []types.PricePoint, start, end time.Time) []types.PricePoint {
	if len(points) == 0 || (start.IsZero() && end.IsZero()) {
		return points
	}

	filtered := make([]types.PricePoint, 0, len(points))
	for _, p := range points {
		if !start.IsZero() && p.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && p.Timestamp.After(end) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// SortAndDedup orders points by time and keeps the last observation of any
// repeated timestamp
func SortAndDedup(points []types.PricePoint) []types.PricePoint {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	out := points[:0]
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Timestamp.Equal(p.Timestamp) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// ValidateTimeSequence ensures data is in strictly chronological order
func ValidateTimeSequence(points []types.PricePoint) error {
	for i := 1; i < len(points); i++ {
		if !points[i].Timestamp.After(points[i-1].Timestamp) {
			return fmt.Errorf("data not in chronological order at index %d: %s does not follow %s",
				i, points[i].Timestamp.Format(time.RFC3339), points[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
