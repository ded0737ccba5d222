package validation

import (
	"fmt"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
)

// CutoffByRatio places the cutoff trainRatio of the way through the period
// every history covers (latest first timestamp to earliest last timestamp)
func CutoffByRatio(histories [][]types.PricePoint, trainRatio float64) (time.Time, error) {
	if !(trainRatio > 0 && trainRatio < 1) {
		return time.Time{}, perrors.NewConfigurationError(component, "split",
			fmt.Sprintf("train ratio must be between 0 and 1, got: %v", trainRatio))
	}
	if len(histories) == 0 {
		return time.Time{}, perrors.New(perrors.ErrorCategoryValidation, perrors.ErrNoAssets, component, "split", "no histories to split")
	}

	var first, last time.Time
	for i, h := range histories {
		if len(h) < MinTrainPoints+MinTestPoints {
			return time.Time{}, perrors.New(perrors.ErrorCategoryData, perrors.ErrInsufficientData, component, "split",
				fmt.Sprintf("history %d has %d points, need at least %d", i, len(h), MinTrainPoints+MinTestPoints))
		}
		if i == 0 || h[0].Timestamp.After(first) {
			first = h[0].Timestamp
		}
		if end := h[len(h)-1].Timestamp; i == 0 || end.Before(last) {
			last = end
		}
	}
	if !first.Before(last) {
		return time.Time{}, perrors.New(perrors.ErrorCategoryData, perrors.ErrInsufficientData, component, "split",
			"histories do not overlap in time")
	}

	span := last.Sub(first)
	return first.Add(time.Duration(float64(span) * trainRatio)), nil
}

// SplitAt returns the points strictly before cutoff and those at or after it
func SplitAt(points []types.PricePoint, cutoff time.Time) (train, test []types.PricePoint) {
	n := 0
	for n < len(points) && points[n].Timestamp.Before(cutoff) {
		n++
	}
	return points[:n], points[n:]
}

// Split cuts every history at the common cutoff for trainRatio. Each side
// must keep enough points to estimate statistics and replay returns.
func Split(tickers []string, histories [][]types.PricePoint, trainRatio float64) (*HoldoutSplit, error) {
	if len(tickers) != len(histories) {
		return nil, perrors.NewConfigurationError(component, "split",
			fmt.Sprintf("%d tickers for %d histories", len(tickers), len(histories)))
	}

	cutoff, err := CutoffByRatio(histories, trainRatio)
	if err != nil {
		return nil, err
	}

	out := &HoldoutSplit{
		Cutoff: cutoff,
		Train:  make([][]types.PricePoint, len(histories)),
		Test:   make([][]types.PricePoint, len(histories)),
	}
	for i, h := range histories {
		train, test := SplitAt(h, cutoff)
		if len(train) < MinTrainPoints || len(test) < MinTestPoints {
			return nil, perrors.NewInsufficientDataError(component, tickers[i], min(len(train), len(test))).
				WithContext("cutoff", cutoff.Format(time.DateOnly))
		}
		out.Train[i] = train
		out.Test[i] = test
	}
	return out, nil
}
