package validation

import (
	"fmt"
	"math"
	"sort"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"gonum.org/v1/gonum/stat"
)

// Evaluate replays weights over the test histories. Only calendar days
// present in every history are used, so equities and crypto can be mixed.
// Sharpe is (TotalReturn - riskFree) / (StdDev * sqrt(Periods)), the
// horizon-level ratio the optimizer maximizes.
func Evaluate(tickers []string, weights []float64, tests [][]types.PricePoint, riskFree float64) (*HoldoutResult, error) {
	if len(tickers) == 0 {
		return nil, perrors.New(perrors.ErrorCategoryValidation, perrors.ErrNoAssets, component, "evaluate", "no assets to evaluate")
	}
	if len(weights) != len(tickers) || len(tests) != len(tickers) {
		return nil, perrors.NewConfigurationError(component, "evaluate",
			fmt.Sprintf("%d tickers, %d weights, %d histories", len(tickers), len(weights), len(tests)))
	}

	days, prices := alignByDay(tests)
	if len(days) < MinTestPoints {
		return nil, perrors.New(perrors.ErrorCategoryData, perrors.ErrInsufficientData, component, "evaluate",
			fmt.Sprintf("need at least %d common test dates, got %d", MinTestPoints, len(days)))
	}

	result := &HoldoutResult{
		Start:   days[0],
		End:     days[len(days)-1],
		Periods: len(days) - 1,
		Assets:  make([]AssetHoldout, len(tickers)),
	}

	for i, row := range prices {
		if !(row[0] > 0) {
			return nil, perrors.NewInvalidPriceError(component, tickers[i], 0, row[0])
		}
		result.Assets[i] = AssetHoldout{
			Ticker: tickers[i],
			Weight: weights[i],
			Return: row[len(row)-1]/row[0] - 1,
		}
	}

	values := make([]float64, len(days))
	for t := range days {
		for i, row := range prices {
			values[t] += weights[i] * row[t] / row[0]
		}
	}

	returns := make([]float64, 0, len(values)-1)
	peak := values[0]
	for t := 1; t < len(values); t++ {
		returns = append(returns, values[t]/values[t-1]-1)
		if values[t] > peak {
			peak = values[t]
		}
		if dd := (peak - values[t]) / peak; dd > result.MaxDrawdown {
			result.MaxDrawdown = dd
		}
	}

	result.TotalReturn = values[len(values)-1]/values[0] - 1
	if len(returns) > 1 {
		result.StdDev = stat.StdDev(returns, nil)
	}
	if denom := result.StdDev * math.Sqrt(float64(result.Periods)); denom > 0 {
		result.Sharpe = (result.TotalReturn - riskFree) / denom
	}

	return result, nil
}

// alignByDay keeps the UTC calendar days shared by every series and returns
// the closes on those days, one row per series
func alignByDay(series [][]types.PricePoint) ([]time.Time, [][]float64) {
	closes := make([]map[time.Time]float64, len(series))
	for i, s := range series {
		closes[i] = make(map[time.Time]float64, len(s))
		for _, p := range s {
			closes[i][day(p.Timestamp)] = p.Close
		}
	}

	var days []time.Time
	for d := range closes[0] {
		shared := true
		for _, m := range closes[1:] {
			if _, ok := m[d]; !ok {
				shared = false
				break
			}
		}
		if shared {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(a, b int) bool { return days[a].Before(days[b]) })

	rows := make([][]float64, len(series))
	for i := range series {
		rows[i] = make([]float64, len(days))
		for t, d := range days {
			rows[i][t] = closes[i][d]
		}
	}
	return days, rows
}

func day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
