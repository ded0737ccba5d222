package allocation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// CentPlaces is the currency precision targets are rounded to
const CentPlaces = 2

// Position is the holding bought for one asset
type Position struct {
	Ticker   string          `json:"ticker"`
	Weight   float64         `json:"weight"`
	Price    decimal.Decimal `json:"price"`
	Target   decimal.Decimal `json:"target"`
	Quantity decimal.Decimal `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// Plan turns portfolio weights into quantities for a capital amount
type Plan struct {
	Capital   decimal.Decimal `json:"capital"`
	Invested  decimal.Decimal `json:"invested"`
	Cash      decimal.Decimal `json:"cash"`
	Positions []Position      `json:"positions"`
}

// Options controls quantity rounding
type Options struct {
	// QuantityPlaces is the number of decimals a quantity may have;
	// 0 buys whole shares, 8 suits most crypto pairs
	QuantityPlaces int32
}

// Split allocates capital across assets by weight.
//
// Targets are capital*weight rounded down to the cent, with the leftover
// cents assigned to the heaviest weight so targets sum to capital exactly.
// Each quantity is the target divided by the price, rounded down to
// QuantityPlaces. Whatever is not spent is reported as cash, so
// Invested + Cash == Capital holds exactly.
func Split(capital decimal.Decimal, tickers []string, weights, prices []float64, opts Options) (*Plan, error) {
	if capital.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("capital must be positive")
	}
	if len(tickers) == 0 {
		return nil, errors.New("tickers list cannot be empty")
	}
	if len(weights) != len(tickers) || len(prices) != len(tickers) {
		return nil, fmt.Errorf("got %d tickers, %d weights and %d prices", len(tickers), len(weights), len(prices))
	}

	positions := make([]Position, len(tickers))
	allocated := decimal.Zero
	for i, ticker := range tickers {
		if weights[i] < 0 {
			return nil, fmt.Errorf("weight of %s must be non-negative, got %v", ticker, weights[i])
		}
		if !(prices[i] > 0) {
			return nil, fmt.Errorf("price of %s must be positive, got %v", ticker, prices[i])
		}

		target := capital.Mul(decimal.NewFromFloat(weights[i])).RoundDown(CentPlaces)
		positions[i] = Position{
			Ticker: ticker,
			Weight: weights[i],
			Price:  decimal.NewFromFloat(prices[i]),
			Target: target,
		}
		allocated = allocated.Add(target)
	}

	if allocated.GreaterThan(capital) {
		return nil, errors.New("weights sum to more than one")
	}

	// leftover cents go to the heaviest weight
	order := make([]int, len(positions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return positions[order[a]].Weight > positions[order[b]].Weight })
	heaviest := order[0]
	positions[heaviest].Target = positions[heaviest].Target.Add(capital.Sub(allocated))

	invested := decimal.Zero
	for i := range positions {
		p := &positions[i]
		p.Quantity = p.Target.Div(p.Price).RoundDown(opts.QuantityPlaces)
		p.Cost = p.Quantity.Mul(p.Price)
		invested = invested.Add(p.Cost)
	}

	plan := &Plan{
		Capital:   capital,
		Invested:  invested,
		Cash:      capital.Sub(invested),
		Positions: positions,
	}

	if !plan.Invested.Add(plan.Cash).Equal(capital) {
		return nil, errors.New("invested plus cash does not equal capital")
	}

	return plan, nil
}
