package data

import (
	"context"
	"time"

	"github.com/ducminhle1904/mc-portfolio/internal/exchange/bybit"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
)

// klineSource is the part of the Bybit client the provider needs
type klineSource interface {
	GetHistory(ctx context.Context, category, symbol string, interval bybit.KlineInterval, start, end time.Time) ([]bybit.Kline, error)
}

// BybitProvider loads daily candle closes from Bybit
type BybitProvider struct {
	client   klineSource
	category string
}

// NewBybitProvider creates a provider over a Bybit client; category
// defaults to "spot"
func NewBybitProvider(client *bybit.Client, category string) *BybitProvider {
	return newBybitProvider(client, category)
}

func newBybitProvider(client klineSource, category string) *BybitProvider {
	if category == "" {
		category = "spot"
	}
	return &BybitProvider{client: client, category: category}
}

// Name returns the name of the data provider
func (p *BybitProvider) Name() string {
	return "bybit"
}

// History implements PriceHistoryProvider
func (p *BybitProvider) History(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	if end.IsZero() {
		end = time.Now()
	}

	klines, err := p.client.GetHistory(ctx, p.category, ticker, bybit.Interval1d, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]types.PricePoint, 0, len(klines))
	for _, k := range klines {
		candle := types.OHLCV{
			Open:      k.OpenPrice,
			High:      k.HighPrice,
			Low:       k.LowPrice,
			Close:     k.ClosePrice,
			Volume:    k.Volume,
			Timestamp: k.StartTime,
		}
		points = append(points, candle.ToPricePoint())
	}

	points = FilterByDateRange(SortAndDedup(points), start, end)
	if len(points) == 0 {
		return nil, noDataError(p.Name(), ticker, start, end)
	}
	return points, nil
}
