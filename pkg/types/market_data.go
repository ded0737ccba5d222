package types

import "time"

// PricePoint is one closing price observation of a ticker
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
}

// OHLCV is a full daily candle as returned by exchange kline endpoints
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// ToPricePoint keeps only the closing price of the candle
func (c OHLCV) ToPricePoint() PricePoint {
	return PricePoint{Timestamp: c.Timestamp, Close: c.Close}
}

// Closes extracts the closing prices in order
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}
