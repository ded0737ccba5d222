package validation

import (
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/types"
)

// Package validation measures optimized weights out of sample: history is
// split at a common cutoff, weights are fitted on the train window and the
// buy-and-hold portfolio is replayed over the test window.

const component = "validation"

// MinTrainPoints and MinTestPoints bound how small either side of a split may be
const (
	MinTrainPoints = 2
	MinTestPoints  = 2
)

// HoldoutSplit is the per-asset history on each side of Cutoff
type HoldoutSplit struct {
	Cutoff time.Time
	Train  [][]types.PricePoint
	Test   [][]types.PricePoint
}

// AssetHoldout is one asset's realized return over the test window
type AssetHoldout struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
	Return float64 `json:"return"`
}

// HoldoutResult is the realized performance of a weight vector held
// unchanged from the first to the last common test date
type HoldoutResult struct {
	Cutoff      time.Time      `json:"cutoff"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Periods     int            `json:"periods"`
	TotalReturn float64        `json:"total_return"`
	StdDev      float64        `json:"std_dev"`
	Sharpe      float64        `json:"sharpe"`
	MaxDrawdown float64        `json:"max_drawdown"`
	Assets      []AssetHoldout `json:"assets"`
}
