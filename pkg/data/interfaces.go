package data

import (
	"context"
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/types"
)

// PriceHistoryProvider loads the closing price history of one ticker
type PriceHistoryProvider interface {
	// History returns observations in chronological order within [start, end].
	// Zero times leave that side of the range open.
	History(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error)

	// Name returns the name of the data provider
	Name() string
}

// DataCache interface for caching loaded histories
type DataCache interface {
	// Get retrieves data from cache if available
	Get(key string) ([]types.PricePoint, bool)

	// Set stores data in cache
	Set(key string, data []types.PricePoint)

	// Clear removes all cached data
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// CSVColumnMapping locates the columns a CSV provider reads. Negative
// positions are resolved from the header row.
type CSVColumnMapping struct {
	TimestampCol int
	CloseCol     int
	DateFormats  []string
}

// Predefined CSV formats
var (
	// AutoCSVFormat finds "date"/"timestamp" and "adj close"/"close" by header name
	AutoCSVFormat = CSVColumnMapping{
		TimestampCol: -1,
		CloseCol:     -1,
		DateFormats:  []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339},
	}

	// CandleCSVFormat is timestamp,open,high,low,close,volume
	CandleCSVFormat = CSVColumnMapping{
		TimestampCol: 0,
		CloseCol:     4,
		DateFormats:  []string{"2006-01-02 15:04:05", "2006-01-02"},
	}
)

// FileLocator interface for finding data files
type FileLocator interface {
	// FindDataFile returns the first existing candidate file for ticker, or ""
	FindDataFile(dataRoot, ticker string) string
}
