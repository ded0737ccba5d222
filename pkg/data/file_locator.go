package data

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileLocator implements FileLocator for standard file system operations
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// CandidatePaths lists where a ticker's history may live, in lookup order:
//
//	{root}/{TICKER}.csv
//	{root}/daily/{TICKER}.csv
//	{root}/bybit/{category}/{TICKER}/1440/candles.csv
func (f *DefaultFileLocator) CandidatePaths(dataRoot, ticker string) []string {
	ticker = strings.ToUpper(ticker)
	paths := []string{
		filepath.Join(dataRoot, ticker+".csv"),
		filepath.Join(dataRoot, "daily", ticker+".csv"),
	}
	for _, category := range []string{"spot", "linear", "inverse"} {
		paths = append(paths, filepath.Join(dataRoot, "bybit", category, ticker, "1440", "candles.csv"))
	}
	return paths
}

// FindDataFile returns the first existing candidate, or "" if none exists
func (f *DefaultFileLocator) FindDataFile(dataRoot, ticker string) string {
	for _, path := range f.CandidatePaths(dataRoot, ticker) {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
