package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCSVProvider_AutoDetectsColumns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "AAPL.csv"), `Date,Open,High,Low,Close,Adj Close,Volume
2020-01-03,1,1,1,10,9.5,100
2020-01-02,1,1,1,11,10.5,100
2020-01-06,1,1,1,12,11.5,100
not-a-date,1,1,1,12,11.5,100
2020-01-07,1,1,1,12,oops,100
`)

	p := NewCSVProvider(root)
	points, err := p.History(context.Background(), "aapl", time.Time{}, time.Time{})
	require.NoError(t, err)

	require.Len(t, points, 3)
	assert.Equal(t, date("2020-01-02"), points[0].Timestamp)
	assert.Equal(t, 10.5, points[0].Close)
	assert.Equal(t, 11.5, points[2].Close)
	assert.NoError(t, ValidateTimeSequence(points))
}

func TestSaveCSV_ReadableByProvider(t *testing.T) {
	root := t.TempDir()
	points := []types.PricePoint{
		{Timestamp: date("2021-03-01"), Close: 101.25},
		{Timestamp: date("2021-03-02"), Close: 99.5},
	}
	path := TickerCSVPath(filepath.Join(root, "nested"), "msft")
	require.NoError(t, SaveCSV(path, points))
	assert.Equal(t, filepath.Join(root, "nested", "MSFT.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,close\n2021-03-01,101.25\n2021-03-02,99.5\n", string(raw))

	loaded, err := NewCSVProvider(filepath.Join(root, "nested")).History(context.Background(), "MSFT", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, points, loaded)
}

func TestCSVProvider_CandleLayoutAndRange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bybit", "spot", "BTCUSDT", "1440", "candles.csv"), `timestamp,open,high,low,close,volume
2023-01-01 00:00:00,1,1,1,100,5
2023-01-02 00:00:00,1,1,1,101,5
2023-01-03 00:00:00,1,1,1,102,5
2023-01-04 00:00:00,1,1,1,103,5
`)

	p := NewCSVProviderWithFormat(root, CandleCSVFormat)
	points, err := p.History(context.Background(), "BTCUSDT", date("2023-01-02"), date("2023-01-03"))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 101.0, points[0].Close)
	assert.Equal(t, 102.0, points[1].Close)
}

func TestCSVProvider_NoData(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "SPY.csv"), "date,close\n2020-01-02,300\n")

	p := NewCSVProvider(root)

	_, err := p.History(context.Background(), "MSFT", time.Time{}, time.Time{})
	assert.True(t, errors.Is(err, perrors.ErrNoDataForAsset))

	_, err = p.History(context.Background(), "SPY", date("2021-01-01"), date("2021-12-31"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, perrors.ErrNoDataForAsset))
	assert.Contains(t, err.Error(), "no data found for SPY between 2021-01-01 and 2021-12-31")
}

func TestCSVProvider_BadHeader(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "X.csv"), "foo,bar\n1,2\n")

	_, err := NewCSVProvider(root).History(context.Background(), "X", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestMemoryProvider(t *testing.T) {
	p := NewMemoryProvider()
	p.AddCloses("abc", []float64{1, 2, 3})

	points, err := p.History(context.Background(), "ABC", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 3.0, points[2].Close)

	points[0].Close = 99
	again, _ := p.History(context.Background(), "ABC", time.Time{}, time.Time{})
	assert.Equal(t, 1.0, again[0].Close)

	_, err = p.History(context.Background(), "XYZ", time.Time{}, time.Time{})
	assert.True(t, errors.Is(err, perrors.ErrNoDataForAsset))
}
