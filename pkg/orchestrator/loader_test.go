package orchestrator

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/data"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trendingCloses(n int, start, growth float64) []float64 {
	out := make([]float64, n)
	price := start
	for i := range out {
		wiggle := 1 + 0.01*math.Sin(float64(i))
		out[i] = price * wiggle
		price *= growth
	}
	return out
}

func memoryProvider() *data.MemoryProvider {
	p := data.NewMemoryProvider()
	p.AddCloses("AAA", trendingCloses(120, 100, 1.001))
	p.AddCloses("BBB", trendingCloses(120, 40, 1.0004))
	return p
}

type countingProvider struct {
	data.PriceHistoryProvider
	calls atomic.Int32
}

func (c *countingProvider) History(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	c.calls.Add(1)
	return c.PriceHistoryProvider.History(ctx, ticker, start, end)
}

func TestLoadProfiles_KeepsTickerOrder(t *testing.T) {
	provider := &countingProvider{PriceHistoryProvider: memoryProvider()}

	profiles, err := LoadProfiles(context.Background(), provider, []string{"BBB", "AAA"}, time.Time{}, time.Time{}, 30)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, "BBB", profiles[0].Ticker)
	assert.Equal(t, "AAA", profiles[1].Ticker)
	assert.Equal(t, 30, profiles[0].StepCount)
	assert.Greater(t, profiles[1].Drift, profiles[0].Drift)
	assert.Greater(t, profiles[0].Volatility, 0.0)
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestLoadProfiles_FailsOnMissingTicker(t *testing.T) {
	_, err := LoadProfiles(context.Background(), memoryProvider(), []string{"AAA", "ZZZ"}, time.Time{}, time.Time{}, 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, perrors.ErrNoDataForAsset))
	assert.Contains(t, err.Error(), "ZZZ")
}

func TestLoadProfiles_InsufficientData(t *testing.T) {
	p := data.NewMemoryProvider()
	p.AddCloses("ONE", []float64{10})

	_, err := LoadProfiles(context.Background(), p, []string{"ONE"}, time.Time{}, time.Time{}, 30)
	assert.True(t, errors.Is(err, perrors.ErrInsufficientData))
}

func TestLoadProfiles_NoTickers(t *testing.T) {
	_, err := LoadProfiles(context.Background(), memoryProvider(), nil, time.Time{}, time.Time{}, 30)
	assert.True(t, errors.Is(err, perrors.ErrNoAssets))
}
