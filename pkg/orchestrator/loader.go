package orchestrator

import (
	"context"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/asset"
	"github.com/ducminhle1904/mc-portfolio/pkg/data"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadConcurrency caps concurrent history requests
const DefaultLoadConcurrency = 4

// LoadHistories fetches every ticker's history concurrently. The first
// failure cancels the remaining fetches and is returned; histories come
// back in ticker order.
func LoadHistories(ctx context.Context, provider data.PriceHistoryProvider, tickers []string, start, end time.Time) ([][]types.PricePoint, error) {
	if len(tickers) == 0 {
		return nil, perrors.New(perrors.ErrorCategoryValidation, perrors.ErrNoAssets, component, "load histories", "tickers list cannot be empty")
	}

	histories := make([][]types.PricePoint, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultLoadConcurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			history, err := provider.History(gctx, ticker, start, end)
			if err != nil {
				return err
			}
			histories[i] = history
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return histories, nil
}

// ProfilesFromHistories extracts one profile per ticker/history pair
func ProfilesFromHistories(tickers []string, histories [][]types.PricePoint, steps int) ([]asset.Profile, error) {
	profiles := make([]asset.Profile, len(tickers))
	for i, ticker := range tickers {
		profile, err := asset.NewProfileFromHistory(ticker, histories[i], steps)
		if err != nil {
			return nil, err
		}
		profiles[i] = profile
	}
	return profiles, nil
}

// LoadProfiles fetches every ticker's history and extracts its profile
func LoadProfiles(ctx context.Context, provider data.PriceHistoryProvider, tickers []string, start, end time.Time, steps int) ([]asset.Profile, error) {
	histories, err := LoadHistories(ctx, provider, tickers, start, end)
	if err != nil {
		return nil, err
	}
	return ProfilesFromHistories(tickers, histories, steps)
}
