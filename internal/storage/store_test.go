package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/allocation"
	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testAllocation(created time.Time) *orchestrator.Allocation {
	return &orchestrator.Allocation{
		ID: uuid.NewString(),
		Assets: []orchestrator.AssetAllocation{
			{Ticker: "AAPL", Weight: 0.75, MeanReturn: 0.1, InitialPrice: 150, Drift: 0.0005, Volatility: 0.01},
			{Ticker: "SPY", Weight: 0.25, MeanReturn: 0.05, InitialPrice: 400, Drift: 0.0002, Volatility: 0.008},
		},
		ExpectedReturn:  0.0875,
		StdDev:          0.15,
		Sharpe:          0.3167,
		Objective:       -0.3,
		Converged:       true,
		Status:          "FunctionConvergence",
		Iterations:      12,
		Method:          "sqp",
		Simulations:     1000,
		Steps:           252,
		StepSize:        2.0 / 252,
		RiskFreeRate:    0.04,
		Diversification: 0.01,
		Seed:            18446744073709551615,
		Duration:        1500 * time.Millisecond,
		CreatedAt:       created,
	}
}

func TestStore_SaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alloc := testAllocation(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	plan, err := allocation.Split(decimal.NewFromInt(1000), alloc.Tickers(), alloc.Weights(), alloc.LastPrices(), allocation.Options{})
	require.NoError(t, err)

	require.NoError(t, s.SaveRun(ctx, alloc, plan))

	got, err := s.GetRun(ctx, alloc.ID)
	require.NoError(t, err)
	assert.Equal(t, alloc.ID, got.Allocation.ID)
	assert.Equal(t, alloc.Assets, got.Allocation.Assets)
	assert.Equal(t, alloc.Seed, got.Allocation.Seed)
	assert.True(t, alloc.CreatedAt.Equal(got.Allocation.CreatedAt))
	assert.Equal(t, alloc.Duration, got.Allocation.Duration)
	assert.InDelta(t, alloc.StepSize, got.Allocation.StepSize, 1e-15)
	assert.True(t, got.Allocation.Converged)

	require.NotNil(t, got.Plan)
	assert.True(t, got.Plan.Capital.Equal(plan.Capital))
	assert.True(t, got.Plan.Cash.Equal(plan.Cash))
	assert.Len(t, got.Plan.Positions, 2)
}

func TestStore_SaveRunAssignsID(t *testing.T) {
	s := openTestStore(t)
	alloc := testAllocation(time.Time{})
	alloc.ID = ""

	require.NoError(t, s.SaveRun(context.Background(), alloc, nil))
	_, err := uuid.Parse(alloc.ID)
	require.NoError(t, err)

	got, err := s.GetRun(context.Background(), alloc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Plan)
	assert.False(t, got.Allocation.CreatedAt.IsZero())
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		a := testAllocation(base.Add(time.Duration(i) * time.Hour))
		require.NoError(t, s.SaveRun(ctx, a, nil))
		ids = append(ids, a.ID)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Equal(t, []string{"AAPL", "SPY"}, runs[0].Tickers)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_GetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = s.GetRun(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestStore_DeleteRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := testAllocation(time.Now().UTC())
	require.NoError(t, s.SaveRun(ctx, a, nil))

	require.NoError(t, s.DeleteRun(ctx, a.ID))
	_, err := s.GetRun(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrRunNotFound))
	assert.True(t, errors.Is(s.DeleteRun(ctx, a.ID), ErrRunNotFound))
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	a := testAllocation(time.Now().UTC())
	require.NoError(t, s.SaveRun(context.Background(), a, nil))
	require.NoError(t, s.Close())

	s, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_ImplementsRunRecorder(t *testing.T) {
	var _ orchestrator.RunRecorder = (*Store)(nil)
}
