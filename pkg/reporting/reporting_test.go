package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/allocation"
	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
	"github.com/ducminhle1904/mc-portfolio/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport(t *testing.T, withPlan bool) *orchestrator.RunReport {
	t.Helper()
	alloc := &orchestrator.Allocation{
		ID: "run-1",
		Assets: []orchestrator.AssetAllocation{
			{Ticker: "AAPL", Weight: 0.6, MeanReturn: 0.12, InitialPrice: 150, Drift: 0.0005, Volatility: 0.01},
			{Ticker: "SPY", Weight: 0.4, MeanReturn: 0.08, InitialPrice: 400, Drift: 0.0003, Volatility: 0.008},
		},
		ExpectedReturn: 0.104,
		StdDev:         0.2,
		Sharpe:         0.32,
		Converged:      true,
		Status:         "FunctionConvergence",
		Method:         "sqp",
		Simulations:    1000,
		Steps:          252,
		StepSize:       2.0 / 252,
		RiskFreeRate:   0.04,
		Seed:           42,
		CreatedAt:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	report := &orchestrator.RunReport{Allocation: alloc}
	if withPlan {
		plan, err := allocation.Split(decimal.NewFromInt(10000), alloc.Tickers(), alloc.Weights(), alloc.LastPrices(), allocation.Options{})
		require.NoError(t, err)
		report.Plan = plan
	}
	return report
}

func TestConsoleReporter_OutputReport(t *testing.T) {
	var buf bytes.Buffer
	report := sampleReport(t, true)
	report.Allocation.Converged = false
	report.Allocation.Warning = "optimization did not converge"

	NewDefaultConsoleReporter().OutputReport(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "OPTIMAL WEIGHTS")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "60.00%")
	assert.Contains(t, out, "CAPITAL ALLOCATION")
	assert.Contains(t, out, "did not converge")
}

func TestConsoleReporter_NilReport(t *testing.T) {
	var buf bytes.Buffer
	NewDefaultConsoleReporter().OutputReport(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestDefaultReporter_WriteFiles(t *testing.T) {
	root := t.TempDir()
	r := NewDefaultReporter(root)

	paths, err := r.WriteFiles(sampleReport(t, true), ReportingConfig{JSONEnabled: true, CSVEnabled: true, ExcelEnabled: true})
	require.NoError(t, err)
	require.Len(t, paths, 3)

	dir := filepath.Join(root, "AAPL_SPY")
	assert.Equal(t, filepath.Join(dir, "run_20240301_120000.json"), paths[0])
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	raw, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var decoded orchestrator.RunReport
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded.Allocation.ID)
	require.NotNil(t, decoded.Plan)
	assert.True(t, decoded.Plan.Capital.Equal(decimal.NewFromInt(10000)))

	f, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "AAPL", rows[1][0])
	assert.Equal(t, "0.6", rows[1][1])
	assert.Equal(t, "40", rows[1][7])

	fx, err := excelize.OpenFile(paths[2])
	require.NoError(t, err)
	defer fx.Close()
	assert.Equal(t, []string{summarySheet, weightsSheet, allocationSheet}, fx.GetSheetList())
	ticker, err := fx.GetCellValue(weightsSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "SPY", ticker)
}

func TestDefaultReporter_WriteFilesWithoutPlan(t *testing.T) {
	cfg := ReportingConfig{OutputDirectory: t.TempDir(), CSVEnabled: true, ExcelEnabled: true}
	paths, err := NewDefaultReporter("unused").WriteFiles(sampleReport(t, false), cfg)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	fx, err := excelize.OpenFile(paths[1])
	require.NoError(t, err)
	defer fx.Close()
	assert.Equal(t, []string{summarySheet, weightsSheet}, fx.GetSheetList())
}

func sampleHoldout() *validation.HoldoutResult {
	return &validation.HoldoutResult{
		Cutoff:      time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Start:       time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC),
		Periods:     146,
		TotalReturn: 0.0825,
		StdDev:      0.009,
		Sharpe:      0.3,
		MaxDrawdown: 0.061,
		Assets: []validation.AssetHoldout{
			{Ticker: "AAPL", Weight: 0.6, Return: 0.11},
			{Ticker: "SPY", Weight: 0.4, Return: 0.04},
		},
	}
}

func TestConsoleReporter_Holdout(t *testing.T) {
	var buf bytes.Buffer
	report := sampleReport(t, false)
	report.Holdout = sampleHoldout()

	NewDefaultConsoleReporter().OutputReport(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "HOLDOUT 2023-06-01 → 2023-12-29")
	assert.Contains(t, out, "11.00%")
	assert.Contains(t, out, "Max drawdown 6.10% over 146 periods")
	assert.NotContains(t, out, "CAPITAL ALLOCATION")
}

func TestDefaultReporter_WriteFilesWithHoldout(t *testing.T) {
	report := sampleReport(t, true)
	report.Holdout = sampleHoldout()

	cfg := ReportingConfig{OutputDirectory: t.TempDir(), JSONEnabled: true, ExcelEnabled: true}
	paths, err := NewDefaultReporter("unused").WriteFiles(report, cfg)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	raw, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var decoded orchestrator.RunReport
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NotNil(t, decoded.Holdout)
	assert.Equal(t, 146, decoded.Holdout.Periods)

	fx, err := excelize.OpenFile(paths[1])
	require.NoError(t, err)
	defer fx.Close()
	assert.Equal(t, []string{summarySheet, weightsSheet, allocationSheet, holdoutSheet}, fx.GetSheetList())
	ticker, err := fx.GetCellValue(holdoutSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", ticker)
}

func TestDefaultReporter_WriteFilesNoReport(t *testing.T) {
	_, err := NewDefaultReporter(t.TempDir()).WriteFiles(nil, ReportingConfig{JSONEnabled: true})
	assert.Error(t, err)
}

func TestPathManager_GetDefaultOutputDir(t *testing.T) {
	p := NewDefaultPathManager("out")
	assert.Equal(t, filepath.Join("out", "AAPL_MSFT"), p.GetDefaultOutputDir([]string{" aapl", "msft "}))
	assert.Equal(t, filepath.Join("out", "UNKNOWN"), p.GetDefaultOutputDir(nil))
	assert.Equal(t, filepath.Join("out", "A_B_C_D_more"), p.GetDefaultOutputDir([]string{"a", "b", "c", "d", "e"}))
	assert.Equal(t, filepath.Join("results", "SPY"), DefaultOutputDir([]string{"spy"}))
}
