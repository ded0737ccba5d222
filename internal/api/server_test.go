package api

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ducminhle1904/mc-portfolio/internal/storage"
	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/data"
	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closes(n int, start, growth, wiggle float64) []float64 {
	out := make([]float64, n)
	p := start
	for i := range out {
		out[i] = p * (1 + wiggle*math.Sin(float64(i)*1.7))
		p *= growth
	}
	return out
}

func newTestServer(t *testing.T, provider data.PriceHistoryProvider, withStore bool) *fiber.App {
	t.Helper()
	var store RunStore
	if withStore {
		s, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		store = s
	}
	return NewServer(*config.NewDefaultConfig(), provider, store, zerolog.Nop()).App()
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func inlineRequest() OptimizeRequest {
	return OptimizeRequest{
		Tickers: []string{"aaa", "bbb"},
		Prices: map[string][]float64{
			"AAA": closes(80, 100, 1.002, 0.01),
			"BBB": closes(80, 50, 1.0005, 0.02),
		},
		Simulations: 300,
		Steps:       20,
		Seed:        11,
		Capital:     5000,
	}
}

func TestOptimize_InlinePricesAndRuns(t *testing.T) {
	app := newTestServer(t, nil, true)

	resp := postJSON(t, app, "/v1/optimize", inlineRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report orchestrator.RunReport
	decode(t, resp, &report)
	require.NotNil(t, report.Allocation)
	assert.Equal(t, []string{"AAA", "BBB"}, report.Allocation.Tickers())
	var sum float64
	for _, w := range report.Allocation.Weights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	require.NotNil(t, report.Plan)
	assert.Equal(t, uint64(11), report.Allocation.Seed)

	resp = get(t, app, "/v1/runs")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Runs []storage.RunSummary `json:"runs"`
	}
	decode(t, resp, &listing)
	require.Len(t, listing.Runs, 1)
	assert.Equal(t, report.Allocation.ID, listing.Runs[0].ID)

	resp = get(t, app, "/v1/runs/"+report.Allocation.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stored orchestrator.RunReport
	decode(t, resp, &stored)
	assert.Equal(t, report.Allocation.Weights(), stored.Allocation.Weights())

	resp = get(t, app, "/v1/runs/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOptimize_TickersFromPriceKeys(t *testing.T) {
	app := newTestServer(t, nil, false)
	req := inlineRequest()
	req.Tickers = nil
	req.Capital = 0

	resp := postJSON(t, app, "/v1/optimize", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report orchestrator.RunReport
	decode(t, resp, &report)
	assert.Equal(t, []string{"AAA", "BBB"}, report.Allocation.Tickers())
	assert.Nil(t, report.Plan)
}

func TestOptimize_Holdout(t *testing.T) {
	app := newTestServer(t, nil, false)
	req := inlineRequest()
	req.HoldoutRatio = 0.25

	resp := postJSON(t, app, "/v1/optimize", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report orchestrator.RunReport
	decode(t, resp, &report)
	require.NotNil(t, report.Holdout)
	assert.Len(t, report.Holdout.Assets, 2)
	assert.Greater(t, report.Holdout.Periods, 10)
}

func TestOptimize_BadRequests(t *testing.T) {
	app := newTestServer(t, nil, false)

	req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/v1/optimize", OptimizeRequest{Tickers: []string{"AAPL"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no provider and no inline prices")

	bad := inlineRequest()
	bad.Method = "simulated-annealing"
	resp = postJSON(t, app, "/v1/optimize", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusBadRequest, body.Code)
	assert.Contains(t, body.Message, "optimizer method")
}

func TestOptimize_MissingDataIsNotFound(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.AddCloses("AAA", closes(50, 10, 1.001, 0.01))
	app := newTestServer(t, provider, false)

	resp := postJSON(t, app, "/v1/optimize", OptimizeRequest{
		Tickers:   []string{"AAA", "ZZZ"},
		StartDate: "2000-01-01",
		EndDate:   "2100-01-01",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOptimize_InsufficientInlineData(t *testing.T) {
	app := newTestServer(t, nil, false)
	resp := postJSON(t, app, "/v1/optimize", OptimizeRequest{
		Prices: map[string][]float64{"ONE": {10}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRuns_WithoutStore(t *testing.T) {
	app := newTestServer(t, nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, app, "/v1/runs").StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, app, "/v1/runs/"+uuid.NewString()).StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestServer(t, nil, false)

	resp := get(t, app, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	decode(t, resp, &health)
	assert.Equal(t, "healthy", health["status"])

	resp = get(t, app, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mc_portfolio_")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
