package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
)

// DefaultYahooBaseURL is the chart endpoint
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooProvider downloads daily adjusted closes from Yahoo Finance
type YahooProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewYahooProvider creates a provider for the public chart API
func NewYahooProvider() *YahooProvider {
	return NewYahooProviderWithURL(DefaultYahooBaseURL)
}

// NewYahooProviderWithURL points the provider at another chart endpoint
func NewYahooProviderWithURL(baseURL string) *YahooProvider {
	return &YahooProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the name of the data provider
func (p *YahooProvider) Name() string {
	return "yahoo"
}

type yahooResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History implements PriceHistoryProvider. Adjusted closes are preferred;
// days with no quote are dropped.
func (p *YahooProvider) History(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("events", "div,split")
	if !start.IsZero() {
		q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	}
	if end.IsZero() {
		end = time.Now()
	}
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))

	reqURL := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; mc-portfolio)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, perrors.NewNetworkError(p.Name(), "fetch "+ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, noDataError(p.Name(), ticker, start, end)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, perrors.NewNetworkError(p.Name(), "fetch "+ticker,
			fmt.Errorf("yahoo finance returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, perrors.NewNetworkError(p.Name(), "read "+ticker, err)
	}

	var yahooResp yahooResponse
	if err := json.Unmarshal(body, &yahooResp); err != nil {
		return nil, fmt.Errorf("decode yahoo response for %s: %w", ticker, err)
	}

	if len(yahooResp.Chart.Result) == 0 {
		return nil, noDataError(p.Name(), ticker, start, end)
	}

	result := yahooResp.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	points := make([]types.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, types.PricePoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *closes[i],
		})
	}

	points = FilterByDateRange(SortAndDedup(points), start, end)
	if len(points) == 0 {
		return nil, noDataError(p.Name(), ticker, start, end)
	}
	return points, nil
}
