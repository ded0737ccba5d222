package data

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{
	"timestamp":[1577971800,1578058200,1578317400],
	"indicators":{
		"quote":[{"close":[75.0,74.3,null]}],
		"adjclose":[{"adjclose":[73.1,72.4,null]}]
	}}],"error":null}}`

func TestYahooProvider_History(t *testing.T) {
	var gotPath, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	p := NewYahooProviderWithURL(srv.URL + "/v8/finance/chart")
	points, err := p.History(context.Background(), "AAPL", date("2020-01-01"), date("2020-01-31"))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(gotPath, "/AAPL"))
	assert.Equal(t, "1d", gotInterval)
	require.Len(t, points, 2)
	assert.Equal(t, 73.1, points[0].Close)
	assert.Equal(t, 72.4, points[1].Close)
	assert.Equal(t, time.Unix(1577971800, 0).UTC(), points[0].Timestamp)
}

func TestYahooProvider_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	_, err := NewYahooProviderWithURL(srv.URL).History(context.Background(), "NOPE", date("2020-01-01"), date("2020-02-01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, perrors.ErrNoDataForAsset))
}

func TestYahooProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewYahooProviderWithURL(srv.URL).History(context.Background(), "AAPL", date("2020-01-01"), date("2020-02-01"))
	require.Error(t, err)
	assert.Equal(t, perrors.ErrorCategoryNetwork, perrors.CategoryOf(err))
}
