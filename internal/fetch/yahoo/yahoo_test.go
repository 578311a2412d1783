package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelmon/sentinel/internal/fetch"
	"github.com/sentinelmon/sentinel/internal/registry"
)

var yieldMetric = registry.Metric{
	Key: registry.KeyUS10YYield, Category: registry.Market,
	Source: registry.SourceYahoo, Ref: "^TNX",
}

var yieldSeries = registry.Series{
	Key: registry.SeriesUS10YYield, Category: registry.Market,
	Source: registry.SourceYahoo, Ref: "^TNX",
	Lookback: 182 * 24 * time.Hour,
}

func chartBody(symbol string, price float64, stamps []int64, closes []string) string {
	closeJSON := "["
	for i, c := range closes {
		if i > 0 {
			closeJSON += ","
		}
		closeJSON += c
	}
	closeJSON += "]"

	tsJSON := "["
	for i, ts := range stamps {
		if i > 0 {
			tsJSON += ","
		}
		tsJSON += fmt.Sprintf("%d", ts)
	}
	tsJSON += "]"

	return fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"symbol":%q,"regularMarketPrice":%g},
		"timestamp":%s,
		"indicators":{"quote":[{"close":%s}]}
	}],"error":null}}`, symbol, price, tsJSON, closeJSON)
}

func TestFetchMetricUsesMetaPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/")
		_, _ = w.Write([]byte(chartBody("^TNX", 4.35, nil, nil)))
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	v, err := p.FetchMetric(context.Background(), yieldMetric)
	require.NoError(t, err)
	assert.Equal(t, 4.35, v.Value)
}

func TestFetchMetricFallsBackToLastClose(t *testing.T) {
	now := time.Now().Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(chartBody("^TNX", 0,
			[]int64{now - 86400, now}, []string{"4.20", "null"})))
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	v, err := p.FetchMetric(context.Background(), yieldMetric)
	require.NoError(t, err)
	assert.Equal(t, 4.20, v.Value)
}

func TestFetchSeriesFiltersSinceAndNulls(t *testing.T) {
	base := time.Date(2026, 2, 1, 15, 30, 0, 0, time.UTC)
	stamps := []int64{
		base.AddDate(0, 0, -2).Unix(),
		base.AddDate(0, 0, -1).Unix(),
		base.Unix(),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(chartBody("^TNX", 4.3, stamps, []string{"4.10", "null", "4.30"})))
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	since := base.AddDate(0, 0, -2).Truncate(24 * time.Hour)
	points, err := p.FetchSeries(context.Background(), yieldSeries, since)
	require.NoError(t, err)

	// The -2d point equals the watermark date and the -1d close is null;
	// only the newest close survives.
	require.Len(t, points, 1)
	assert.Equal(t, 4.30, points[0].Value)
	assert.Equal(t, base.Truncate(24*time.Hour), points[0].Time)
}

func TestFetchMetricAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	_, err := p.FetchMetric(context.Background(), yieldMetric)
	require.Error(t, err)
	assert.Equal(t, fetch.KindParse, fetch.KindOf(err))
}

func TestFetchMetricHTTPStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   fetch.ErrorKind
	}{
		{http.StatusTooManyRequests, fetch.KindRateLimit},
		{http.StatusUnauthorized, fetch.KindAuth},
		{http.StatusInternalServerError, fetch.KindNetwork},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			p := New(WithBaseURL(srv.URL))
			_, err := p.FetchMetric(context.Background(), yieldMetric)
			require.Error(t, err)
			assert.Equal(t, tc.want, fetch.KindOf(err))
		})
	}
}
