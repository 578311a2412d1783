// Package yahoo fetches market quotes and daily history from the Yahoo
// Finance chart API. No credentials are required; the API is keyed by ticker.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sentinelmon/sentinel/internal/fetch"
	"github.com/sentinelmon/sentinel/internal/registry"
)

// DefaultBaseURL is the production chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Provider serves registry keys with Source == SourceYahoo.
type Provider struct {
	baseURL string
	client  *http.Client
}

// Option customizes the provider.
type Option func(*Provider)

// WithBaseURL points the provider at a different endpoint (tests).
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithHTTPClient injects an HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// New builds a Yahoo provider.
func New(opts ...Option) *Provider {
	p := &Provider{baseURL: DefaultBaseURL, client: &http.Client{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Source implements fetch.Provider.
func (p *Provider) Source() registry.Source { return registry.SourceYahoo }

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchMetric returns the latest traded price for the metric's ticker.
func (p *Provider) FetchMetric(ctx context.Context, metric registry.Metric) (fetch.Value, error) {
	now := time.Now()
	result, err := p.chart(ctx, metric.Ref, now.AddDate(0, 0, -7), now)
	if err != nil {
		return fetch.Value{}, err
	}

	if result.Meta.RegularMarketPrice != 0 {
		return fetch.Value{Value: result.Meta.RegularMarketPrice}, nil
	}

	// Fall back to the last non-nil close when the meta price is absent
	// (some indices omit it outside trading hours).
	closes := result.closes()
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return fetch.Value{Value: *closes[i]}, nil
		}
	}
	return fetch.Value{}, fetch.NewError(fetch.KindParse, registry.SourceYahoo, metric.Ref,
		fmt.Errorf("chart has no price data"))
}

// FetchSeries returns daily closes strictly after since.
func (p *Provider) FetchSeries(ctx context.Context, series registry.Series, since time.Time) ([]fetch.Point, error) {
	result, err := p.chart(ctx, series.Ref, since, time.Now())
	if err != nil {
		return nil, err
	}

	closes := result.closes()
	if len(result.Timestamp) != len(closes) {
		return nil, fetch.NewError(fetch.KindParse, registry.SourceYahoo, series.Ref,
			fmt.Errorf("timestamp/close length mismatch: %d vs %d", len(result.Timestamp), len(closes)))
	}

	points := make([]fetch.Point, 0, len(closes))
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			continue
		}
		t := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		if !t.After(since) {
			continue
		}
		points = append(points, fetch.Point{Time: t, Value: *closes[i]})
	}
	return points, nil
}

func (r *chartResult) closes() []*float64 {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	return r.Indicators.Quote[0].Close
}

func (p *Provider) chart(ctx context.Context, ticker string, from, to time.Time) (*chartResult, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		p.baseURL, ticker, from.Unix(), to.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fetch.NewError(fetch.KindNetwork, registry.SourceYahoo, ticker, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; sentinel)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fetch.NewError(fetch.KindNetwork, registry.SourceYahoo, ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetch.NewError(fetch.KindForStatus(resp.StatusCode), registry.SourceYahoo, ticker,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetch.NewError(fetch.KindNetwork, registry.SourceYahoo, ticker, err)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fetch.NewError(fetch.KindParse, registry.SourceYahoo, ticker, err)
	}
	if parsed.Chart.Error != nil {
		return nil, fetch.NewError(fetch.KindParse, registry.SourceYahoo, ticker,
			fmt.Errorf("chart API error %s: %s", parsed.Chart.Error.Code, parsed.Chart.Error.Description))
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fetch.NewError(fetch.KindParse, registry.SourceYahoo, ticker,
			fmt.Errorf("chart result is empty"))
	}
	return &parsed.Chart.Result[0], nil
}
