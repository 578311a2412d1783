// Package fred fetches US macroeconomic observations from the FRED API and
// normalizes them into the gateway's Value and Point shapes.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sentinelmon/sentinel/internal/fetch"
	"github.com/sentinelmon/sentinel/internal/registry"
)

// DefaultBaseURL is the production FRED endpoint.
const DefaultBaseURL = "https://api.stlouisfed.org/fred"

// missingValue is FRED's placeholder for dates with no observation.
const missingValue = "."

// Provider serves registry keys with Source == SourceFRED.
type Provider struct {
	apiKey  string
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

// New builds a FRED provider. An empty apiKey is allowed at construction;
// fetches will fail with an auth error until one is configured.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Source implements fetch.Provider.
func (p *Provider) Source() registry.Source { return registry.SourceFRED }

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// FetchMetric returns the most recent non-missing observation for the
// metric's FRED series.
func (p *Provider) FetchMetric(ctx context.Context, metric registry.Metric) (fetch.Value, error) {
	obs, err := p.observations(ctx, metric.Ref, url.Values{
		"sort_order": {"desc"},
		"limit":      {"10"},
	})
	if err != nil {
		return fetch.Value{}, err
	}

	for _, o := range obs {
		if o.Value == missingValue {
			continue
		}
		var v float64
		if _, scanErr := fmt.Sscanf(o.Value, "%f", &v); scanErr != nil {
			return fetch.Value{}, fetch.NewError(fetch.KindParse, registry.SourceFRED, metric.Ref,
				fmt.Errorf("observation value %q: %w", o.Value, scanErr))
		}
		return fetch.Value{Value: v}, nil
	}

	return fetch.Value{}, fetch.NewError(fetch.KindParse, registry.SourceFRED, metric.Ref,
		fmt.Errorf("series has no usable observations"))
}

// FetchSeries returns observations on or after since, oldest first.
func (p *Provider) FetchSeries(ctx context.Context, series registry.Series, since time.Time) ([]fetch.Point, error) {
	obs, err := p.observations(ctx, series.Ref, url.Values{
		"sort_order":        {"asc"},
		"observation_start": {since.UTC().Format("2006-01-02")},
	})
	if err != nil {
		return nil, err
	}

	points := make([]fetch.Point, 0, len(obs))
	for _, o := range obs {
		if o.Value == missingValue {
			continue
		}
		ts, parseErr := time.Parse("2006-01-02", o.Date)
		if parseErr != nil {
			return nil, fetch.NewError(fetch.KindParse, registry.SourceFRED, series.Ref,
				fmt.Errorf("observation date %q: %w", o.Date, parseErr))
		}
		var v float64
		if _, scanErr := fmt.Sscanf(o.Value, "%f", &v); scanErr != nil {
			return nil, fetch.NewError(fetch.KindParse, registry.SourceFRED, series.Ref,
				fmt.Errorf("observation value %q: %w", o.Value, scanErr))
		}
		points = append(points, fetch.Point{Time: ts.UTC(), Value: v})
	}
	return points, nil
}

func (p *Provider) observations(ctx context.Context, seriesID string, params url.Values) ([]observation, error) {
	if p.apiKey == "" {
		return nil, fetch.NewError(fetch.KindAuth, registry.SourceFRED, seriesID,
			fmt.Errorf("FRED API key is not configured"))
	}

	params.Set("series_id", seriesID)
	params.Set("api_key", p.apiKey)
	params.Set("file_type", "json")
	endpoint := fmt.Sprintf("%s/series/observations?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fetch.NewError(fetch.KindNetwork, registry.SourceFRED, seriesID, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fetch.NewError(fetch.KindNetwork, registry.SourceFRED, seriesID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// FRED reports a rejected API key as 400 with an explanatory
		// body; map it to auth so the dashboard flags the source.
		kind := fetch.KindForStatus(resp.StatusCode)
		if resp.StatusCode == http.StatusBadRequest {
			kind = fetch.KindAuth
		}
		return nil, fetch.NewError(kind, registry.SourceFRED, seriesID,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetch.NewError(fetch.KindNetwork, registry.SourceFRED, seriesID, err)
	}

	var parsed observationsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fetch.NewError(fetch.KindParse, registry.SourceFRED, seriesID, err)
	}
	return parsed.Observations, nil
}
