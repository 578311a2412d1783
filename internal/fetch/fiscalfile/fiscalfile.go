// Package fiscalfile serves scalar metrics from the operator-maintained
// fiscal JSON document for the jurisdiction that has no reliable automated
// source. Reading the file is this provider's "fetch"; the file's
// modification time becomes the observation timestamp so the freshness
// policy sees operator edits.
package fiscalfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sentinelmon/sentinel/internal/fetch"
	"github.com/sentinelmon/sentinel/internal/registry"
)

// Provider serves registry keys with Source == SourceFiscal.
type Provider struct {
	path string
}

// New builds a fiscal-file provider reading from path.
func New(path string) *Provider {
	return &Provider{path: path}
}

// Source implements fetch.Provider.
func (p *Provider) Source() registry.Source { return registry.SourceFiscal }

// FetchMetric reads the document and returns the field named by the metric's
// Ref. Malformed content is a parse error; a missing file is a network-class
// failure (the source is unavailable, not corrupt).
func (p *Provider) FetchMetric(_ context.Context, metric registry.Metric) (fetch.Value, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		return fetch.Value{}, fetch.NewError(fetch.KindNetwork, registry.SourceFiscal, metric.Ref,
			fmt.Errorf("fiscal file %s: %w", p.path, err))
	}

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return fetch.Value{}, fetch.NewError(fetch.KindNetwork, registry.SourceFiscal, metric.Ref,
			fmt.Errorf("fiscal file %s: %w", p.path, err))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fetch.Value{}, fetch.NewError(fetch.KindParse, registry.SourceFiscal, metric.Ref,
			fmt.Errorf("fiscal file %s: %w", p.path, err))
	}

	field, ok := fields[metric.Ref]
	if !ok {
		return fetch.Value{}, fetch.NewError(fetch.KindParse, registry.SourceFiscal, metric.Ref,
			fmt.Errorf("field %q is missing from %s", metric.Ref, p.path))
	}

	var value float64
	if err := json.Unmarshal(field, &value); err != nil {
		return fetch.Value{}, fetch.NewError(fetch.KindParse, registry.SourceFiscal, metric.Ref,
			fmt.Errorf("field %q: %w", metric.Ref, err))
	}

	return fetch.Value{Value: value, ObservedAt: info.ModTime().UTC()}, nil
}

// FetchSeries is unsupported; the fiscal document carries only point values.
func (p *Provider) FetchSeries(_ context.Context, series registry.Series, _ time.Time) ([]fetch.Point, error) {
	return nil, fetch.NewError(fetch.KindParse, registry.SourceFiscal, series.Ref,
		fmt.Errorf("fiscal file does not serve series data"))
}
