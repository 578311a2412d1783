package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/sentinelmon/sentinel/internal/logging"
	"github.com/sentinelmon/sentinel/internal/registry"
)

// Gateway is what the cache engine sees: fetch a fresh scalar for a metric,
// or the series points newer than a watermark. Implementations are stateless
// and never write to storage; the engine owns all writes.
type Gateway interface {
	FetchMetric(ctx context.Context, metric registry.Metric) (Value, error)
	FetchSeries(ctx context.Context, series registry.Series, since time.Time) ([]Point, error)
}

// Provider serves one upstream source. The router holds one per source.
type Provider interface {
	Source() registry.Source
	FetchMetric(ctx context.Context, metric registry.Metric) (Value, error)
	FetchSeries(ctx context.Context, series registry.Series, since time.Time) ([]Point, error)
}

// DefaultTimeout bounds one provider call so an unresponsive upstream
// degrades only its own key, never the whole tick.
const DefaultTimeout = 8 * time.Second

// Router dispatches gateway calls to the provider declared for each key and
// enforces a per-call timeout.
type Router struct {
	providers map[registry.Source]Provider
	timeout   time.Duration
}

// NewRouter builds a router over the given providers. A zero timeout falls
// back to DefaultTimeout.
func NewRouter(timeout time.Duration, providers ...Provider) *Router {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := make(map[registry.Source]Provider, len(providers))
	for _, p := range providers {
		m[p.Source()] = p
	}
	return &Router{providers: m, timeout: timeout}
}

// FetchMetric routes a scalar fetch to the metric's provider.
func (r *Router) FetchMetric(ctx context.Context, metric registry.Metric) (Value, error) {
	p, ok := r.providers[metric.Source]
	if !ok {
		return Value{}, NewError(KindNetwork, metric.Source, metric.Ref,
			fmt.Errorf("no provider registered for source %q", metric.Source))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	v, err := p.FetchMetric(ctx, metric)
	if err != nil {
		logctx := logging.FromContext(ctx)
		logctx.Debug().
			Str("component", "gateway").
			Str("key", metric.Key).
			Str("kind", KindOf(err).String()).
			Err(err).
			Msg("metric fetch failed")
		return Value{}, err
	}
	return v, nil
}

// FetchSeries routes an incremental series fetch to the series' provider.
func (r *Router) FetchSeries(ctx context.Context, series registry.Series, since time.Time) ([]Point, error) {
	p, ok := r.providers[series.Source]
	if !ok {
		return nil, NewError(KindNetwork, series.Source, series.Ref,
			fmt.Errorf("no provider registered for source %q", series.Source))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pts, err := p.FetchSeries(ctx, series, since)
	if err != nil {
		logctx := logging.FromContext(ctx)
		logctx.Debug().
			Str("component", "gateway").
			Str("key", series.Key).
			Str("kind", KindOf(err).String()).
			Err(err).
			Msg("series fetch failed")
		return nil, err
	}
	return pts, nil
}
