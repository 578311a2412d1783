// Package engine contains the cache orchestration core: the freshness policy,
// the per-tick resolve loop, and the result envelope handed to every
// downstream consumer. The engine is the sole writer to the store; fetches
// for expired keys run in parallel with per-key de-duplication, and upstream
// failures degrade individual keys to stale fallback instead of failing the
// tick.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sentinelmon/sentinel/internal/fetch"
	"github.com/sentinelmon/sentinel/internal/logging"
	"github.com/sentinelmon/sentinel/internal/registry"
	"github.com/sentinelmon/sentinel/internal/store"
)

// maxConcurrentFetches bounds parallel upstream calls within one tick.
const maxConcurrentFetches = 8

// Engine coordinates the stores, the freshness policy, and the fetch gateway.
// Construct one per process and inject test doubles for the collaborators.
type Engine struct {
	store   *store.Store
	gateway fetch.Gateway
	policy  Policy
	now     func() time.Time

	// flight de-duplicates in-flight fetches per key: a key requested
	// twice in one tick, or by two overlapping ticks, is fetched once and
	// the outcome shared. Store writes happen inside the shared call, so
	// they are serialized per key as a side effect.
	flight singleflight.Group

	mu       sync.Mutex
	degraded map[registry.Source]error
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPolicy overrides the default freshness windows.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an Engine over the given store and gateway.
func New(st *store.Store, gw fetch.Gateway, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		gateway:  gw,
		policy:   DefaultPolicy(),
		now:      time.Now,
		degraded: make(map[registry.Source]error),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// storeFailure marks a storage-layer error so it can escalate through the
// singleflight boundary while gateway errors stay recoverable.
type storeFailure struct{ err error }

func (f storeFailure) Error() string { return f.err.Error() }
func (f storeFailure) Unwrap() error { return f.err }

// Resolve produces one envelope per requested key. Keys are resolved
// independently and concurrently; duplicate keys collapse to one entry.
// The returned error is non-nil only for storage failures, which are fatal
// for this tick and retried fresh on the next one. Gateway failures never
// escalate: they surface as stale or missing envelopes.
func (e *Engine) Resolve(ctx context.Context, keys []string) (map[string]Envelope, error) {
	if logging.TickIDFromContext(ctx) == "" {
		ctx = logging.ContextWithTickID(ctx, logging.FromContext(ctx), logging.NewTickID())
	}

	unique := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			unique = append(unique, k)
		}
	}

	results := make(map[string]Envelope, len(unique))
	var resultsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for _, key := range unique {
		g.Go(func() error {
			env, err := e.resolveKey(gctx, key)
			if err != nil {
				return err
			}
			resultsMu.Lock()
			results[key] = env
			resultsMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve tick: %w", err)
	}
	return results, nil
}

// ResolveAll resolves every key in the registry catalog.
func (e *Engine) ResolveAll(ctx context.Context) (map[string]Envelope, error) {
	var keys []string
	for _, m := range registry.Metrics() {
		keys = append(keys, m.Key)
	}
	for _, s := range registry.AllSeries() {
		keys = append(keys, s.Key)
	}
	return e.Resolve(ctx, keys)
}

func (e *Engine) resolveKey(ctx context.Context, key string) (Envelope, error) {
	if m, ok := registry.LookupMetric(key); ok {
		return e.resolveMetric(ctx, m)
	}
	if s, ok := registry.LookupSeries(key); ok {
		return e.resolveSeries(ctx, s)
	}
	return Envelope{
		Key:   key,
		State: StateMissing,
		Err:   fmt.Errorf("key %q is not in the registry", key),
	}, nil
}

func (e *Engine) resolveMetric(ctx context.Context, m registry.Metric) (Envelope, error) {
	rec, err := e.store.GetMetric(ctx, m.Key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Envelope{}, err
	}

	var lastFetched time.Time
	if rec != nil {
		lastFetched = rec.FetchedAt
	}

	if e.policy.Classify(m.Category, lastFetched, e.now()) == Fresh {
		return scalarEnvelope(m, rec, StateFresh, nil), nil
	}

	fresh, fetchErr, storageErr := e.fetchMetricOnce(ctx, m)
	if storageErr != nil {
		return Envelope{}, storageErr
	}
	if fetchErr == nil {
		return scalarEnvelope(m, fresh, StateFresh, nil), nil
	}

	if rec != nil {
		logctx := logging.FromContext(ctx)
		logctx.Warn().
			Str("component", "engine").
			Str("key", m.Key).
			Str("kind", fetch.KindOf(fetchErr).String()).
			Time("as_of", rec.FetchedAt).
			Msg("fetch failed, serving stale value")
		return scalarEnvelope(m, rec, StateStale, fetchErr), nil
	}

	logctx := logging.FromContext(ctx)
	logctx.Warn().
		Str("component", "engine").
		Str("key", m.Key).
		Str("kind", fetch.KindOf(fetchErr).String()).
		Msg("fetch failed with no cached value")
	env := scalarEnvelope(m, nil, StateMissing, fetchErr)
	return env, nil
}

// fetchMetricOnce fetches and writes through under singleflight so that a key
// appearing in two panels of one refresh batch, or in two overlapping ticks,
// issues exactly one outbound call.
func (e *Engine) fetchMetricOnce(ctx context.Context, m registry.Metric) (*store.ScalarRecord, error, error) {
	v, err, _ := e.flight.Do("metric:"+m.Key, func() (any, error) {
		val, fetchErr := e.gateway.FetchMetric(ctx, m)
		if fetchErr != nil {
			e.noteFetchFailure(m.Source, fetchErr)
			return nil, fetchErr
		}
		e.noteFetchSuccess(m.Source)

		// A fetch that completes after cancellation is discarded, not
		// persisted; atomicity per key beats best-effort completion.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fetch.NewError(fetch.KindNetwork, m.Source, m.Ref, ctxErr)
		}

		asOf := val.ObservedAt
		if asOf.IsZero() {
			asOf = e.now()
		}
		rec := store.ScalarRecord{
			Key:       m.Key,
			Value:     val.Value,
			FetchedAt: asOf,
			Source:    string(m.Source),
		}
		if writeErr := e.store.PutMetric(ctx, rec); writeErr != nil {
			return nil, storeFailure{writeErr}
		}
		return &rec, nil
	})
	if err != nil {
		var sf storeFailure
		if errors.As(err, &sf) {
			return nil, nil, sf.err
		}
		return nil, err, nil
	}
	return v.(*store.ScalarRecord), nil, nil
}

func (e *Engine) resolveSeries(ctx context.Context, s registry.Series) (Envelope, error) {
	rec, err := e.store.GetSeries(ctx, s.Key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Envelope{}, err
	}

	var lastRefreshed time.Time
	if rec != nil {
		lastRefreshed = rec.LastRefreshedAt
	}

	if e.policy.Classify(s.Category, lastRefreshed, e.now()) == Fresh {
		return seriesEnvelope(s, rec, StateFresh, nil), nil
	}

	fresh, fetchErr, storageErr := e.fetchSeriesOnce(ctx, s, rec)
	if storageErr != nil {
		return Envelope{}, storageErr
	}
	if fetchErr == nil {
		return seriesEnvelope(s, fresh, StateFresh, nil), nil
	}

	if rec != nil {
		logctx := logging.FromContext(ctx)
		logctx.Warn().
			Str("component", "engine").
			Str("key", s.Key).
			Str("kind", fetch.KindOf(fetchErr).String()).
			Time("as_of", rec.LastRefreshedAt).
			Msg("series fetch failed, serving stale history")
		return seriesEnvelope(s, rec, StateStale, fetchErr), nil
	}

	return seriesEnvelope(s, nil, StateMissing, fetchErr), nil
}

func (e *Engine) fetchSeriesOnce(ctx context.Context, s registry.Series, prior *store.SeriesRecord) (*store.SeriesRecord, error, error) {
	v, err, _ := e.flight.Do("series:"+s.Key, func() (any, error) {
		// Incremental fetch from the watermark bounds payload size; a
		// series with no points backfills the configured lookback.
		since := e.now().Add(-s.Lookback)
		if prior != nil && !prior.Watermark().IsZero() {
			since = prior.Watermark()
		}

		points, fetchErr := e.gateway.FetchSeries(ctx, s, since)
		if fetchErr != nil {
			e.noteFetchFailure(s.Source, fetchErr)
			return nil, fetchErr
		}
		e.noteFetchSuccess(s.Source)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fetch.NewError(fetch.KindNetwork, s.Source, s.Ref, ctxErr)
		}

		refreshedAt := e.now()
		if mergeErr := e.store.MergeSeries(ctx, s.Key, points, refreshedAt); mergeErr != nil {
			return nil, storeFailure{mergeErr}
		}
		merged, readErr := e.store.GetSeries(ctx, s.Key)
		if readErr != nil {
			return nil, storeFailure{readErr}
		}
		return merged, nil
	})
	if err != nil {
		var sf storeFailure
		if errors.As(err, &sf) {
			return nil, nil, sf.err
		}
		return nil, err, nil
	}
	return v.(*store.SeriesRecord), nil, nil
}

// noteFetchFailure records a degraded source on auth failures; those need
// operator action and will not self-resolve on the next tick.
func (e *Engine) noteFetchFailure(source registry.Source, err error) {
	if fetch.KindOf(err) != fetch.KindAuth {
		return
	}
	e.mu.Lock()
	e.degraded[source] = err
	e.mu.Unlock()
}

func (e *Engine) noteFetchSuccess(source registry.Source) {
	e.mu.Lock()
	delete(e.degraded, source)
	e.mu.Unlock()
}

// DegradedSources lists sources whose last fetch failed with an auth error,
// sorted for stable rendering.
func (e *Engine) DegradedSources() []registry.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]registry.Source, 0, len(e.degraded))
	for s := range e.degraded {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func scalarEnvelope(m registry.Metric, rec *store.ScalarRecord, state State, err error) Envelope {
	env := Envelope{
		Key:      m.Key,
		Kind:     KindScalar,
		Category: m.Category,
		Source:   m.Source,
		State:    state,
		Err:      err,
	}
	if rec != nil {
		env.Value = rec.Value
		env.AsOf = rec.FetchedAt
	}
	return env
}

func seriesEnvelope(s registry.Series, rec *store.SeriesRecord, state State, err error) Envelope {
	env := Envelope{
		Key:      s.Key,
		Kind:     KindSeries,
		Category: s.Category,
		Source:   s.Source,
		State:    state,
		Err:      err,
	}
	if rec != nil {
		env.Points = rec.Points
		env.AsOf = rec.LastRefreshedAt
	}
	return env
}
