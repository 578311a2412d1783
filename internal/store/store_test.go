package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelmon/sentinel/internal/fetch"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentinel.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestMetricRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.GetMetric(ctx, "us_10y_yield")
	assert.ErrorIs(t, err, ErrNotFound)

	fetchedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := ScalarRecord{Key: "us_10y_yield", Value: 4.35, FetchedAt: fetchedAt, Source: "yahoo"}
	require.NoError(t, s.PutMetric(ctx, rec))

	got, err := s.GetMetric(ctx, "us_10y_yield")
	require.NoError(t, err)
	assert.Equal(t, 4.35, got.Value)
	assert.Equal(t, fetchedAt, got.FetchedAt)
	assert.Equal(t, "yahoo", got.Source)
}

func TestMetricLatestWins(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.PutMetric(ctx, ScalarRecord{Key: "k", Value: 1, FetchedAt: t1, Source: "fred"}))
	require.NoError(t, s.PutMetric(ctx, ScalarRecord{Key: "k", Value: 2, FetchedAt: t1.Add(time.Hour), Source: "fred"}))

	got, err := s.GetMetric(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Value)
	assert.Equal(t, t1.Add(time.Hour), got.FetchedAt)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Metrics)
}

func TestSeriesMergeIdempotentAndOrdered(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 0, 1)
	t3 := t1.AddDate(0, 0, 2)
	refreshed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.MergeSeries(ctx, "hist",
		[]fetch.Point{{Time: t1, Value: 1.0}, {Time: t2, Value: 2.0}}, refreshed))
	require.NoError(t, s.MergeSeries(ctx, "hist",
		[]fetch.Point{{Time: t2, Value: 2.5}, {Time: t3, Value: 3.0}}, refreshed.Add(time.Hour)))

	rec, err := s.GetSeries(ctx, "hist")
	require.NoError(t, err)
	require.Len(t, rec.Points, 3)
	assert.Equal(t, []fetch.Point{
		{Time: t1, Value: 1.0},
		{Time: t2, Value: 2.5},
		{Time: t3, Value: 3.0},
	}, rec.Points)
	assert.Equal(t, refreshed.Add(time.Hour), rec.LastRefreshedAt)
	assert.Equal(t, t3, rec.Watermark())
}

func TestSeriesWatermarkReflectsMergeNotNewestPoint(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	newest := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	refreshed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.MergeSeries(ctx, "hist", []fetch.Point{{Time: newest, Value: 1}}, refreshed))

	// Backfill an older point; LastRefreshedAt still moves forward.
	later := refreshed.Add(time.Hour)
	require.NoError(t, s.MergeSeries(ctx, "hist",
		[]fetch.Point{{Time: newest.AddDate(0, -1, 0), Value: 0.5}}, later))

	rec, err := s.GetSeries(ctx, "hist")
	require.NoError(t, err)
	assert.Equal(t, later, rec.LastRefreshedAt)
	assert.Equal(t, newest, rec.Watermark())
}

func TestSeriesMergeConcurrentDistinctKeys(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	refreshed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	keys := []string{"us_10y_yield_hist", "usd_zar_hist", "gold_hist", "us_interest_hist"}

	var wg sync.WaitGroup
	errs := make([]error, len(keys))
	for i, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			points := make([]fetch.Point, 20)
			for d := range points {
				points[d] = fetch.Point{Time: base.AddDate(0, 0, d), Value: float64(i*100 + d)}
			}
			errs[i] = s.MergeSeries(ctx, key, points, refreshed)
		}()
	}
	wg.Wait()

	for i, key := range keys {
		require.NoError(t, errs[i], "merge %s", key)
		rec, err := s.GetSeries(ctx, key)
		require.NoError(t, err, "read %s", key)
		require.Len(t, rec.Points, 20, "points for %s", key)
		assert.Equal(t, float64(i*100), rec.Points[0].Value)
		assert.Equal(t, float64(i*100+19), rec.Points[19].Value)
		assert.Equal(t, base.AddDate(0, 0, 19), rec.Watermark())
		assert.Equal(t, refreshed, rec.LastRefreshedAt)
	}
}

func TestSeriesMergeConcurrentSameKey(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	refreshed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Both writers upsert the base day and then one day each of their own;
	// whatever the commit order, the union must land intact.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			points := []fetch.Point{
				{Time: base, Value: 1.0},
				{Time: base.AddDate(0, 0, i+1), Value: float64(10 + i)},
			}
			errs[i] = s.MergeSeries(ctx, "hist", points, refreshed.Add(time.Duration(i)*time.Hour))
		}()
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	rec, err := s.GetSeries(ctx, "hist")
	require.NoError(t, err)
	require.Len(t, rec.Points, 3)
	assert.Equal(t, 1.0, rec.Points[0].Value)
	assert.Equal(t, 10.0, rec.Points[1].Value)
	assert.Equal(t, 11.0, rec.Points[2].Value)
	assert.Equal(t, base.AddDate(0, 0, 2), rec.Watermark())

	// The watermark is whichever writer committed last.
	assert.Contains(t, []time.Time{refreshed, refreshed.Add(time.Hour)}, rec.LastRefreshedAt)
}

func TestSeriesMissing(t *testing.T) {
	s, _ := openTestStore(t)
	_, err := s.GetSeries(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSurvivesReopen(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	fetchedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.PutMetric(ctx, ScalarRecord{Key: "k", Value: 7, FetchedAt: fetchedAt, Source: "fred"}))
	require.NoError(t, s.MergeSeries(ctx, "h",
		[]fetch.Point{{Time: fetchedAt, Value: 7}}, fetchedAt))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetMetric(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.Value)

	rec, err := reopened.GetSeries(ctx, "h")
	require.NoError(t, err)
	assert.Len(t, rec.Points, 1)
}

func TestClear(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, s.PutMetric(ctx, ScalarRecord{Key: "k", Value: 1, FetchedAt: now, Source: "fred"}))
	require.NoError(t, s.MergeSeries(ctx, "h", []fetch.Point{{Time: now, Value: 1}}, now))

	require.NoError(t, s.Clear(ctx))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Metrics)
	assert.Zero(t, st.Series)
	assert.Zero(t, st.SeriesPoints)
}
