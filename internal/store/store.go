// Package store persists fetched values across restarts in a single SQLite
// file: one table for latest-wins scalar records, two for ordered series
// points plus their refresh watermark. Reads never touch the network; the
// cold-start path serves last known values straight from here.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/sentinelmon/sentinel/internal/fetch"
	"github.com/sentinelmon/sentinel/internal/store/migrations"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("store: record not found")

// ScalarRecord is the latest known value for a metric key. At most one
// record exists per key; every successful fetch overwrites it.
type ScalarRecord struct {
	Key       string
	Value     float64
	FetchedAt time.Time
	Source    string
}

// SeriesRecord is an ordered time series plus its refresh watermark.
// LastRefreshedAt reflects the most recent successful merge, not the newest
// point's timestamp; a merge can backfill older points.
type SeriesRecord struct {
	Key             string
	Points          []fetch.Point
	LastRefreshedAt time.Time
}

// Watermark returns the newest point timestamp, used to request only newer
// points on refresh. Zero when the series is empty.
func (r *SeriesRecord) Watermark() time.Time {
	if len(r.Points) == 0 {
		return time.Time{}
	}
	return r.Points[len(r.Points)-1].Time
}

// Store wraps the SQLite handle. The engine is the sole writer; other
// components never receive a Store reference.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the cache database at path and applies
// embedded migrations. WAL mode keeps reads cheap during writes;
// synchronous=NORMAL still guarantees durability at transaction boundaries
// under WAL, which is what the write-through contract needs.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// GetMetric returns the scalar record for key, or ErrNotFound.
func (s *Store) GetMetric(ctx context.Context, key string) (*ScalarRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT value, fetched_at, source FROM metric_cache WHERE key = ?", key)

	var value float64
	var fetchedAt int64
	var source string
	if err := row.Scan(&value, &fetchedAt, &source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read metric %s: %w", key, err)
	}
	return &ScalarRecord{
		Key:       key,
		Value:     value,
		FetchedAt: fromMillis(fetchedAt),
		Source:    source,
	}, nil
}

// PutMetric upserts a scalar record. The write is committed before return,
// so the engine never reasons about an eventual-consistency window.
func (s *Store) PutMetric(ctx context.Context, rec ScalarRecord) error {
	if rec.Key == "" {
		return fmt.Errorf("metric key is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO metric_cache (key, value, fetched_at, source)
VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    value = excluded.value,
    fetched_at = excluded.fetched_at,
    source = excluded.source
`, rec.Key, rec.Value, toMillis(rec.FetchedAt), rec.Source)
	if err != nil {
		return fmt.Errorf("write metric %s: %w", rec.Key, err)
	}
	return nil
}

// GetSeries returns the series record for key with points sorted by
// timestamp ascending, or ErrNotFound when no watermark row exists.
func (s *Store) GetSeries(ctx context.Context, key string) (*SeriesRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT last_refreshed_at FROM series_cache WHERE key = ?", key)

	var refreshedAt int64
	if err := row.Scan(&refreshedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read series %s: %w", key, err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT ts, value FROM series_points WHERE series_key = ? ORDER BY ts ASC", key)
	if err != nil {
		return nil, fmt.Errorf("read series points %s: %w", key, err)
	}
	defer rows.Close()

	var points []fetch.Point
	for rows.Next() {
		var ts int64
		var value float64
		if err := rows.Scan(&ts, &value); err != nil {
			return nil, fmt.Errorf("scan series point %s: %w", key, err)
		}
		points = append(points, fetch.Point{Time: fromMillis(ts), Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series points %s: %w", key, err)
	}

	return &SeriesRecord{
		Key:             key,
		Points:          points,
		LastRefreshedAt: fromMillis(refreshedAt),
	}, nil
}

// MergeSeries upserts points by timestamp (overwrite on collision, insert
// otherwise) and bumps the watermark, all in one transaction. Merging the
// same points twice is a no-op beyond the watermark update.
func (s *Store) MergeSeries(ctx context.Context, key string, points []fetch.Point, refreshedAt time.Time) error {
	if key == "" {
		return fmt.Errorf("series key is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin series merge %s: %w", key, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range points {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO series_points (series_key, ts, value)
VALUES (?, ?, ?)
ON CONFLICT (series_key, ts) DO UPDATE SET value = excluded.value
`, key, toMillis(p.Time), p.Value); err != nil {
			return fmt.Errorf("merge series point %s: %w", key, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO series_cache (key, last_refreshed_at)
VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET last_refreshed_at = excluded.last_refreshed_at
`, key, toMillis(refreshedAt)); err != nil {
		return fmt.Errorf("update series watermark %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit series merge %s: %w", key, err)
	}
	return nil
}

// Stats summarizes cache contents for `sentinel cache stats`.
type Stats struct {
	Metrics      int
	Series       int
	SeriesPoints int
}

// Stats counts cached records.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(1) FROM metric_cache", &st.Metrics},
		{"SELECT COUNT(1) FROM series_cache", &st.Series},
		{"SELECT COUNT(1) FROM series_points", &st.SeriesPoints},
	}
	for _, q := range queries {
		if err := s.sqlDB.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("cache stats: %w", err)
		}
	}
	return st, nil
}

// Clear removes all cached records. Used by `sentinel cache clear`; the
// running engine repopulates on the next tick.
func (s *Store) Clear(ctx context.Context) error {
	for _, stmt := range []string{
		"DELETE FROM metric_cache",
		"DELETE FROM series_points",
		"DELETE FROM series_cache",
	} {
		if _, err := s.sqlDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}
	return nil
}
