package fiscalfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelmon/sentinel/internal/fetch"
	"github.com/sentinelmon/sentinel/internal/registry"
)

var debtMetric = registry.Metric{
	Key: registry.KeySADebt, Category: registry.Macro,
	Source: registry.SourceFiscal, Ref: "debt_zar_billions",
}

func writeFiscalFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sa_fiscal.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestFetchMetricReadsFieldAndModTime(t *testing.T) {
	path := writeFiscalFile(t, `{
		"debt_zar_billions": 5430.0,
		"annual_revenue_zar_billions": 2100.0,
		"last_updated": "2026-02-15"
	}`)
	edited := time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, edited, edited))

	p := New(path)
	v, err := p.FetchMetric(context.Background(), debtMetric)
	require.NoError(t, err)
	assert.Equal(t, 5430.0, v.Value)
	assert.Equal(t, edited, v.ObservedAt)
}

func TestFetchMetricMissingFile(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "absent.json"))
	_, err := p.FetchMetric(context.Background(), debtMetric)
	require.Error(t, err)
	assert.Equal(t, fetch.KindNetwork, fetch.KindOf(err))
}

func TestFetchMetricMalformedJSON(t *testing.T) {
	p := New(writeFiscalFile(t, `{"debt_zar_billions": `))
	_, err := p.FetchMetric(context.Background(), debtMetric)
	require.Error(t, err)
	assert.Equal(t, fetch.KindParse, fetch.KindOf(err))
}

func TestFetchMetricMissingField(t *testing.T) {
	p := New(writeFiscalFile(t, `{"annual_revenue_zar_billions": 2100.0}`))
	_, err := p.FetchMetric(context.Background(), debtMetric)
	require.Error(t, err)
	assert.Equal(t, fetch.KindParse, fetch.KindOf(err))
}

func TestFetchMetricNonNumericField(t *testing.T) {
	p := New(writeFiscalFile(t, `{"debt_zar_billions": "a lot"}`))
	_, err := p.FetchMetric(context.Background(), debtMetric)
	require.Error(t, err)
	assert.Equal(t, fetch.KindParse, fetch.KindOf(err))
}

func TestFetchSeriesUnsupported(t *testing.T) {
	p := New(writeFiscalFile(t, `{}`))
	_, err := p.FetchSeries(context.Background(), registry.Series{Ref: "x"}, time.Time{})
	require.Error(t, err)
	assert.Equal(t, fetch.KindParse, fetch.KindOf(err))
}
