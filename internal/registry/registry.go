// Package registry defines the catalog of metric and series keys the
// dashboard tracks: which upstream source serves each key, the provider's
// reference for it (FRED series ID, Yahoo ticker, fiscal-file field), and the
// freshness category that drives the cache policy.
package registry

import (
	"fmt"
	"time"
)

// Category classifies a key for freshness purposes. Macro data (debt, GDP,
// receipts) moves quarterly; market data (yields, FX) moves intraday.
type Category int

const (
	// Macro keys are refreshed at most once per day.
	Macro Category = iota
	// Market keys are refreshed every few minutes while the dashboard runs.
	Market
)

// String returns the category name for logs and envelopes.
func (c Category) String() string {
	switch c {
	case Macro:
		return "macro"
	case Market:
		return "market"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Source identifies the upstream provider for a key.
type Source string

// Known sources.
const (
	SourceFRED   Source = "fred"
	SourceYahoo  Source = "yahoo"
	SourceFiscal Source = "fiscal-file"
)

// Metric describes a scalar key: a single latest-value reading.
type Metric struct {
	// Key is the opaque identifier used in the cache and the envelopes.
	Key string

	// Category drives the freshness window.
	Category Category

	// Source is the provider that serves this key.
	Source Source

	// Ref is the provider-specific identifier (FRED series ID, Yahoo
	// ticker, or fiscal-file field name).
	Ref string

	// Description is shown in the TUI and `sentinel show` output.
	Description string
}

// Series describes an ordered time-series key.
type Series struct {
	Key         string
	Category    Category
	Source      Source
	Ref         string
	Description string

	// Lookback bounds the initial backfill window on first fetch.
	Lookback time.Duration
}

const sixMonths = 182 * 24 * time.Hour

// US scalar metric keys.
const (
	KeyUSTotalDebt        = "us_total_debt"
	KeyUSInterestPayments = "us_interest_payments"
	KeyUSTaxReceipts      = "us_tax_receipts"
	KeyUSGDP              = "us_gdp"
	KeyUS10YYield         = "us_10y_yield"
	KeyGold               = "gold"
)

// South Africa scalar metric keys (manual fiscal file + live FX).
const (
	KeySADebt            = "sa_debt_zar"
	KeySARevenue         = "sa_revenue_zar"
	KeySAInterestExpense = "sa_interest_expense_zar"
	KeySAGDPGrowth       = "sa_gdp_growth_forecast"
	KeySA10YYield        = "sa_10y_yield"
	KeyUSDZAR            = "usd_zar"
)

// Series keys.
const (
	SeriesUS10YYield = "us_10y_yield_hist"
	SeriesUSDZAR     = "usd_zar_hist"
	SeriesGold       = "gold_hist"
	SeriesUSInterest = "us_interest_hist"
	SeriesUSReceipts = "us_receipts_hist"
)

// metrics is the scalar catalog. Refs mirror the upstream identifiers: FRED
// series IDs for US fiscal data, Yahoo tickers for market data, field names
// for the operator-maintained SA fiscal file.
var metrics = []Metric{
	{Key: KeyUSTotalDebt, Category: Macro, Source: SourceFRED, Ref: "GFDEBTN", Description: "US Total Public Debt"},
	{Key: KeyUSInterestPayments, Category: Macro, Source: SourceFRED, Ref: "A091RC1Q027SBEA", Description: "US Federal Interest Payments"},
	{Key: KeyUSTaxReceipts, Category: Macro, Source: SourceFRED, Ref: "W006RC1Q027SBEA", Description: "US Federal Tax Receipts"},
	{Key: KeyUSGDP, Category: Macro, Source: SourceFRED, Ref: "GDP", Description: "US Gross Domestic Product"},
	{Key: KeyUS10YYield, Category: Market, Source: SourceYahoo, Ref: "^TNX", Description: "US 10Y Treasury Yield"},
	{Key: KeyGold, Category: Market, Source: SourceYahoo, Ref: "GC=F", Description: "Gold Futures"},
	{Key: KeyUSDZAR, Category: Market, Source: SourceYahoo, Ref: "ZAR=X", Description: "USD/ZAR Exchange Rate"},

	{Key: KeySADebt, Category: Macro, Source: SourceFiscal, Ref: "debt_zar_billions", Description: "SA Total Debt (ZAR bn)"},
	{Key: KeySARevenue, Category: Macro, Source: SourceFiscal, Ref: "annual_revenue_zar_billions", Description: "SA Annual Revenue (ZAR bn)"},
	{Key: KeySAInterestExpense, Category: Macro, Source: SourceFiscal, Ref: "annual_interest_expense_zar_billions", Description: "SA Interest Expense (ZAR bn)"},
	{Key: KeySAGDPGrowth, Category: Macro, Source: SourceFiscal, Ref: "gdp_growth_forecast_pct", Description: "SA GDP Growth Forecast"},
	{Key: KeySA10YYield, Category: Macro, Source: SourceFiscal, Ref: "bond_yield_10y_static", Description: "SA 10Y Bond Yield"},
}

var series = []Series{
	{Key: SeriesUS10YYield, Category: Market, Source: SourceYahoo, Ref: "^TNX", Description: "US 10Y Yield History", Lookback: sixMonths},
	{Key: SeriesUSDZAR, Category: Market, Source: SourceYahoo, Ref: "ZAR=X", Description: "USD/ZAR History", Lookback: sixMonths},
	{Key: SeriesGold, Category: Market, Source: SourceYahoo, Ref: "GC=F", Description: "Gold History", Lookback: sixMonths},
	{Key: SeriesUSInterest, Category: Macro, Source: SourceFRED, Ref: "A091RC1Q027SBEA", Description: "US Interest Payments History", Lookback: 10 * 365 * 24 * time.Hour},
	{Key: SeriesUSReceipts, Category: Macro, Source: SourceFRED, Ref: "W006RC1Q027SBEA", Description: "US Tax Receipts History", Lookback: 10 * 365 * 24 * time.Hour},
}

var (
	metricIndex = buildMetricIndex()
	seriesIndex = buildSeriesIndex()
)

func buildMetricIndex() map[string]Metric {
	idx := make(map[string]Metric, len(metrics))
	for _, m := range metrics {
		idx[m.Key] = m
	}
	return idx
}

func buildSeriesIndex() map[string]Series {
	idx := make(map[string]Series, len(series))
	for _, s := range series {
		idx[s.Key] = s
	}
	return idx
}

// Metrics returns the full scalar catalog in declaration order.
func Metrics() []Metric {
	out := make([]Metric, len(metrics))
	copy(out, metrics)
	return out
}

// AllSeries returns the full series catalog in declaration order.
func AllSeries() []Series {
	out := make([]Series, len(series))
	copy(out, series)
	return out
}

// LookupMetric resolves a scalar key, reporting whether it is registered.
func LookupMetric(key string) (Metric, bool) {
	m, ok := metricIndex[key]
	return m, ok
}

// LookupSeries resolves a series key, reporting whether it is registered.
func LookupSeries(key string) (Series, bool) {
	s, ok := seriesIndex[key]
	return s, ok
}
