package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sentinelmon/sentinel/internal/registry"
)

func TestClassifyMarketWindow(t *testing.T) {
	p := DefaultPolicy()
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want Freshness
	}{
		{"at fetch time", fetched, Fresh},
		{"just inside window", fetched.Add(15*time.Minute - time.Nanosecond), Fresh},
		{"at boundary", fetched.Add(15 * time.Minute), Expired},
		{"past boundary", fetched.Add(20 * time.Minute), Expired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.Classify(registry.Market, fetched, tc.now))
		})
	}
}

func TestClassifyMacroWindow(t *testing.T) {
	p := DefaultPolicy()
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, Fresh, p.Classify(registry.Macro, fetched, fetched))
	assert.Equal(t, Fresh, p.Classify(registry.Macro, fetched, fetched.Add(23*time.Hour)))
	assert.Equal(t, Expired, p.Classify(registry.Macro, fetched, fetched.Add(24*time.Hour)))
}

func TestClassifyMissingRecordForcesFetch(t *testing.T) {
	p := DefaultPolicy()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, Expired, p.Classify(registry.Macro, time.Time{}, now))
	assert.Equal(t, Expired, p.Classify(registry.Market, time.Time{}, now))
}

func TestClassifyCustomWindows(t *testing.T) {
	p := Policy{MacroWindow: time.Hour, MarketWindow: time.Minute}
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, Fresh, p.Classify(registry.Market, fetched, fetched.Add(59*time.Second)))
	assert.Equal(t, Expired, p.Classify(registry.Market, fetched, fetched.Add(time.Minute)))
	assert.Equal(t, Fresh, p.Classify(registry.Macro, fetched, fetched.Add(59*time.Minute)))
}
