package engine

import (
	"time"

	"github.com/sentinelmon/sentinel/internal/registry"
)

// Freshness is the policy verdict for a cached record.
type Freshness int

const (
	// Fresh means the cached value is served as-is; no fetch is issued.
	Fresh Freshness = iota
	// Expired means a fetch is attempted. A missing record is treated as
	// expired (forced fetch), not as an error.
	Expired
)

// String returns the verdict name used in `sentinel show` output and logs.
func (f Freshness) String() string {
	if f == Fresh {
		return "fresh"
	}
	return "expired"
}

// Policy holds the per-category freshness windows.
type Policy struct {
	// MacroWindow is how long macro readings stay fresh (default 24h).
	MacroWindow time.Duration
	// MarketWindow is how long market readings stay fresh (default 15m).
	MarketWindow time.Duration
}

// Default freshness windows.
const (
	DefaultMacroWindow  = 24 * time.Hour
	DefaultMarketWindow = 15 * time.Minute
)

// DefaultPolicy returns the standard windows.
func DefaultPolicy() Policy {
	return Policy{MacroWindow: DefaultMacroWindow, MarketWindow: DefaultMarketWindow}
}

// Classify decides whether a record fetched at lastFetchedAt is still fresh
// at now. A record fetched at T is fresh for now in [T, T+window) and expired
// thereafter. A zero lastFetchedAt means no record exists and forces a fetch.
// Pure function; callers inject now.
func (p Policy) Classify(category registry.Category, lastFetchedAt, now time.Time) Freshness {
	if lastFetchedAt.IsZero() {
		return Expired
	}

	window := p.MacroWindow
	if category == registry.Market {
		window = p.MarketWindow
	}

	if now.Sub(lastFetchedAt) < window {
		return Fresh
	}
	return Expired
}
