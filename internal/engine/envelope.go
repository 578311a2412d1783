package engine

import (
	"time"

	"github.com/sentinelmon/sentinel/internal/fetch"
	"github.com/sentinelmon/sentinel/internal/registry"
)

// State is the per-key cache outcome carried on every envelope. It makes the
// implicit per-key lifecycle {missing → fresh → stale → fresh → …} an
// explicit tagged value rather than ad hoc booleans.
type State int

const (
	// StateFresh: the value was served within its freshness window or was
	// just fetched successfully.
	StateFresh State = iota
	// StateStale: the refresh attempt failed and a previously cached value
	// is being served instead. AsOf reflects the old fetch time.
	StateStale
	// StateMissing: no cached value exists and the fetch failed. Consumers
	// must render "unavailable", never a fabricated zero.
	StateMissing
)

// String returns the state name used in logs and plain output.
func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// Kind distinguishes the two storage shapes behind an envelope.
type Kind int

const (
	// KindScalar envelopes carry Value.
	KindScalar Kind = iota
	// KindSeries envelopes carry Points.
	KindSeries
)

// Envelope is the uniform result handed to downstream consumers for every
// requested key, regardless of storage shape. It is the only engine type the
// formula and UI layers ever see.
type Envelope struct {
	Key      string
	Kind     Kind
	Category registry.Category
	Source   registry.Source

	// Value is set for scalar envelopes.
	Value float64

	// Points is set for series envelopes, sorted by timestamp ascending.
	Points []fetch.Point

	// State tags the outcome; AsOf is when the served data was fetched.
	State State
	AsOf  time.Time

	// Err carries the gateway failure for stale and missing envelopes.
	// It never escalates; it is informational for rendering and logs.
	Err error
}

// Age returns how old the served data is at now. Zero for missing envelopes.
func (e Envelope) Age(now time.Time) time.Duration {
	if e.AsOf.IsZero() {
		return 0
	}
	return now.Sub(e.AsOf)
}

// Available reports whether the envelope carries usable data.
func (e Envelope) Available() bool {
	return e.State != StateMissing
}
