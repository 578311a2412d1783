// Package fetch defines the gateway boundary between the cache engine and
// the upstream data providers. Providers normalize their payloads into the
// Value and Point shapes here; every failure crosses the boundary as a
// tagged *Error so the engine can decide between stale fallback and
// escalation without inspecting provider internals.
package fetch

import (
	"errors"
	"fmt"
	"time"

	"github.com/sentinelmon/sentinel/internal/registry"
)

// ErrorKind tags a gateway failure for the engine's fallback policy.
type ErrorKind int

const (
	// KindNetwork covers timeouts, connection failures, and 5xx responses.
	KindNetwork ErrorKind = iota
	// KindAuth covers missing or rejected credentials. These do not
	// self-resolve on the next tick and are surfaced as a degraded source.
	KindAuth
	// KindRateLimit covers 429 responses and provider throttling.
	KindRateLimit
	// KindParse covers malformed payloads. The cached record is presumed
	// not updated, not corrupted.
	KindParse
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindParse:
		return "parse"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the only error type providers return across the gateway boundary.
type Error struct {
	Kind   ErrorKind
	Source registry.Source
	Ref    string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Source, e.Ref, e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// NewError wraps cause as a gateway error of the given kind.
func NewError(kind ErrorKind, source registry.Source, ref string, cause error) *Error {
	return &Error{Kind: kind, Source: source, Ref: ref, Err: cause}
}

// KindOf extracts the kind from a gateway error. Unknown error shapes are
// treated as network failures, the most conservative recoverable kind.
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindNetwork
}

// Value is a normalized scalar reading from a provider.
type Value struct {
	// Value is the numeric reading.
	Value float64

	// ObservedAt is when the provider says the reading was taken. The
	// fiscal-file provider sets it to the file's modification time; HTTP
	// providers leave it zero, meaning "as of this fetch".
	ObservedAt time.Time
}

// Point is one normalized series observation.
type Point struct {
	Time  time.Time
	Value float64
}
