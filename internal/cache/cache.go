// Package cache defines the persistent payload cache contract and the
// staleness/version policy that sits above it.
package cache

import (
	"context"
	"time"
)

// DefaultMaxAge is the age after which a cached payload is served stale and refreshed.
const DefaultMaxAge = 24 * time.Hour

// Entry is a cached payload with the time it was written and its format version.
type Entry struct {
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Store is a key/value store for cache entries.
//
// Get returns (nil, nil) when the key is absent. Implementations wrap every
// backend failure in apperrors.ErrCache; callers treat such errors as a miss.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, entry Entry) error
	Invalidate(ctx context.Context, key string) error
}

// Status is the outcome of evaluating an entry against a Policy.
type Status int

const (
	StatusMiss Status = iota
	StatusFresh
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	default:
		return "miss"
	}
}

// Policy decides whether a cached entry may be used.
type Policy struct {
	Version string
	MaxAge  time.Duration
}

// Evaluate classifies entry at time now.
// An absent entry or one written with a different version is a miss.
func (p Policy) Evaluate(entry *Entry, now time.Time) Status {
	if entry == nil || entry.Version != p.Version {
		return StatusMiss
	}
	maxAge := p.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if now.Sub(entry.Timestamp) > maxAge {
		return StatusStale
	}
	return StatusFresh
}
