package pipeline

import (
	"context"
	"time"

	"github.com/fundwallet/fundwallet-backend/internal/model"
)

// State is the observable pipeline state.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StatePartialReady
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePartialReady:
		return "partial_ready"
	case StateReady:
		return "ready"
	default:
		return "empty"
	}
}

// Payload sources.
const (
	SourceCache   = "cache"
	SourceNetwork = "network"
)

// Snapshot is a complete payload together with the generation it belongs to.
// The generation changes every time the in-memory payload is replaced or dropped.
type Snapshot struct {
	Payload    *model.Payload
	Generation uint64
}

// Status describes the pipeline at a point in time.
type Status struct {
	State      State
	Source     string
	Generation uint64
	UpdatedAt  time.Time
	LastError  error
	Loading    bool
}

// SourceResolver returns the base artifact URL for the next load.
type SourceResolver interface {
	DataURL(ctx context.Context) (string, error)
}

// StaticSource always resolves to the same URL.
type StaticSource string

func (s StaticSource) DataURL(context.Context) (string, error) {
	return string(s), nil
}
