// Package progress publishes loading progress events to any number of observers.
package progress

import (
	"sync"
	"time"
)

// Phase labels published while loading fund data.
const (
	PhaseDownload   = "Downloading data..."
	PhaseDecrypt    = "Decrypting data..."
	PhaseDecompress = "Decompressing data..."
	PhaseParse      = "Parsing JSON..."
	PhaseCache      = "Using cached data"
	PhaseProcess    = "Processing fund data..."
	PhaseProcessed  = "Data processed"
	PhaseLoaded     = "Data loaded"
	PhaseFailed     = "Load failed"
)

// Event is a single progress notification. Percent is in 0..100.
type Event struct {
	Phase   string    `json:"phase"`
	Percent int       `json:"percent"`
	Detail  string    `json:"detail,omitempty"`
	Time    time.Time `json:"time"`
}

// Publisher accepts progress events.
type Publisher interface {
	Publish(phase string, percent int, detail string)
}

// Broadcaster fans events out to subscribers. A nil *Broadcaster discards events.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	last   Event
	now    func() time.Time
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan Event),
		now:  time.Now,
	}
}

// Publish sends an event to every subscriber without blocking.
// Subscribers whose buffer is full miss the event.
func (b *Broadcaster) Publish(phase string, percent int, detail string) {
	if b == nil {
		return
	}
	percent = max(0, min(100, percent))
	ev := Event{Phase: phase, Percent: percent, Detail: detail, Time: b.now()}

	b.mu.Lock()
	b.last = ev
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	b.mu.Unlock()
}

// Subscribe registers a new observer with the given buffer size.
// The returned function unsubscribes and closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, max(buffer, 1))
	if b == nil {
		close(ch)
		return ch, func() {}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Last returns the most recent event, or false if nothing was published yet.
func (b *Broadcaster) Last() (Event, bool) {
	if b == nil {
		return Event{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last, !b.last.Time.IsZero()
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
