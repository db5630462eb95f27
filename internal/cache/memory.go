package cache

import (
	"context"
	"slices"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory. Entries never expire on their own;
// staleness is decided by Policy.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: gocache.New(gocache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, nil
	}
	entry := v.(Entry)
	entry.Data = slices.Clone(entry.Data)
	return &entry, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, entry Entry) error {
	entry.Data = slices.Clone(entry.Data)
	s.items.Set(key, entry, gocache.NoExpiration)
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}
