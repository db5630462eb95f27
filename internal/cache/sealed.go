package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
)

// DefaultSealTTL bounds how old a sealed token may be before it no longer opens.
const DefaultSealTTL = 30 * 24 * time.Hour

// SealedStore encrypts entry data with fernet before handing it to the wrapped store.
// Entries that fail to verify read as absent.
type SealedStore struct {
	next Store
	keys []*fernet.Key
	ttl  time.Duration
}

// Sealed wraps next so that Data is stored as a fernet token.
//
// Parameters:
//   - next: The backend that stores the sealed entries
//   - key: A base64 encoded 32-byte fernet key
//   - ttl: Maximum token age accepted on read; zero selects DefaultSealTTL
func Sealed(next Store, key string, ttl time.Duration) (*SealedStore, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid seal key: %v", apperrors.ErrCache, err)
	}
	if ttl <= 0 {
		ttl = DefaultSealTTL
	}
	return &SealedStore{next: next, keys: []*fernet.Key{k}, ttl: ttl}, nil
}

func (s *SealedStore) Get(ctx context.Context, key string) (*Entry, error) {
	entry, err := s.next.Get(ctx, key)
	if err != nil || entry == nil {
		return nil, err
	}

	plain := fernet.VerifyAndDecrypt(entry.Data, s.ttl, s.keys)
	if plain == nil {
		return nil, nil
	}
	entry.Data = plain
	return entry, nil
}

func (s *SealedStore) Put(ctx context.Context, key string, entry Entry) error {
	tok, err := fernet.EncryptAndSign(entry.Data, s.keys[0])
	if err != nil {
		return fmt.Errorf("%w: seal entry: %v", apperrors.ErrCache, err)
	}
	entry.Data = tok
	return s.next.Put(ctx, key, entry)
}

func (s *SealedStore) Invalidate(ctx context.Context, key string) error {
	return s.next.Invalidate(ctx, key)
}
