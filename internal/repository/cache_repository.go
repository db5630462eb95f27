package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/cache"
)

// CacheRepository stores cache entries in the payload_cache table.
// It implements cache.Store.
type CacheRepository struct {
	db *sql.DB
}

// NewCacheRepository creates a new CacheRepository with the provided database connection.
func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Get retrieves the entry stored under key.
// Returns (nil, nil) if the key has never been written or was invalidated.
func (r *CacheRepository) Get(ctx context.Context, key string) (*cache.Entry, error) {
	query := `
		SELECT data, timestamp, version
		FROM payload_cache
		WHERE cache_key = ?
	`

	var (
		entry cache.Entry
		ts    string
	)
	err := r.db.QueryRowContext(ctx, query, key).Scan(&entry.Data, &ts, &entry.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query payload_cache: %v", apperrors.ErrCache, err)
	}

	entry.Timestamp, err = ParseTime(ts)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupted timestamp for %q: %v", apperrors.ErrCache, key, err)
	}
	return &entry, nil
}

// Put inserts or replaces the entry stored under key.
func (r *CacheRepository) Put(ctx context.Context, key string, entry cache.Entry) error {
	query := `
		INSERT INTO payload_cache (cache_key, data, timestamp, version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			data = excluded.data,
			timestamp = excluded.timestamp,
			version = excluded.version
	`

	_, err := r.db.ExecContext(ctx, query, key, entry.Data, formatTime(entry.Timestamp), entry.Version)
	if err != nil {
		return fmt.Errorf("%w: failed to write payload_cache: %v", apperrors.ErrCache, err)
	}
	return nil
}

// Invalidate removes the entry stored under key. Removing an absent key is not an error.
func (r *CacheRepository) Invalidate(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payload_cache WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("%w: failed to delete from payload_cache: %v", apperrors.ErrCache, err)
	}
	return nil
}
