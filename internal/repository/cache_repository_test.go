package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/cache"
	"github.com/fundwallet/fundwallet-backend/internal/repository"
	"github.com/fundwallet/fundwallet-backend/internal/testutil"
)

func TestCacheRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("absent key returns nil", func(t *testing.T) {
		repo := repository.NewCacheRepository(testutil.SetupTestDB(t))
		got, err := repo.Get(ctx, "fund-data")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("put get replace invalidate", func(t *testing.T) {
		repo := repository.NewCacheRepository(testutil.SetupTestDB(t))
		ts := time.Date(2024, 3, 1, 8, 30, 15, 123000000, time.UTC)

		require.NoError(t, repo.Put(ctx, "fund-data", cache.Entry{Data: []byte(`{"u":{}}`), Timestamp: ts, Version: "v1"}))
		got, err := repo.Get(ctx, "fund-data")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, `{"u":{}}`, string(got.Data))
		assert.True(t, ts.Equal(got.Timestamp), "got %v", got.Timestamp)
		assert.Equal(t, "v1", got.Version)

		require.NoError(t, repo.Put(ctx, "fund-data", cache.Entry{Data: []byte(`{}`), Timestamp: ts.Add(time.Hour), Version: "v2"}))
		got, err = repo.Get(ctx, "fund-data")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Version)
		assert.True(t, ts.Add(time.Hour).Equal(got.Timestamp))

		require.NoError(t, repo.Invalidate(ctx, "fund-data"))
		got, err = repo.Get(ctx, "fund-data")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("closed database is a cache error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewCacheRepository(db)
		require.NoError(t, db.Close())

		_, err := repo.Get(ctx, "fund-data")
		assert.ErrorIs(t, err, apperrors.ErrCache)
		assert.ErrorIs(t, repo.Put(ctx, "fund-data", cache.Entry{Data: []byte("x")}), apperrors.ErrCache)
	})
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSettingsRepository(testutil.SetupTestDB(t))

	_, err := repo.GetSetting(ctx, repository.SettingDataURL)
	assert.ErrorIs(t, err, apperrors.ErrSettingNotFound)

	require.NoError(t, repo.SetSetting(ctx, repository.SettingDataURL, "https://a.example/data.b64"))
	v, err := repo.GetSetting(ctx, repository.SettingDataURL)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example/data.b64", v)

	require.NoError(t, repo.SetSetting(ctx, repository.SettingDataURL, "https://b.example/data.b64"))
	v, err = repo.GetSetting(ctx, repository.SettingDataURL)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example/data.b64", v)

	require.NoError(t, repo.DeleteSetting(ctx, repository.SettingDataURL))
	_, err = repo.GetSetting(ctx, repository.SettingDataURL)
	assert.ErrorIs(t, err, apperrors.ErrSettingNotFound)
}

func TestParseTime(t *testing.T) {
	got, err := repository.ParseTime("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)

	got, err = repository.ParseTime("2024-01-02T10:00:00.5+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 500000000, time.UTC), got)

	_, err = repository.ParseTime("yesterday")
	assert.Error(t, err)
}
