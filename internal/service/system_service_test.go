package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/repository"
	"github.com/fundwallet/fundwallet-backend/internal/service"
	"github.com/fundwallet/fundwallet-backend/internal/testutil"
	"github.com/fundwallet/fundwallet-backend/internal/version"
)

func TestSystemService_CheckHealth(t *testing.T) {
	svcs := testutil.NewTestServices(t, nil, 1)
	assert.NoError(t, svcs.System.CheckHealth())

	require.NoError(t, svcs.DB.Close())
	assert.Error(t, svcs.System.CheckHealth())
}

func TestSystemService_CheckVersion(t *testing.T) {
	svcs := testutil.NewTestServices(t, nil, 1)

	info := svcs.System.CheckVersion()
	assert.Equal(t, version.Version, info.AppVersion)
	assert.Equal(t, testutil.TestCacheVersion, info.CacheVersion)
	assert.True(t, info.Features["search"])
}

func TestSystemService_Status(t *testing.T) {
	svcs := testutil.NewTestServices(t, testutil.EndToEndPayload().JSON(t), 1)
	ctx := context.Background()

	st := svcs.System.Status(ctx)
	assert.Equal(t, "empty", st.State)
	assert.Nil(t, st.UpdatedAt)
	assert.Equal(t, testutil.DataURL, st.DataURL)

	_, err := svcs.Funds.Funds(ctx)
	require.NoError(t, err)

	st = svcs.System.Status(ctx)
	assert.Equal(t, "ready", st.State)
	assert.Equal(t, "network", st.Source)
	assert.NotNil(t, st.UpdatedAt)
	assert.Empty(t, st.LastError)
}

func TestSystemService_Refresh(t *testing.T) {
	svcs := testutil.NewTestServices(t, testutil.EndToEndPayload().JSON(t), 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := svcs.Funds.Funds(ctx)
	require.NoError(t, err)
	gen := svcs.Pipeline.Generation()

	id, err := svcs.System.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		return svcs.Pipeline.Generation() > gen && !svcs.Pipeline.Status().Loading
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, svcs.Fetcher.CallCount(testutil.DataURL))
}

func TestSystemService_DataURL(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to configured url", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, nil, 1)
		got, err := svcs.System.DataURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, testutil.DataURL, got)
	})

	t.Run("stored url wins and is used by the next load", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, nil, 1)
		const other = "https://mirror.example.test/funds/data.b64"
		svcs.Fetcher.ServeArtifacts(other, testutil.EncodeArtifacts(t, testutil.EndToEndPayload().JSON(t), 1))

		got, err := svcs.System.SetDataURL(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, other, got)

		stored, err := svcs.Settings.GetSetting(ctx, repository.SettingDataURL)
		require.NoError(t, err)
		assert.Equal(t, other, stored)

		funds, err := svcs.Funds.Funds(ctx)
		require.NoError(t, err)
		assert.Len(t, funds, 1)
		assert.GreaterOrEqual(t, svcs.Fetcher.CallCount(other), 1)
	})

	t.Run("empty value restores configured url", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, nil, 1)
		_, err := svcs.System.SetDataURL(ctx, "https://mirror.example.test/data.b64")
		require.NoError(t, err)

		got, err := svcs.System.SetDataURL(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, testutil.DataURL, got)
	})

	t.Run("invalid values", func(t *testing.T) {
		svcs := testutil.NewTestServices(t, nil, 1)
		for _, raw := range []string{"not a url", "/relative/data.b64", "ftp://host/data.b64", "https://host/data.json"} {
			_, err := svcs.System.SetDataURL(ctx, raw)
			assert.ErrorIs(t, err, apperrors.ErrInvalidSetting, raw)
		}
		_, err := svcs.Settings.GetSetting(ctx, repository.SettingDataURL)
		assert.ErrorIs(t, err, apperrors.ErrSettingNotFound)
	})
}

func TestValidateDataURL(t *testing.T) {
	got, err := service.ValidateDataURL("  https://cdn.example.test/x/data.b64 ")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.test/x/data.b64", got)
}
