package testutil

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fundwallet/fundwallet-backend/internal/cache"
	"github.com/fundwallet/fundwallet-backend/internal/pipeline"
	"github.com/fundwallet/fundwallet-backend/internal/progress"
	"github.com/fundwallet/fundwallet-backend/internal/repository"
	"github.com/fundwallet/fundwallet-backend/internal/service"
)

// TestCacheVersion is the cache format version used by test services.
const TestCacheVersion = "test-v1"

// Services bundles a pipeline and the services built on it, backed by an
// in-memory database and a MockFetcher.
type Services struct {
	DB       *sql.DB
	Fetcher  *MockFetcher
	Progress *progress.Broadcaster
	Pipeline *pipeline.Pipeline
	Settings *repository.SettingsRepository
	Funds    *service.FundService
	System   *service.SystemService
}

// NewTestServices wires services whose data URL serves raw encoded into n artifacts.
// A nil raw leaves the URL unserved, so every load fails with a 404.
//
// Example usage:
//
//	svc := testutil.NewTestServices(t, testutil.EndToEndPayload().JSON(t), 1)
//	funds, err := svc.Funds.Funds(ctx)
func NewTestServices(t *testing.T, raw []byte, n int) *Services {
	t.Helper()

	db := SetupTestDB(t)
	f := NewMockFetcher()
	if raw != nil {
		f.ServeArtifacts(DataURL, EncodeArtifacts(t, raw, n))
	}
	pub := progress.NewBroadcaster()
	settings := repository.NewSettingsRepository(db)
	source := service.NewSettingsSource(settings, DataURL)

	p, err := pipeline.New(pipeline.Options{
		Fetcher:  f,
		Codec:    NewTestCodec(t),
		Source:   source,
		Store:    repository.NewCacheRepository(db),
		Policy:   cache.Policy{Version: TestCacheVersion},
		Chunks:   n,
		Progress: pub,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)

	return &Services{
		DB:       db,
		Fetcher:  f,
		Progress: pub,
		Pipeline: p,
		Settings: settings,
		Funds:    service.NewFundService(p, pub, nil, zerolog.Nop()),
		System:   service.NewSystemService(db, p, settings, source, TestCacheVersion, map[string]bool{"search": true}, zerolog.Nop()),
	}
}
